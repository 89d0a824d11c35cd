package backend

import (
	"context"
	"errors"
	"fmt"

	"budgetly/internal/amqp"
	"budgetly/internal/log"
	"budgetly/internal/metrics"
	"budgetly/internal/services"
	"budgetly/internal/storage"
	"budgetly/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		kv      storage.KV
		closers []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		sqliteKV, err := storage.NewSQLiteKV(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite substrate: %w", err)
		}
		kv = sqliteKV
		closers = append(closers, sqliteKV.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		kv = memory.New(nil)
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result := &BackendResult{KV: kv}

	if config.CacheSize > 0 {
		cached := storage.NewCachedKV(kv, config.CacheSize, config.CacheTTL)
		result.KV = cached
		result.Cleaner = cached.Cleaner()
		f.logger.InfoContext(ctx, "Read cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL.String())
	}

	if config.Metrics {
		result.Notifiers = append(result.Notifiers, metrics.NewRecorder())
	}

	// AMQP is optional: a broker that cannot be reached only disables events.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
		} else {
			result.Notifiers = append(result.Notifiers, client)
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	return result, nil
}

// ServiceOptions returns the expense service options matching the backend.
func (r *BackendResult) ServiceOptions(logger *log.Logger) []services.Option {
	opts := []services.Option{
		services.WithLogger(logger),
		services.WithNotifiers(r.Notifiers...),
	}
	for _, n := range r.Notifiers {
		if obs, ok := n.(services.ValidationObserver); ok {
			opts = append(opts, services.WithValidationObserver(obs))
		}
	}
	return opts
}
