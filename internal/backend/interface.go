package backend

import (
	"context"
	"time"

	"budgetly/internal/cache"
	"budgetly/internal/services"
	"budgetly/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the substrate, the notifiers wired to it and a
// cleanup releasing both.
type BackendResult struct {
	KV        storage.KV
	Notifiers []services.ChangeNotifier
	// Cleaner is set when reads go through the cache.
	Cleaner cache.Cleaner
	Cleanup CleanupFunc
}

// Close runs Cleanup if present.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Read cache, disabled when CacheSize is 0
	CacheSize int
	CacheTTL  time.Duration

	// Change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	Metrics      bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
