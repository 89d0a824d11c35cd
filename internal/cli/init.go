// Package cli provides the budgetly commands and the bootstrap they share.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetly/internal/backend"
	"budgetly/internal/config"
	"budgetly/internal/log"
	"budgetly/internal/services"
)

// App is everything a command needs once configuration is loaded.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Expenses  *services.ExpenseService
	Summaries *services.SummaryService
	Backend   *backend.BackendResult
}

// Close releases the backend.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.Backend.Close()
}

// SetupLogger builds the process logger at level and installs it as the
// slog default.
func SetupLogger(w io.Writer, level slog.Level) *log.Logger {
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
		Format:    "text",
		Output:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap loads .env and configuration, then wires the backend and the
// services. quiet raises the log level to warn for one-shot commands.
func Bootstrap(ctx context.Context, stderr io.Writer, quiet bool) (*App, error) {
	LoadEnvFile()

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	logger := SetupLogger(stderr, level)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	expenses := services.NewExpenseService(res.KV, res.ServiceOptions(logger)...)
	return &App{
		Config:    cfg,
		Logger:    logger,
		Expenses:  expenses,
		Summaries: services.NewSummaryService(expenses, logger),
		Backend:   res,
	}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
