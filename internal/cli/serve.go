package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetly/internal/cache"
	apihttp "budgetly/internal/http"
	"budgetly/internal/log"
)

const (
	shutdownTimeout      = 10 * time.Second
	cacheCleanupInterval = time.Minute
)

func (r *runner) newServeCmd() *cobra.Command {
	var addr string
	var rateLimit int

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the JSON API",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{daemonAnnotation: "true"},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :PORT from config)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "Mutating requests allowed per client per minute")

	cmd.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		if addr == "" {
			addr = ":" + r.app.Config.Port
		}
		ctx, cancel := SignalContext(cmd.Context(), r.app.Logger)
		defer cancel()
		return r.serve(ctx, addr, rateLimit)
	})
	return cmd
}

// serve runs the HTTP server, plus the cache janitor when reads are cached,
// until ctx is cancelled or one of them fails.
func (r *runner) serve(ctx context.Context, addr string, rateLimit int) error {
	logger := r.app.Logger
	server := apihttp.NewServer(addr, r.app.Expenses, r.app.Summaries, apihttp.Options{
		Logger:         logger,
		MetricsEnabled: r.app.Config.MetricsEnabled,
		RateLimit:      rateLimit,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			"addr", addr,
			log.FieldOperation, log.OpStartup)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if r.app.Backend != nil && r.app.Backend.Cleaner != nil {
		manager := cache.NewManager(logger)
		manager.Register(r.app.Backend.Cleaner)
		g.Go(func() error {
			return manager.Run(gctx, cacheCleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped", log.FieldOperation, log.OpShutdown)
		return nil
	})

	return g.Wait()
}
