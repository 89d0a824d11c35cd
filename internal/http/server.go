// Package http serves the expense store as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"budgetly/internal/log"
	"budgetly/internal/metrics"
	"budgetly/internal/services"
)

// Options tune the server; the zero value is usable.
type Options struct {
	Logger         *log.Logger
	MetricsEnabled bool
	// RateLimit is the number of mutating requests allowed per client per minute.
	RateLimit int
	Headers   *HeadersConfig
}

type Server struct {
	http.Server
	expenses    *services.ExpenseService
	summaries   *services.SummaryService
	logger      *log.Logger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, summaries *services.SummaryService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	headers := DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	s := &Server{
		expenses:    expenses,
		summaries:   summaries,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RateLimit),
	}
	go s.rateLimiter.startCleanup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	if opts.MetricsEnabled {
		r.Use(metrics.Middleware)
	}
	r.Use(securityHeaders(headers))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(s.rateLimiter.middleware)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleCreateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)
		r.Get("/budget", s.handleGetBudget)
		r.Put("/budget", s.handleSetBudget)
		r.Get("/summary", s.handleSummary)
		r.Get("/categories", s.handleCategories)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once the substrate answers a read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.expenses.GetBudget(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		writeError(w, http.StatusServiceUnavailable, "not_ready", "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
