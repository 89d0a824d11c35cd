// Package metrics exposes Prometheus counters for store mutations, rejected
// input and the HTTP API.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"budgetly/internal/core"
)

const namespace = "budgetly"

var ExpensesAdded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "expenses_added_total",
	Help:      "Expenses successfully added.",
})

var ExpensesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "expenses_deleted_total",
	Help:      "Expenses successfully deleted.",
})

var BudgetUpdates = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "budget_updates_total",
	Help:      "Monthly budget changes.",
})

var AmountAdded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "amount_added_total",
	Help:      "Sum of added expense amounts by category.",
}, []string{"category"})

var ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "validation_failures_total",
	Help:      "Rejected inputs by operation and reason.",
}, []string{"operation", "reason"})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern and status code.",
}, []string{"method", "route", "status"})

var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

var ErrUnknownEvent = errors.New("unknown change event")

// Recorder turns store notifications into counter increments.
type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Notify(_ context.Context, event core.ChangeEvent) error {
	switch event.Kind {
	case core.EventExpenseAdded:
		ExpensesAdded.Inc()
		if event.Expense != nil {
			amount, _ := event.Expense.Amount.Float64()
			AmountAdded.WithLabelValues(string(event.Expense.Category)).Add(amount)
		}
	case core.EventExpenseDeleted:
		ExpensesDeleted.Inc()
	case core.EventBudgetSet:
		BudgetUpdates.Inc()
	default:
		return ErrUnknownEvent
	}
	return nil
}

func (r *Recorder) ObserveValidationFailure(operation string, err error) {
	ValidationFailures.WithLabelValues(operation, core.ValidationReason(err)).Inc()
}

// Middleware counts requests by chi route pattern, so ids in paths do not
// explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
