package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"budgetly/internal/core"
)

func TestRecorderCountsEvents(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	added := testutil.ToFloat64(ExpensesAdded)
	deleted := testutil.ToFloat64(ExpensesDeleted)
	budgets := testutil.ToFloat64(BudgetUpdates)
	food := testutil.ToFloat64(AmountAdded.WithLabelValues("Food"))

	view := core.ExpenseView{ID: "a", Amount: decimal.RequireFromString("12.5"), Category: core.Food}
	assert.NoError(t, r.Notify(ctx, core.ChangeEvent{Kind: core.EventExpenseAdded, Expense: &view}))
	assert.NoError(t, r.Notify(ctx, core.ChangeEvent{Kind: core.EventExpenseDeleted, ExpenseID: "a"}))
	assert.NoError(t, r.Notify(ctx, core.ChangeEvent{Kind: core.EventBudgetSet}))
	assert.ErrorIs(t, r.Notify(ctx, core.ChangeEvent{Kind: "expense.renamed"}), ErrUnknownEvent)

	assert.Equal(t, added+1, testutil.ToFloat64(ExpensesAdded))
	assert.Equal(t, deleted+1, testutil.ToFloat64(ExpensesDeleted))
	assert.Equal(t, budgets+1, testutil.ToFloat64(BudgetUpdates))
	assert.InDelta(t, food+12.5, testutil.ToFloat64(AmountAdded.WithLabelValues("Food")), 1e-9)
}

func TestRecorderValidationFailures(t *testing.T) {
	r := NewRecorder()
	c := ValidationFailures.WithLabelValues("create", "future_date")
	before := testutil.ToFloat64(c)

	r.ObserveValidationFailure("create", core.ErrFutureDate)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Delete("/api/expenses/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := HTTPRequests.WithLabelValues(http.MethodDelete, "/api/expenses/{id}", "204")
	before := testutil.ToFloat64(c)

	for _, id := range []string{"one", "two"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/expenses/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}
