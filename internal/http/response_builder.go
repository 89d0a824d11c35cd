package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
	"budgetly/internal/log"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ExpenseListResponse is the body of GET /api/expenses.
type ExpenseListResponse struct {
	Expenses []core.ExpenseView `json:"expenses"`
	Count    int                `json:"count"`
	Total    decimal.Decimal    `json:"total"`
}

// BudgetResponse is the body of GET /api/budget.
type BudgetResponse struct {
	Budget *decimal.Decimal `json:"budget"`
	Set    bool             `json:"set"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps an error to its status: validation 422, malformed
// input 400, anything else 500 with the detail kept out of the body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, core.ValidationReason(err), err.Error())
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeInternal).
				WithHTTPRequest(r.Method, r.URL.Path).
				ToSlice()...)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
