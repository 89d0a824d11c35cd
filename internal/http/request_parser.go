package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
)

// maxBodyBytes bounds request bodies; an expense is a few hundred bytes.
const maxBodyBytes = 16 << 10

var errBadRequest = errors.New("bad request")

// ExpenseRequest is the body of POST /api/expenses.
type ExpenseRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// BudgetRequest is the body of PUT /api/budget.
type BudgetRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// ExpenseInput is a parsed, not yet validated, expense request.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Category    core.Category
	Date        core.Date
	Description string
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// ParseExpenseRequest converts the request into typed values. An empty date
// means today.
func ParseExpenseRequest(req ExpenseRequest, today core.Date) (ExpenseInput, error) {
	amount, err := core.ParseAmount(unquote(req.Amount))
	if err != nil {
		return ExpenseInput{}, err
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return ExpenseInput{}, err
	}
	date := today
	if strings.TrimSpace(req.Date) != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			return ExpenseInput{}, err
		}
	}
	return ExpenseInput{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: sanitizeInput(req.Description),
	}, nil
}

// ParseBudgetRequest parses the budget amount.
func ParseBudgetRequest(req BudgetRequest) (decimal.Decimal, error) {
	return core.ParseBudget(unquote(req.Amount))
}

// ParseFilter reads category, from and to query parameters. Each is optional.
func ParseFilter(query url.Values) (core.Filter, error) {
	var f core.Filter
	var err error

	if v := strings.TrimSpace(query.Get("category")); v != "" && !strings.EqualFold(v, "all") {
		if f.Category, err = core.ParseCategory(v); err != nil {
			return core.Filter{}, err
		}
	}
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if f.From, err = core.ParseDate(v); err != nil {
			return core.Filter{}, err
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if f.To, err = core.ParseDate(v); err != nil {
			return core.Filter{}, err
		}
	}
	return f, nil
}
