package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Bills         Category = "Bills"
	Shopping      Category = "Shopping"
	Health        Category = "Health"
	Other         Category = "Other"
)

// MaxDescriptionLength bounds the free-text description of an expense.
const MaxDescriptionLength = 200

type (
	Category string

	Expense struct {
		ID          string
		Amount      decimal.Decimal
		Category    Category
		Date        Date
		Description string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrFutureDate         = errors.New("date cannot be in the future")
	ErrInvalidBudget      = errors.New("budget must be a positive number")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
)

var validationErrors = []error{
	ErrInvalidAmount,
	ErrFutureDate,
	ErrInvalidBudget,
	ErrInvalidCategory,
	ErrInvalidDate,
	ErrDescriptionTooLong,
}

// IsValidation reports whether err is one of the user-correctable input failures.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ValidationReason returns a short machine-readable code for a validation error,
// or "" when err is not a validation failure.
func ValidationReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrFutureDate):
		return "future_date"
	case errors.Is(err, ErrInvalidBudget):
		return "invalid_budget"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrDescriptionTooLong):
		return "description_too_long"
	}
	return ""
}

// Categories returns the fixed set of categories in display order.
func Categories() []Category {
	return []Category{Food, Transport, Entertainment, Bills, Shopping, Health, Other}
}

// IsValid returns true if the category belongs to the fixed set
func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Entertainment, Bills, Shopping, Health, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory matches s against the fixed set, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the user-supplied fields of an expense against today.
func (e Expense) Validate(today Date) error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrInvalidCategory
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Date.After(today) {
		return ErrFutureDate
	}
	if len([]rune(e.Description)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
