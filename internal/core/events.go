package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventExpenseAdded   ChangeKind = "expense.added"
	EventExpenseDeleted ChangeKind = "expense.deleted"
	EventBudgetSet      ChangeKind = "budget.set"
)

type ChangeKind string

// ChangeEvent describes one successful mutation of the store. Expense is set
// for expense events, Budget for budget events.
type ChangeEvent struct {
	Kind      ChangeKind       `json:"kind"`
	ExpenseID string           `json:"expense_id,omitempty"`
	Expense   *ExpenseView     `json:"expense,omitempty"`
	Budget    *decimal.Decimal `json:"budget,omitempty"`
	At        time.Time        `json:"at"`
}

// ExpenseView is the JSON shape of an expense outside of storage.
type ExpenseView struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// View converts e to its JSON shape.
func (e Expense) View() ExpenseView {
	return ExpenseView{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// Views converts a list of expenses.
func Views(expenses []Expense) []ExpenseView {
	out := make([]ExpenseView, len(expenses))
	for i, e := range expenses {
		out[i] = e.View()
	}
	return out
}
