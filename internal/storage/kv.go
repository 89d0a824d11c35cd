// Package storage holds the persisted key-value substrate the expense store
// writes through, and its SQLite and cached implementations.
package storage

import (
	"context"
	"errors"
)

// Well-known keys of the substrate.
const (
	ExpensesKey = "expenses"
	BudgetKey   = "monthlyBudget"
)

var ErrEmptyKey = errors.New("empty key")

// KV is the minimal persistence contract: one text value per key.
// Read reports found=false for a key that was never written.
type KV interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
}

// Closer is implemented by substrates holding external resources.
type Closer interface {
	Close() error
}
