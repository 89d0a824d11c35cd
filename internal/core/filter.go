package core

import (
	"sort"
)

// Filter narrows a list of expenses. Zero-valued fields do not filter.
type Filter struct {
	Category Category
	From     Date
	To       Date
}

// IsEmpty returns true when no criterion is set.
func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.From.IsZero() && f.To.IsZero()
}

// Match reports whether e satisfies every set criterion. Date bounds are inclusive.
func (f Filter) Match(e Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To) {
		return false
	}
	return true
}

// ApplyFilters returns the expenses matching f in display order. The input
// slice is left untouched.
func ApplyFilters(expenses []Expense, f Filter) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sortDateDesc(out)
	return out
}

// SortByDateDesc returns a copy of expenses ordered newest first.
func SortByDateDesc(expenses []Expense) []Expense {
	out := append([]Expense(nil), expenses...)
	sortDateDesc(out)
	return out
}

// Newest date first, then newest CreatedAt, then ID, so equal inputs always
// come out in the same order.
func sortDateDesc(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c > 0
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
