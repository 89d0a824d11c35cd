package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
)

// record is the persisted shape of an expense: amount as a JSON number,
// date as YYYY-MM-DD, creation time as an ISO-8601 timestamp.
type record struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Timestamp   string      `json:"timestamp"`
}

func encodeExpenses(expenses []core.Expense) (string, error) {
	records := make([]record, len(expenses))
	for i, e := range expenses {
		records[i] = record{
			ID:          e.ID,
			Amount:      json.Number(e.Amount.String()),
			Category:    string(e.Category),
			Date:        e.Date.String(),
			Description: e.Description,
			Timestamp:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(b), nil
}

// decodeExpenses parses the persisted list. A value that is not a JSON array
// yields an error; the caller treats it as an empty list. Records that cannot
// be decoded, or repeat an earlier id, are returned in skipped.
func decodeExpenses(raw string) (expenses []core.Expense, skipped []error, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, nil, fmt.Errorf("decode expense list: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	expenses = make([]core.Expense, 0, len(items))
	for i, item := range items {
		e, err := decodeRecord(item)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			skipped = append(skipped, fmt.Errorf("record %d: duplicate id %s", i, e.ID))
			continue
		}
		seen[e.ID] = struct{}{}
		expenses = append(expenses, e)
	}
	return expenses, skipped, nil
}

func decodeRecord(raw json.RawMessage) (core.Expense, error) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return core.Expense{}, err
	}
	if strings.TrimSpace(r.ID) == "" {
		return core.Expense{}, fmt.Errorf("missing id")
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount %q: %w", r.Amount, core.ErrInvalidAmount)
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.Expense{}, err
	}
	if strings.TrimSpace(r.Category) == "" {
		return core.Expense{}, core.ErrInvalidCategory
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}

	var createdAt time.Time
	if r.Timestamp != "" {
		// An unreadable timestamp only loses the tie-break ordering.
		createdAt, _ = time.Parse(time.RFC3339Nano, r.Timestamp)
	}

	return core.Expense{
		ID:          r.ID,
		Amount:      amount,
		Category:    core.Category(r.Category),
		Date:        date,
		Description: r.Description,
		CreatedAt:   createdAt,
	}, nil
}

func encodeBudget(amount decimal.Decimal) string {
	return amount.String()
}

func decodeBudget(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("budget %q: %w", raw, core.ErrInvalidBudget)
	}
	return d, nil
}
