package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"Food", "food", " FOOD "} {
		c, err := ParseCategory(in)
		if err != nil || c != Food {
			t.Fatalf("%q expected Food, got %q (err=%v)", in, c, err)
		}
	}
	if _, err := ParseCategory("Groceries"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if len(Categories()) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(Categories()))
	}
}

func TestExpenseValidate(t *testing.T) {
	today := NewDate(2024, 3, 15)
	good := Expense{
		Amount:   decimal.RequireFromString("10.50"),
		Category: Food,
		Date:     today,
	}
	if err := good.Validate(today); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Amount: decimal.Zero, Category: Food, Date: today}, ErrInvalidAmount},
		{Expense{Amount: decimal.NewFromInt(-1), Category: Food, Date: today}, ErrInvalidAmount},
		{Expense{Amount: decimal.NewFromInt(1), Category: "Rent", Date: today}, ErrInvalidCategory},
		{Expense{Amount: decimal.NewFromInt(1), Category: Food}, ErrInvalidDate},
		{Expense{Amount: decimal.NewFromInt(1), Category: Food, Date: NewDate(2024, 3, 16)}, ErrFutureDate},
		{Expense{Amount: decimal.NewFromInt(1), Category: Food, Date: today, Description: strings.Repeat("x", 201)}, ErrDescriptionTooLong},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(today); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("add: %w", ErrFutureDate)) {
		t.Fatalf("wrapped ErrFutureDate should be a validation error")
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatalf("arbitrary error should not be a validation error")
	}
	if got := ValidationReason(ErrInvalidBudget); got != "invalid_budget" {
		t.Fatalf("ValidationReason = %q", got)
	}
	if got := ValidationReason(errors.New("x")); got != "" {
		t.Fatalf("ValidationReason of non-validation error = %q", got)
	}
}

func TestDescriptionLimitMessage(t *testing.T) {
	want := fmt.Sprintf("max %d characters", MaxDescriptionLength)
	if !strings.Contains(ErrDescriptionTooLong.Error(), want) {
		t.Fatalf("message %q does not state the limit %d", ErrDescriptionTooLong, MaxDescriptionLength)
	}

	atLimit := Expense{Amount: decimal.NewFromInt(1), Category: Food, Date: NewDate(2024, time.March, 1), Description: strings.Repeat("é", MaxDescriptionLength)}
	if err := atLimit.Validate(NewDate(2024, time.March, 15)); err != nil {
		t.Fatalf("description of exactly %d runes rejected: %v", MaxDescriptionLength, err)
	}
}
