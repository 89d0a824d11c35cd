package core

import (
	"github.com/shopspring/decimal"
)

const (
	BudgetUnset BudgetState = iota
	BudgetUnderThreshold
	BudgetWarning
	BudgetExceeded
)

// WarningThresholdPercent is the share of the budget at which a warning starts.
const WarningThresholdPercent = 80

type BudgetState int

// BudgetStatus classifies a monthly total against the configured budget.
// Remaining is set for UnderThreshold and Warning, Overage for Exceeded.
type BudgetStatus struct {
	State       BudgetState     `json:"state"`
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Overage     decimal.Decimal `json:"overage"`
	PercentUsed decimal.Decimal `json:"percent_used"`
}

func (s BudgetState) String() string {
	switch s {
	case BudgetUnderThreshold:
		return "under_threshold"
	case BudgetWarning:
		return "warning"
	case BudgetExceeded:
		return "exceeded"
	default:
		return "unset"
	}
}

// MarshalText encodes the state by name.
func (s BudgetState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EvaluateBudget derives the budget status from the month's spending. When
// set is false the budget is not configured and the status is BudgetUnset.
func EvaluateBudget(monthlyTotal, budget decimal.Decimal, set bool) BudgetStatus {
	if !set || !budget.IsPositive() {
		return BudgetStatus{State: BudgetUnset, Spent: monthlyTotal}
	}

	status := BudgetStatus{
		Budget:      budget,
		Spent:       monthlyTotal,
		PercentUsed: CategoryPercentage(monthlyTotal, budget),
	}

	// Thresholds are compared on exact products so 79.999...% never rounds up.
	warnAt := budget.Mul(decimal.NewFromInt(WarningThresholdPercent))
	switch {
	case monthlyTotal.GreaterThanOrEqual(budget):
		status.State = BudgetExceeded
		status.Overage = monthlyTotal.Sub(budget)
	case monthlyTotal.Mul(hundred).GreaterThanOrEqual(warnAt):
		status.State = BudgetWarning
		status.Remaining = budget.Sub(monthlyTotal)
	default:
		status.State = BudgetUnderThreshold
		status.Remaining = budget.Sub(monthlyTotal)
	}
	return status
}

// Alert returns the banner shown when the budget needs attention, or "".
func (s BudgetStatus) Alert() string {
	switch s.State {
	case BudgetExceeded:
		return "Budget Exceeded! You have spent more than your monthly budget."
	case BudgetWarning:
		return "Budget Warning! You have used 80% of your monthly budget."
	}
	return ""
}
