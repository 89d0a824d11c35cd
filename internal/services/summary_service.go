package services

import (
	"context"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
	"budgetly/internal/log"
)

// CategoryShare is one row of the category breakdown.
type CategoryShare struct {
	Category core.Category   `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// Summary is the statistics panel derived from the whole store.
type Summary struct {
	TotalSpent   decimal.Decimal   `json:"total_spent"`
	Count        int               `json:"count"`
	MonthlyTotal decimal.Decimal   `json:"monthly_total"`
	Year         int               `json:"year"`
	Month        int               `json:"month"`
	Breakdown    []CategoryShare   `json:"breakdown"`
	Budget       core.BudgetStatus `json:"budget"`
	Alert        string            `json:"alert,omitempty"`
}

// SummaryService computes aggregates on demand; nothing it returns is stored.
type SummaryService struct {
	expenses *ExpenseService
	logger   *log.Logger
}

func NewSummaryService(expenses *ExpenseService, logger *log.Logger) *SummaryService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SummaryService{
		expenses: expenses,
		logger:   logger.WithComponent(log.ComponentSummary),
	}
}

// Summary reads the store and the budget and derives every figure for the
// current month of the service clock.
func (s *SummaryService) Summary(ctx context.Context) (Summary, error) {
	all, err := s.expenses.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	budget, set, err := s.expenses.GetBudget(ctx)
	if err != nil {
		return Summary{}, err
	}

	today := s.expenses.Today()
	year, month := today.Year(), today.Month()
	total := core.TotalSpent(all)
	monthly := core.MonthlyTotal(all, year, month)

	totals := core.CategoryTotals(all)
	breakdown := make([]CategoryShare, len(totals))
	for i, ct := range totals {
		breakdown[i] = CategoryShare{
			Category: ct.Category,
			Amount:   ct.Amount,
			Percent:  core.CategoryPercentage(ct.Amount, total).Round(2),
		}
	}

	status := core.EvaluateBudget(monthly, budget, set)
	status.PercentUsed = status.PercentUsed.Round(2)

	s.logger.DebugContext(ctx, "Summary computed",
		log.FieldCount, len(all),
		log.FieldOperation, log.OpList)

	return Summary{
		TotalSpent:   total,
		Count:        len(all),
		MonthlyTotal: monthly,
		Year:         year,
		Month:        int(month),
		Breakdown:    breakdown,
		Budget:       status,
		Alert:        status.Alert(),
	}, nil
}
