package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
	"budgetly/internal/services"
)

func (r *runner) symbol() string {
	if r.app.Config != nil && r.app.Config.CurrencySymbol != "" {
		return r.app.Config.CurrencySymbol
	}
	return core.DefaultCurrencySymbol
}

func (r *runner) money(d decimal.Decimal) string {
	return core.FormatAmount(d, r.symbol())
}

func (r *runner) printExpenses(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(w, "No expenses found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Category, r.money(e.Amount), e.Description, e.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d expense(s), total %s\n", len(expenses), r.money(core.TotalSpent(expenses)))
	return err
}

func (r *runner) printBudget(w io.Writer, status core.BudgetStatus) {
	switch status.State {
	case core.BudgetUnset:
		fmt.Fprintln(w, "Monthly budget: not set")
		return
	case core.BudgetExceeded:
		fmt.Fprintf(w, "Monthly budget: %s, spent %s (%s%%), over by %s\n",
			r.money(status.Budget), r.money(status.Spent), status.PercentUsed.StringFixed(1), r.money(status.Overage))
	default:
		fmt.Fprintf(w, "Monthly budget: %s, spent %s (%s%%), %s remaining\n",
			r.money(status.Budget), r.money(status.Spent), status.PercentUsed.StringFixed(1), r.money(status.Remaining))
	}
	if alert := status.Alert(); alert != "" {
		fmt.Fprintln(w, alert)
	}
}

func (r *runner) printSummary(w io.Writer, s services.Summary) error {
	fmt.Fprintf(w, "Total spent:  %s across %d expense(s)\n", r.money(s.TotalSpent), s.Count)
	fmt.Fprintf(w, "This month:   %s (%04d-%02d)\n", r.money(s.MonthlyTotal), s.Year, s.Month)
	r.printBudget(w, s.Budget)

	if len(s.Breakdown) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
	for _, row := range s.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", row.Category, r.money(row.Amount), row.Percent.StringFixed(1))
	}
	return tw.Flush()
}
