package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

func (r *runner) newBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set or show the monthly budget",
	}

	set := &cobra.Command{
		Use:   "set AMOUNT",
		Short: "Set the monthly budget",
		Args:  cobra.ExactArgs(1),
	}
	set.RunE = r.run(func(cmd *cobra.Command, args []string) error {
		amount, err := core.ParseBudget(args[0])
		if err != nil {
			return err
		}
		if err := r.app.Expenses.SetBudget(cmd.Context(), amount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Monthly budget set to %s\n", r.money(amount))
		return nil
	})

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the budget and this month's usage",
		Args:  cobra.NoArgs,
	}
	show.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		summary, err := r.app.Summaries.Summary(cmd.Context())
		if err != nil {
			return err
		}
		r.printBudget(cmd.OutOrStdout(), summary.Budget)
		return nil
	})

	cmd.AddCommand(set, show)
	return cmd
}

func (r *runner) newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals, this month's spending and the category breakdown",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		summary, err := r.app.Summaries.Summary(cmd.Context())
		if err != nil {
			return err
		}
		return r.printSummary(cmd.OutOrStdout(), summary)
	})
	return cmd
}
