package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

func (r *runner) newAddCmd() *cobra.Command {
	var amount, category, date, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Example: `  budgetly add --amount 12.50 --category Food --description "lunch"
  budgetly add -a 40 -c bills -d 2024-03-01`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount spent, positive, dot or comma decimals")
	cmd.Flags().StringVarP(&category, "category", "c", "", "One of "+strings.Join(categoryNames(), ", "))
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "description", "", "Optional note")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	cmd.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		value, err := core.ParseAmount(amount)
		if err != nil {
			return err
		}
		cat, err := core.ParseCategory(category)
		if err != nil {
			return err
		}
		day := r.app.Expenses.Today()
		if date != "" {
			if day, err = core.ParseDate(date); err != nil {
				return err
			}
		}

		e, err := r.app.Expenses.Add(ctx, value, cat, day, description)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added %s: %s %s on %s\n", e.ID, r.money(e.Amount), e.Category, e.Date)

		summary, err := r.app.Summaries.Summary(ctx)
		if err != nil {
			return err
		}
		if alert := summary.Alert; alert != "" {
			fmt.Fprintln(out, alert)
		}
		return nil
	})
	return cmd
}

func (r *runner) newListCmd() *cobra.Command {
	var category, from, to string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses, newest first",
		Args:    cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date, inclusive (YYYY-MM-DD)")

	cmd.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		filter, err := parseFilterFlags(category, from, to)
		if err != nil {
			return err
		}
		all, err := r.app.Expenses.ListAll(cmd.Context())
		if err != nil {
			return err
		}
		return r.printExpenses(cmd.OutOrStdout(), core.ApplyFilters(all, filter))
	})
	return cmd
}

func (r *runner) newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.RunE = r.run(func(cmd *cobra.Command, args []string) error {
		id := args[0]
		out := cmd.OutOrStdout()
		if !yes && !confirm(cmd, "Are you sure you want to delete this expense?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		removed, err := r.app.Expenses.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("expense %s not found", id)
		}
		fmt.Fprintf(out, "Deleted %s\n", id)
		return nil
	})
	return cmd
}

// confirm asks a yes/no question on the command's streams; anything but
// y or yes is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func parseFilterFlags(category, from, to string) (core.Filter, error) {
	var f core.Filter
	var err error
	if category != "" && !strings.EqualFold(category, "all") {
		if f.Category, err = core.ParseCategory(category); err != nil {
			return f, err
		}
	}
	if from != "" {
		if f.From, err = core.ParseDate(from); err != nil {
			return f, err
		}
	}
	if to != "" {
		if f.To, err = core.ParseDate(to); err != nil {
			return f, err
		}
	}
	return f, nil
}

func categoryNames() []string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return names
}
