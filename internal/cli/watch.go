package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
)

var errBrokerNotConfigured = errors.New("watch needs a message broker: set AMQP_URL or amqp_url in the config file")

func (r *runner) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "watch",
		Short:       "Print change events published by other budgetly processes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{daemonAnnotation: "true"},
	}
	cmd.RunE = r.run(func(cmd *cobra.Command, _ []string) error {
		cfg := r.app.Config
		if !cfg.AMQPEnabled() {
			return errBrokerNotConfigured
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, r.app.Logger)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer client.Close()

		ctx, cancel := SignalContext(cmd.Context(), r.app.Logger)
		defer cancel()

		out := cmd.OutOrStdout()
		err = client.Consume(ctx, func(_ context.Context, event core.ChangeEvent) error {
			return r.printEvent(out, event)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return cmd
}

func (r *runner) printEvent(w io.Writer, event core.ChangeEvent) error {
	at := event.At.Local().Format("2006-01-02 15:04:05")
	var err error
	switch {
	case event.Expense != nil:
		e := event.Expense
		_, err = fmt.Fprintf(w, "%s %s %s %s %s on %s\n", at, event.Kind, e.ID, r.money(e.Amount), e.Category, e.Date)
	case event.Budget != nil:
		_, err = fmt.Fprintf(w, "%s %s %s\n", at, event.Kind, r.money(*event.Budget))
	default:
		_, err = fmt.Fprintf(w, "%s %s %s\n", at, event.Kind, event.ExpenseID)
	}
	return err
}
