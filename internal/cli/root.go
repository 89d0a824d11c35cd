package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// daemonAnnotation marks long-running commands, which keep the configured
// log level instead of being quietened.
const daemonAnnotation = "daemon"

// Options lets callers replace the standard streams and the bootstrap.
type Options struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	Bootstrap func(ctx context.Context, stderr io.Writer, quiet bool) (*App, error)
}

type runner struct {
	opts    Options
	app     *App
	verbose bool
}

// NewRootCmd builds the budgetly command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Bootstrap == nil {
		opts.Bootstrap = Bootstrap
	}
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:   "budgetly",
		Short: "Track personal expenses against a monthly budget",
		Long: `budgetly records expenses, lists and filters them, and reports totals,
a per-category breakdown and the state of an optional monthly budget.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			quiet := !r.verbose && cmd.Annotations[daemonAnnotation] == ""
			app, err := r.opts.Bootstrap(cmd.Context(), r.opts.Err, quiet)
			if err != nil {
				return err
			}
			r.app = app
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Log at the configured level instead of warnings only")

	root.AddCommand(
		r.newAddCmd(),
		r.newListCmd(),
		r.newDeleteCmd(),
		r.newBudgetCmd(),
		r.newStatsCmd(),
		r.newServeCmd(),
		r.newWatchCmd(),
	)
	return root
}

// Execute runs the command tree against the process streams and returns the
// exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

// run wraps a command body so the backend is released however it ends.
func (r *runner) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer func() {
			if err := r.app.Close(); err != nil && r.app.Logger != nil {
				r.app.Logger.Warn("Failed to release backend", "error", err)
			}
		}()
		return fn(cmd, args)
	}
}
