package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/baseline/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Script      string
	Fingerprint string
	Limit       int
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// Lines renders one line per run, oldest first.
func (r HistoryResult) Lines() []string {
	if len(r.Runs) == 0 {
		return []string{"no runs recorded"}
	}
	lines := make([]string, 0, len(r.Runs))
	for _, run := range r.Runs {
		line := fmt.Sprintf("%4d  %-6s  %-13s  %s", run.Seq, run.Status, run.Outcome, run.Script)
		if run.ImageError != nil {
			line += fmt.Sprintf("  error=%.4f threshold=%g", *run.ImageError, run.Threshold)
		}
		lines = append(lines, line)
	}
	return lines
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the runs recorded in the history database given by --history.

Example:
  baseline --history runs.db history
  baseline --history runs.db history --script scripts/cone.yaml --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "only runs of this script path")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only runs with this fingerprint")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "show only the most recent n runs")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	stderr := cmd.ErrOrStderr()
	logger := newLogger(opts.RootOptions, stderr)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), stderr)

	if opts.History == "" {
		_ = formatter.Error(CodeHistory, "--history is required", nil)
		return NewExitError(ExitCommandError, "--history is required")
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	st, err := openHistory(opts.RootOptions, logger, ExitCommandError)
	if err != nil {
		_ = formatter.Error(CodeHistory, err.Error(), nil)
		return err
	}
	defer closeHistory(st, logger)

	runs, err := st.List(cmd.Context(), store.Filter{
		Script:      opts.Script,
		Fingerprint: opts.Fingerprint,
		Limit:       opts.Limit,
	})
	if err != nil {
		_ = formatter.Error(CodeHistory, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	return formatter.Success(HistoryResult{Runs: runs})
}
