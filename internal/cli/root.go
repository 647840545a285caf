package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/baseline/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// History is the path of the SQLite run ledger. Empty disables it.
	History string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the baseline CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "baseline - image regression testing for rendering scripts",
		Long: `Run rendering scripts and compare what they draw against baseline images.

A script that builds a render window, viewer, image window or interactor is
captured after it finishes and compared with a valid image. Scripts that
validate themselves only have to finish without error.`,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.History, "history", "", "path to SQLite run history")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newLogger returns a text logger on w: debug when verbose, warnings
// otherwise.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openHistory opens the run ledger named by --history, or returns nil
// when the flag is unset.
func openHistory(opts *RootOptions, logger *slog.Logger, code int) (*store.Store, error) {
	if opts.History == "" {
		return nil, nil
	}
	logger.Debug("opening history", "path", opts.History)
	st, err := store.Open(opts.History)
	if err != nil {
		return nil, WrapExitError(code, "failed to open history", err)
	}
	return st, nil
}

func closeHistory(st *store.Store, logger *slog.Logger) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logger.Error("error closing history", "error", err)
	}
}
