package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/baseline/internal/harness"
	"github.com/roach88/baseline/internal/runopts"
	"github.com/roach88/baseline/internal/script"
	"github.com/roach88/baseline/internal/toolkit"
)

// RunOptions holds state for the run command.
type RunOptions struct {
	*RootOptions

	// SearchPath overrides the import search path (for testing).
	SearchPath *script.SearchPath

	// Interactors overrides the interactor factory (for testing). Nil means
	// event loops reading the command's stdin.
	Interactors toolkit.InteractorFactory

	// Getenv overrides environment lookups (for testing).
	Getenv func(string) string
}

// RunResult is the JSON payload of a run.
type RunResult struct {
	Status      harness.Status  `json:"status"`
	Outcome     harness.Outcome `json:"outcome"`
	Script      string          `json:"script"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Target      string          `json:"target,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	Threshold   float64         `json:"threshold,omitempty"`
	ImageError  *float64        `json:"image_error,omitempty"`
	Baseline    string          `json:"baseline,omitempty"`
	Artifacts   []string        `json:"artifacts,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// Lines renders the result for text output.
func (r RunResult) Lines() []string {
	line := fmt.Sprintf("%s: %s", r.Status, r.Script)
	if r.ImageError != nil {
		line += fmt.Sprintf(" (%s error %.4f, threshold %g)", r.Kind, *r.ImageError, r.Threshold)
	}
	return []string{line}
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [-D dir] [-V image] [-T dir] [-A dir]... [-t threshold] [-I] [args...]",
		Short: "Run a script and compare its frame with a baseline",
		Long: `Run a rendering script and compare the frame it leaves behind with a
baseline image.

Options after the script path are read by the harness; anything it does not
recognize is passed to the script as its argument vector.

  -D dir        data root; defaults to $BASELINE_DATA_ROOT
  -V image      baseline image; alternates <stem>_1.png, <stem>_2.png, ... are tried too
  -T dir        directory for the rendered and difference images
  -A dir        add dir to the import search path (repeatable)
  -t threshold  allowed error when the script sets none
  -I            interactive: let the script's interactor run its event loop

Global flags such as --format and --history must come before "run".

Exit status is 0 when the run PASSED and 1 otherwise.

Example:
  baseline run scripts/cone.yaml -D data -V data/baseline/cone.png -T /tmp
  baseline --format json --history runs.db run scripts/cone.yaml -V cone.png`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args)
		},
	}

	return cmd
}

func runScript(cmd *cobra.Command, opts *RunOptions, args []string) error {
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		return cmd.Help()
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(opts.RootOptions, stderr)
	formatter := newFormatter(opts.RootOptions, stdout, stderr)

	sp := opts.SearchPath
	if sp == nil {
		sp = script.NewSearchPath()
	}
	interactors := opts.Interactors
	if interactors == nil {
		interactors = toolkit.NewEventLoopFactory(cmd.InOrStdin())
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	h := harness.New(sp, interactors)
	h.Stdout = stdout
	h.Stderr = stderr
	h.Logger = logger
	if opts.Format == "json" {
		// Script output and measurement tags would corrupt the response.
		h.Stdout = stderr
	}

	runOpts, err := runopts.Parse(args, getenv, sp)
	if err != nil {
		var usage *runopts.UsageError
		if !errors.As(err, &usage) {
			return WrapExitError(ExitCommandError, "failed to parse arguments", err)
		}
		report := h.Reject(err)
		if opts.Format == "json" {
			_ = formatter.Error(CodeUsage, err.Error(), nil)
		}
		return NewExitError(report.ExitCode(), err.Error())
	}

	// A run that cannot be recorded is a failed run, not a command error.
	st, err := openHistory(opts.RootOptions, logger, ExitFailure)
	if err != nil {
		_ = formatter.Error(CodeHistory, err.Error(), nil)
		return err
	}
	defer closeHistory(st, logger)
	if st != nil {
		h.Ledger = st
	}

	report := h.Run(cmd.Context(), runOpts)
	result := newRunResult(report)

	if report.Passed() {
		return formatter.Success(result)
	}
	if opts.Format == "json" {
		_ = formatter.Error(CodeScript, report.Message(), result)
	}
	return NewExitError(report.ExitCode(), fmt.Sprintf("%s: %s", report.Outcome, report.Message()))
}

func newRunResult(r *harness.Report) RunResult {
	result := RunResult{
		Status:      r.Status,
		Outcome:     r.Outcome,
		Script:      r.Script,
		Fingerprint: r.Fingerprint,
		Target:      r.Target,
		Threshold:   r.Threshold,
		Message:     r.Message(),
	}
	if r.Target != "" {
		result.Kind = r.Kind.String()
	}
	if c := r.Comparison; c != nil {
		e := c.Error
		result.ImageError = &e
		result.Baseline = c.Baseline
		result.Artifacts = c.Artifacts
	}
	return result
}
