package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/baseline/internal/compare"
	"github.com/roach88/baseline/internal/runopts"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Threshold float64
	TempDir   string
}

// CompareResult is the payload of the compare command.
type CompareResult struct {
	Rendered     string   `json:"rendered"`
	Baseline     string   `json:"baseline"`
	ImageError   float64  `json:"image_error"`
	Threshold    float64  `json:"threshold"`
	Passed       bool     `json:"passed"`
	SizeMismatch bool     `json:"size_mismatch,omitempty"`
	Artifacts    []string `json:"artifacts,omitempty"`
}

// Lines renders the result for text output.
func (r CompareResult) Lines() []string {
	verdict := "match"
	if !r.Passed {
		verdict = "MISMATCH"
	}
	lines := []string{fmt.Sprintf("%s: %s vs %s (error %.4f, threshold %g)", verdict, r.Rendered, r.Baseline, r.ImageError, r.Threshold)}
	for _, a := range r.Artifacts {
		lines = append(lines, "  wrote "+a)
	}
	return lines
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <rendered> <baseline>",
		Short: "Compare an image file with a baseline",
		Long: `Compare a previously rendered image with a baseline and its alternates,
using the same metric as run.

Example:
  baseline compare /tmp/cone.png data/baseline/cone.png -t 5`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().Float64VarP(&opts.Threshold, "threshold", "t", 0, "allowed error (0 means the image default)")
	cmd.Flags().StringVarP(&opts.TempDir, "temp-dir", "T", "", "directory for the difference image (default os temp dir)")

	return cmd
}

func runCompare(cmd *cobra.Command, opts *CompareOptions, rendered, baseline string) error {
	stderr := cmd.ErrOrStderr()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), stderr)

	if err := runopts.CheckThreshold(opts.Threshold); err != nil {
		return WrapExitError(ExitCommandError, "invalid --threshold", err)
	}
	threshold := compare.ResolveThreshold(nil, opts.Threshold, compare.KindImage)

	c := &compare.Comparator{
		TempDir: opts.TempDir,
		Stdout:  stderr,
		Logger:  newLogger(opts.RootOptions, stderr),
	}
	formatter.VerboseLog("comparing %s with %s (threshold %g)", rendered, baseline, threshold)

	result, err := c.CompareFiles(rendered, baseline, threshold)
	switch {
	case err == nil, compare.IsMismatch(err):
	case compare.IsCaptureError(err):
		_ = formatter.Error(CodeCompare, err.Error(), nil)
		return WrapExitError(ExitFailure, "cannot read rendered image", err)
	case compare.IsBaselineError(err):
		_ = formatter.Error(CodeCompare, err.Error(), nil)
		return WrapExitError(ExitFailure, "cannot read baseline", err)
	default:
		_ = formatter.Error(CodeCompare, err.Error(), nil)
		return WrapExitError(ExitFailure, "comparison failed", err)
	}

	out := CompareResult{
		Rendered:     rendered,
		Baseline:     result.Baseline,
		ImageError:   result.Error,
		Threshold:    result.Threshold,
		Passed:       result.Passed,
		SizeMismatch: result.SizeMismatch,
		Artifacts:    result.Artifacts,
	}
	if err := formatter.Success(out); err != nil {
		return err
	}
	if !out.Passed {
		return NewExitError(ExitFailure, "image mismatch")
	}
	return nil
}
