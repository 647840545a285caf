package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/baseline/internal/script"
)

// ScriptValidation is the validation result for one script.
type ScriptValidation struct {
	Path           string   `json:"path"`
	Valid          bool     `json:"valid"`
	Name           string   `json:"name,omitempty"`
	SelfValidating bool     `json:"self_validating,omitempty"`
	Threshold      *float64 `json:"threshold,omitempty"`
	Imports        []string `json:"imports,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Scripts []ScriptValidation `json:"scripts"`
}

// Lines renders the result for text output.
func (r ValidationResult) Lines() []string {
	lines := make([]string, 0, len(r.Scripts))
	for _, s := range r.Scripts {
		if !s.Valid {
			lines = append(lines, fmt.Sprintf("✗ %s: %s", s.Path, s.Error))
			continue
		}
		line := fmt.Sprintf("✓ %s (%s)", s.Path, s.Name)
		if s.SelfValidating {
			line += " self-validating"
		}
		lines = append(lines, line)
	}
	return lines
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>...",
		Short: "Check scripts against the script schema without running them",
		Long: `Parse scripts and check them against the script schema.

Nothing is executed and imports are not resolved.

Example:
  baseline validate scripts/*.yaml
  baseline --format json validate scripts/cone.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{Valid: true}
	for _, path := range paths {
		formatter.VerboseLog("validating %s", path)
		result.Scripts = append(result.Scripts, validateScript(path))
		if !result.Scripts[len(result.Scripts)-1].Valid {
			result.Valid = false
		}
	}

	if result.Valid {
		return formatter.Success(result)
	}
	if opts.Format == "json" {
		_ = formatter.Error(CodeScript, "invalid scripts", result)
	} else {
		_ = formatter.Success(result)
	}
	return NewExitError(ExitFailure, "invalid scripts")
}

func validateScript(path string) ScriptValidation {
	s, err := script.LoadFile(path)
	if err != nil {
		return ScriptValidation{Path: path, Error: err.Error()}
	}
	return ScriptValidation{
		Path:           path,
		Valid:          true,
		Name:           s.Name,
		SelfValidating: s.SelfValidating(),
		Threshold:      s.Threshold,
		Imports:        s.Imports,
	}
}
