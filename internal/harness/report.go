package harness

import "github.com/roach88/baseline/internal/compare"

// Status is the verdict of a run.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// Outcome says why a run ended the way it did. Only OutcomeSuccess passes.
type Outcome string

const (
	OutcomeSuccess       Outcome = "Success"
	OutcomeUsageError    Outcome = "UsageError"
	OutcomeScriptError   Outcome = "ScriptError"
	OutcomeTargetMissing Outcome = "TargetMissing"
	OutcomeBaselineError Outcome = "BaselineError"
	OutcomeCaptureError  Outcome = "CaptureError"
	OutcomeImageMismatch Outcome = "ImageMismatch"
	OutcomeNoBaseline    Outcome = "NoBaseline"
)

// Report is the result of one run.
type Report struct {
	Status  Status  `json:"status"`
	Outcome Outcome `json:"outcome"`

	// Script is the script path as invoked.
	Script string `json:"script"`

	// Fingerprint identifies the script source and arguments. Empty when
	// the script could not be read.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Target is the binding compared ("iren", "renWin", ...), if any.
	Target string       `json:"target,omitempty"`
	Kind   compare.Kind `json:"-"`

	// Threshold is the resolved threshold, set once a target was found.
	Threshold float64 `json:"threshold,omitempty"`

	// Err is the failure, nil on success.
	Err error `json:"-"`

	Comparison *compare.Comparison `json:"comparison,omitempty"`
}

func newReport(path string) *Report {
	return &Report{Status: StatusFailed, Script: path}
}

func (r *Report) pass() *Report {
	r.Status = StatusPassed
	r.Outcome = OutcomeSuccess
	r.Err = nil
	return r
}

func (r *Report) fail(outcome Outcome, err error) *Report {
	r.Status = StatusFailed
	r.Outcome = outcome
	r.Err = err
	return r
}

// Passed reports whether the run concluded with Success.
func (r *Report) Passed() bool {
	return r.Outcome == OutcomeSuccess
}

// ExitCode is 0 for Success and 1 for every other outcome.
func (r *Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// Message is a one-line summary of the failure, empty on success.
func (r *Report) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
