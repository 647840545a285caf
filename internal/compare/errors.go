package compare

import (
	"errors"
	"fmt"
)

// CaptureError reports that the target's frame buffer could not be read.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("cannot capture render target: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// BaselineError reports a missing or unreadable baseline image.
type BaselineError struct {
	// Path is the baseline that could not be read.
	Path string

	// Rendered is where the captured frame was saved, if it could be.
	Rendered string

	Err error
}

func (e *BaselineError) Error() string {
	msg := fmt.Sprintf("cannot read baseline image %s: %v", e.Path, e.Err)
	if e.Rendered != "" {
		msg += fmt.Sprintf(" (rendered image saved to %s)", e.Rendered)
	}
	return msg
}

func (e *BaselineError) Unwrap() error { return e.Err }

// MismatchError reports an error above threshold.
type MismatchError struct {
	Baseline   string
	ImageError float64
	Threshold  float64
	Artifacts  []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("image mismatch against %s: error %.4g exceeds threshold %g", e.Baseline, e.ImageError, e.Threshold)
}

// IsCaptureError reports whether err is, or wraps, a *CaptureError.
func IsCaptureError(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce)
}

// IsBaselineError reports whether err is, or wraps, a *BaselineError.
func IsBaselineError(err error) bool {
	var be *BaselineError
	return errors.As(err, &be)
}

// IsMismatch reports whether err is, or wraps, a *MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}
