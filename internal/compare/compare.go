package compare

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/baseline/internal/toolkit"
)

// Comparator checks render targets against baseline images.
type Comparator struct {
	// TempDir receives artifacts. Empty means os.TempDir().
	TempDir string

	// Stdout receives dashboard measurement tags.
	Stdout io.Writer

	Logger *slog.Logger
}

// Comparison is the result of a completed comparison.
type Comparison struct {
	// Baseline is the baseline file that matched best.
	Baseline string

	// Error is the thresholded error against Baseline.
	Error float64

	Threshold    float64
	Passed       bool
	SizeMismatch bool

	// Artifacts are the files written, rendered image first.
	Artifacts []string
}

// Compare captures t and compares it with baseline and its alternates
// (<stem>_1.png, <stem>_2.png, ...). The best-matching baseline decides.
//
// Errors:
//   - *CaptureError if t cannot be captured
//   - *BaselineError if baseline cannot be read; the rendered image is saved
//   - *MismatchError if the best error exceeds threshold; the rendered and
//     difference images are saved and the Comparison is returned alongside
//
// All artifacts are written before Compare returns.
func (c *Comparator) Compare(t Target, baseline string, threshold float64) (*Comparison, error) {
	logger := c.logger()

	rendered, err := t.Capture()
	if err != nil {
		return nil, &CaptureError{Err: err}
	}

	base, err := toolkit.ReadImage(baseline)
	if err != nil {
		be := &BaselineError{Path: baseline, Err: err}
		path, werr := c.writeArtifact(baseline, "", rendered)
		if werr != nil {
			logger.Warn("failed to save rendered image", "error", werr)
		} else {
			be.Rendered = path
			c.measureFile("TestImage", path)
		}
		return nil, be
	}

	bestPath := baseline
	best := Diff(rendered, base)
	for _, alt := range alternates(baseline) {
		img, err := toolkit.ReadImage(alt)
		if err != nil {
			logger.Warn("skipping unreadable alternate baseline", "path", alt, "error", err)
			continue
		}
		d := Diff(rendered, img)
		logger.Debug("alternate baseline", "path", alt, "error", d.ThresholdedError)
		if d.ThresholdedError < best.ThresholdedError {
			best, bestPath = d, alt
		}
	}

	result := &Comparison{
		Baseline:     bestPath,
		Error:        best.ThresholdedError,
		Threshold:    threshold,
		Passed:       best.ThresholdedError <= threshold,
		SizeMismatch: best.SizeMismatch,
	}
	logger.Info("image comparison",
		"kind", t.Kind(),
		"baseline", bestPath,
		"error", result.Error,
		"threshold", threshold,
		"passed", result.Passed,
	)
	c.measure("ImageError", "numeric/double", strconv.FormatFloat(result.Error, 'g', -1, 64))
	if result.Passed {
		return result, nil
	}

	if best.SizeMismatch {
		logger.Warn("image size mismatch", "baseline", bestPath)
	}
	renderedPath, err := c.writeArtifact(baseline, "", rendered)
	if err != nil {
		return result, fmt.Errorf("failed to save rendered image: %w", err)
	}
	diffPath, err := c.writeArtifact(baseline, ".diff", best.Image)
	if err != nil {
		return result, fmt.Errorf("failed to save difference image: %w", err)
	}
	result.Artifacts = []string{renderedPath, diffPath}

	c.measure("BaselineImage", "text/string", filepath.Base(bestPath))
	c.measureFile("TestImage", renderedPath)
	c.measureFile("DifferenceImage", diffPath)
	c.measureFile("ValidImage", bestPath)

	return result, &MismatchError{
		Baseline:   bestPath,
		ImageError: result.Error,
		Threshold:  threshold,
		Artifacts:  result.Artifacts,
	}
}

// CompareFiles compares two image files. The rendered file is treated as a
// target of KindImage.
func (c *Comparator) CompareFiles(rendered, baseline string, threshold float64) (*Comparison, error) {
	img, err := toolkit.ReadImage(rendered)
	if err != nil {
		return nil, &CaptureError{Err: err}
	}
	return c.Compare(ImageTarget{Image: img}, baseline, threshold)
}

// ArtifactPaths returns the stable artifact names for baseline:
// <TempDir>/<stem>.png and <TempDir>/<stem>.diff.png.
func (c *Comparator) ArtifactPaths(baseline string) (rendered, diff string) {
	return c.artifactPath(baseline, ""), c.artifactPath(baseline, ".diff")
}

func (c *Comparator) artifactPath(baseline, suffix string) string {
	base := filepath.Base(baseline)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := c.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, stem+suffix+".png")
}

func (c *Comparator) writeArtifact(baseline, suffix string, img image.Image) (string, error) {
	path := c.artifactPath(baseline, suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := toolkit.WritePNG(path, img); err != nil {
		return "", err
	}
	c.logger().Debug("wrote artifact", "path", path)
	return path, nil
}

// alternates lists <stem>_1.png, <stem>_2.png, ... next to baseline, stopping
// at the first index that does not exist.
func alternates(baseline string) []string {
	ext := filepath.Ext(baseline)
	stem := strings.TrimSuffix(baseline, ext)
	var out []string
	for i := 1; ; i++ {
		path := stem + "_" + strconv.Itoa(i) + ext
		if _, err := os.Stat(path); err != nil {
			return out
		}
		out = append(out, path)
	}
}

func (c *Comparator) measure(name, typ, value string) {
	if c.Stdout == nil {
		return
	}
	fmt.Fprintf(c.Stdout, "<DartMeasurement name=%q type=%q>%s</DartMeasurement>\n", name, typ, value)
}

func (c *Comparator) measureFile(name, path string) {
	if c.Stdout == nil {
		return
	}
	fmt.Fprintf(c.Stdout, "<DartMeasurementFile name=%q type=\"image/png\">%s</DartMeasurementFile>\n", name, path)
}

func (c *Comparator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}
