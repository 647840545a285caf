package harness

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/baseline/internal/canon"
)

// Snapshot is the machine-independent part of a Report: no absolute paths,
// reals formatted to four decimals.
func Snapshot(r *Report) map[string]any {
	snap := map[string]any{
		"status":  string(r.Status),
		"outcome": string(r.Outcome),
		"script":  filepath.Base(r.Script),
	}
	if r.Target != "" {
		snap["target"] = r.Target
		snap["kind"] = r.Kind.String()
		snap["threshold"] = strconv.FormatFloat(r.Threshold, 'f', 4, 64)
	}
	if c := r.Comparison; c != nil {
		snap["image_error"] = strconv.FormatFloat(c.Error, 'f', 4, 64)
		snap["baseline"] = filepath.Base(c.Baseline)
		artifacts := make([]string, len(c.Artifacts))
		for i, a := range c.Artifacts {
			artifacts[i] = filepath.Base(a)
		}
		snap["artifacts"] = artifacts
	}
	return snap
}

// AssertGolden compares the canonical JSON of Snapshot(r) with
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, r *Report) error {
	t.Helper()

	data, err := canon.MarshalCanonical(Snapshot(r))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
