package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/roach88/baseline/internal/canon"
	"github.com/roach88/baseline/internal/compare"
	"github.com/roach88/baseline/internal/runopts"
	"github.com/roach88/baseline/internal/script"
	"github.com/roach88/baseline/internal/store"
	"github.com/roach88/baseline/internal/toolkit"
)

// DefaultSeed seeds the interpreter's random source when Harness.Seed is
// zero.
const DefaultSeed = 1

// Ledger records finished runs.
type Ledger interface {
	Record(ctx context.Context, run store.Run) (store.Run, error)
}

// Harness runs scripts as regression tests.
//
// Thread-safety: Run may be called concurrently only when runs do not share
// state a script can observe; the search path is shared and scripts may
// append to it.
type Harness struct {
	// SearchPath resolves script imports.
	SearchPath *script.SearchPath

	// Stdout receives script output and dashboard measurement tags.
	Stdout io.Writer

	// Stderr receives tracebacks and diagnostics.
	Stderr io.Writer

	Logger *slog.Logger

	// Seed is passed to the interpreter. Zero means DefaultSeed.
	Seed int64

	// Ledger, when set, records every run.
	Ledger Ledger

	mu          sync.Mutex
	interactors toolkit.InteractorFactory
}

// New creates a harness with the given search path and interactor factory.
// Nil arguments get an empty search path and an event loop reading stdin.
func New(sp *script.SearchPath, factory toolkit.InteractorFactory) *Harness {
	if sp == nil {
		sp = script.NewSearchPath()
	}
	if factory == nil {
		factory = toolkit.NewEventLoopFactory(os.Stdin)
	}
	return &Harness{
		SearchPath:  sp,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Seed:        DefaultSeed,
		interactors: factory,
	}
}

// Interactors returns the factory scripts currently receive.
func (h *Harness) Interactors() toolkit.InteractorFactory {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interactors
}

// Install makes factory the one scripts receive until release is called.
// Release restores the previous factory and is idempotent.
func (h *Harness) Install(factory toolkit.InteractorFactory) (release func()) {
	h.mu.Lock()
	prev := h.interactors
	h.interactors = factory
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.interactors = prev
			h.mu.Unlock()
		})
	}
}

// Run executes opts.Script and, unless the script validates itself,
// compares its render target against opts.ValidImage.
func (h *Harness) Run(ctx context.Context, opts *runopts.Options) *Report {
	report := h.run(ctx, opts)
	h.diagnose(report)
	h.record(ctx, report)

	h.Logger.Info("run finished",
		"script", report.Script,
		"status", report.Status,
		"outcome", report.Outcome,
	)
	return report
}

// Reject reports an invocation that could not be parsed. Nothing runs and
// nothing is recorded.
func (h *Harness) Reject(err error) *Report {
	report := newReport("").fail(OutcomeUsageError, err)
	if h.Stderr != nil {
		fmt.Fprintf(h.Stderr, "%v\n", err)
		fmt.Fprintf(h.Stderr, "%s: %s\n", report.Status, report.Outcome)
	}
	h.Logger.Info("run rejected", "outcome", report.Outcome, "error", err)
	return report
}

func (h *Harness) run(ctx context.Context, opts *runopts.Options) *Report {
	report := newReport(opts.Script)

	seed := h.Seed
	if seed == 0 {
		seed = DefaultSeed
	}

	if !opts.Interactive {
		release := h.Install(StandIn(h.Interactors()))
		defer release()
	}

	s, err := script.LoadFile(opts.Script)
	if err != nil {
		return report.fail(OutcomeScriptError, err)
	}
	report.Fingerprint = fingerprint(s, opts, h.Logger)

	release := h.SearchPath.Prepend(s.Dir())
	defer release()

	env := script.NewEnv()
	env.Bind(script.NameMain, script.MainModule)
	env.Bind(script.NameArgv, opts.Argv())
	env.Bind(script.NameDataRoot, opts.DataRoot)

	host := script.Host{
		Interactors: h.Interactors(),
		DataRoot:    opts.DataRoot,
		Seed:        seed,
		SearchPath:  h.SearchPath,
		Stdout:      h.Stdout,
		Logger:      h.Logger,
	}

	h.Logger.Debug("executing script", "script", opts.Script, "seed", seed, "interactive", opts.Interactive)
	if err := script.Exec(ctx, s, env, host); err != nil {
		return report.fail(OutcomeScriptError, err)
	}

	if s.SelfValidating() {
		h.Logger.Debug("self-validating script, skipping comparison", "script", opts.Script)
		return report.pass()
	}

	if opts.ValidImage == "" {
		return report.fail(OutcomeNoBaseline, errors.New("no baseline image given; pass -V <path> for a regression run"))
	}

	name, target, found, err := locateTarget(env)
	if !found {
		return report.fail(OutcomeTargetMissing, fmt.Errorf("no render target: the script bound none of %v", targetNames))
	}
	report.Target = name
	report.Kind = target.Kind()
	if err != nil {
		return report.fail(OutcomeCaptureError, &compare.CaptureError{Err: err})
	}

	var scriptThreshold *float64
	if t, ok := env.Threshold(); ok {
		scriptThreshold = &t
	}
	report.Threshold = compare.ResolveThreshold(scriptThreshold, opts.Threshold, target.Kind())

	c := &compare.Comparator{TempDir: opts.TempDir, Stdout: h.Stdout, Logger: h.Logger}
	result, err := c.Compare(target, opts.ValidImage, report.Threshold)
	report.Comparison = result
	switch {
	case err == nil:
		return report.pass()
	case compare.IsCaptureError(err):
		return report.fail(OutcomeCaptureError, err)
	case compare.IsBaselineError(err):
		return report.fail(OutcomeBaselineError, err)
	default:
		return report.fail(OutcomeImageMismatch, err)
	}
}

// diagnose prints the failure to Stderr.
func (h *Harness) diagnose(r *Report) {
	if r.Passed() || h.Stderr == nil {
		return
	}
	switch r.Outcome {
	case OutcomeScriptError:
		if script.IsScriptError(r.Err) {
			fmt.Fprintf(h.Stderr, "Traceback (most recent call last):\n%v\n", r.Err)
		} else {
			fmt.Fprintf(h.Stderr, "cannot load script: %v\n", r.Err)
		}
	case OutcomeImageMismatch:
		fmt.Fprintf(h.Stderr, "%v\n", r.Err)
		if r.Comparison != nil {
			for _, path := range r.Comparison.Artifacts {
				fmt.Fprintf(h.Stderr, "  wrote %s\n", path)
			}
		}
	default:
		fmt.Fprintf(h.Stderr, "%v\n", r.Err)
	}
	fmt.Fprintf(h.Stderr, "%s: %s (%s)\n", r.Status, r.Script, r.Outcome)
}

// record appends r to the ledger. Ledger failures are logged, never turned
// into a failed run.
func (h *Harness) record(ctx context.Context, r *Report) {
	if h.Ledger == nil {
		return
	}
	run := store.Run{
		Script:      r.Script,
		Fingerprint: r.Fingerprint,
		Status:      string(r.Status),
		Outcome:     string(r.Outcome),
		Threshold:   r.Threshold,
		Message:     r.Message(),
	}
	if r.Target != "" {
		run.Target = r.Kind.String()
	}
	if r.Comparison != nil {
		e := r.Comparison.Error
		run.ImageError = &e
		run.Artifacts = r.Comparison.Artifacts
	}
	if _, err := h.Ledger.Record(ctx, run); err != nil {
		h.Logger.Warn("failed to record run", "script", r.Script, "error", err)
	}
}

// fingerprint identifies the script source together with the arguments
// that influence its outcome. The temp directory is excluded.
func fingerprint(s *script.Script, opts *runopts.Options, logger *slog.Logger) string {
	args := map[string]any{
		"argv":         opts.Args,
		"data_root":    opts.DataRoot,
		"valid_image":  opts.ValidImage,
		"threshold":    strconv.FormatFloat(opts.Threshold, 'g', -1, 64),
		"interactive":  opts.Interactive,
		"search_paths": opts.SearchPaths,
	}
	fp, err := canon.Fingerprint(s.Source, args)
	if err != nil {
		logger.Warn("cannot fingerprint run", "error", err)
		return ""
	}
	return fp
}
