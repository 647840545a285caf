package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/roach88/baseline/internal/toolkit"
)

// Host is what a script execution needs from its caller.
type Host struct {
	// Interactors constructs the interactor for the interactor operation.
	// The harness passes a batch stand-in here for unattended runs.
	Interactors toolkit.InteractorFactory

	// DataRoot prefixes relative input file names.
	DataRoot string

	// Seed initializes the random source used by seeded operations.
	Seed int64

	// SearchPath resolves imports. Scripts may append to it.
	SearchPath *SearchPath

	// Stdout receives print output.
	Stdout io.Writer

	// Logger receives step-level debug logs.
	Logger *slog.Logger
}

// interp holds the state of one execution.
type interp struct {
	ctx      context.Context
	host     Host
	env      *Env
	rng      *rand.Rand
	imported map[string]bool
	frames   []Frame
}

// Exec runs s against env.
//
// Execution order:
//  1. Bind the script's own threshold, if it sets one
//  2. Run each import (steps only), at most once per execution
//  3. Run steps
//  4. Run main, if env binds __name__ to "__main__"
//
// Any failure is returned as a *ScriptError. The context is checked between
// steps.
func Exec(ctx context.Context, s *Script, env *Env, host Host) error {
	if host.Interactors == nil {
		host.Interactors = toolkit.NewEventLoopFactory(nil)
	}
	if host.SearchPath == nil {
		host.SearchPath = NewSearchPath()
	}
	if host.Stdout == nil {
		host.Stdout = io.Discard
	}
	if host.Logger == nil {
		host.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	in := &interp{
		ctx:      ctx,
		host:     host,
		env:      env,
		rng:      rand.New(rand.NewSource(host.Seed)),
		imported: map[string]bool{absPath(s.Path): true},
	}

	if s.Threshold != nil {
		if err := checkThreshold(*s.Threshold); err != nil {
			return in.fail(Frame{File: s.Path, Where: "threshold"}, err)
		}
		env.Bind(NameThreshold, *s.Threshold)
	}
	return in.run(s, env.IsMain())
}

func (in *interp) run(s *Script, main bool) error {
	for i, name := range s.Imports {
		frame := Frame{File: s.Path, Line: s.importLine(i), Where: "import " + name}
		if err := in.importHelper(name, frame); err != nil {
			return err
		}
	}

	if err := in.block(s, "steps", s.Steps); err != nil {
		return err
	}
	if main {
		return in.block(s, "main", s.Main)
	}
	return nil
}

// importHelper resolves, loads and runs a helper script.
func (in *interp) importHelper(name string, frame Frame) error {
	path, err := in.host.SearchPath.Resolve(name)
	if err != nil {
		return in.fail(frame, raiseWrap(KindImport, err, "cannot import %q", name))
	}

	key := absPath(path)
	if in.imported[key] {
		return nil
	}
	in.imported[key] = true

	helper, err := LoadFile(path)
	if err != nil {
		return in.fail(frame, raiseWrap(KindImport, err, "cannot import %q", name))
	}

	in.host.Logger.Debug("importing helper", "name", name, "path", path)

	in.frames = append(in.frames, frame)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()
	return in.run(helper, false)
}

// block runs a list of steps in order.
func (in *interp) block(s *Script, block string, steps []Step) error {
	for i, st := range steps {
		frame := Frame{File: s.Path, Line: st.Line, Where: fmt.Sprintf("%s[%d] %s", block, i, st.Call)}

		if err := in.ctx.Err(); err != nil {
			return in.fail(frame, raiseWrap(KindInterrupted, err, "execution cancelled"))
		}

		op, ok := ops[st.Call]
		if !ok {
			return in.fail(frame, raise(KindName, "unknown operation %q", st.Call))
		}

		result, err := invoke(op, &call{in: in, name: st.Call, args: st.Args})
		if err != nil {
			return in.fail(frame, err)
		}

		if st.Bind != "" {
			if result == nil {
				return in.fail(frame, raise(KindValue, "%s returns no value to bind to %q", st.Call, st.Bind))
			}
			if st.Bind == NameThreshold {
				if err := checkThreshold(result); err != nil {
					return in.fail(frame, err)
				}
			}
			in.env.Bind(st.Bind, result)
		}

		in.host.Logger.Debug("step completed",
			"script", s.Name,
			"block", block,
			"index", i,
			"call", st.Call,
			"bind", st.Bind,
		)
	}
	return nil
}

// invoke runs op. A panic inside the operation becomes a RuntimeError so it
// surfaces as a traceback like any other failure.
func invoke(op opFunc, c *call) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, raise(KindRuntime, "%s() panicked: %v", c.name, r)
		}
	}()
	return op(c)
}

// fail attaches the current frame chain to err.
func (in *interp) fail(frame Frame, err error) error {
	var se *ScriptError
	if errors.As(err, &se) {
		return se
	}

	frames := make([]Frame, 0, len(in.frames)+1)
	frames = append(frames, in.frames...)
	frames = append(frames, frame)

	var oe *opError
	if errors.As(err, &oe) {
		return &ScriptError{Kind: oe.kind, Message: oe.msg, Frames: frames, Err: oe.err}
	}
	return &ScriptError{Kind: KindRuntime, Message: err.Error(), Frames: frames, Err: err}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
