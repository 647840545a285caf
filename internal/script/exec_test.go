package script

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/baseline/internal/toolkit"
)

// countingInteractor records calls and never blocks in Start.
type countingInteractor struct {
	win         *toolkit.RenderWindow
	initialized int
	starts      int
	events      []toolkit.Event
	terminated  bool
}

func (c *countingInteractor) Initialize() error { c.initialized++; return nil }
func (c *countingInteractor) Start() { c.starts++ }
func (c *countingInteractor) Render() error { return c.win.Render() }
func (c *countingInteractor) PostEvent(ev toolkit.Event) { c.events = append(c.events, ev) }
func (c *countingInteractor) TerminateApp() { c.terminated = true }
func (c *countingInteractor) RenderWindow() *toolkit.RenderWindow { return c.win }

func mainEnv() *Env {
	env := NewEnv()
	env.Bind(NameMain, MainModule)
	return env
}

func testHost(out *bytes.Buffer) Host {
	return Host{
		SearchPath: NewSearchPath(filepath.Join("testdata", "scripts")),
		Stdout:     out,
		Seed:       1,
	}
}

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse("inline.yaml", []byte(src))
	require.NoError(t, err)
	return s
}

func TestExec_StepsThenMain(t *testing.T) {
	s := mustParse(t, `steps:
  - call: print
    args: {message: steps}
main:
  - call: print
    args: {message: main}
`)
	var out bytes.Buffer
	require.NoError(t, Exec(context.Background(), s, mainEnv(), testHost(&out)))
	assert.Equal(t, "steps\nmain\n", out.String())

	out.Reset()
	require.NoError(t, Exec(context.Background(), s, NewEnv(), testHost(&out)))
	assert.Equal(t, "steps\n", out.String())
}

func TestExec_ImportsRunOnceWithoutMain(t *testing.T) {
	s := mustParse(t, `imports: [common.yaml, common.yaml]
steps:
  - call: print
    args: {message: "shared=${shared}"}
`)
	var out bytes.Buffer
	require.NoError(t, Exec(context.Background(), s, mainEnv(), testHost(&out)))
	assert.Equal(t, "common loaded\nshared=common\n", out.String())
}

func TestExec_MissingImport(t *testing.T) {
	s := mustParse(t, "imports: [nowhere.yaml]\n")
	err := Exec(context.Background(), s, mainEnv(), testHost(&bytes.Buffer{}))

	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindImport, se.Kind)
	require.Len(t, se.Frames, 1)
	assert.Equal(t, "import nowhere.yaml", se.Frames[0].Where)
}

func TestExec_Tracebacks(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		golden string
		script string
		kind   string
	}{
		{"traceback_zero_division", "zero.yaml", KindZeroDivision},
		{"traceback_import", "broken_import.yaml", KindValue},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			s, err := LoadFile(filepath.Join("testdata", "scripts", tt.script))
			require.NoError(t, err)

			err = Exec(context.Background(), s, mainEnv(), testHost(&bytes.Buffer{}))
			var se *ScriptError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
			assert.True(t, IsScriptError(err))
			g.Assert(t, tt.golden, []byte(se.Error()))
		})
	}
}

func TestExec_ThresholdBinding(t *testing.T) {
	s := mustParse(t, "threshold: 2.5\n")
	env := mainEnv()
	require.NoError(t, Exec(context.Background(), s, env, testHost(&bytes.Buffer{})))

	got, ok := env.Threshold()
	require.True(t, ok)
	assert.Equal(t, 2.5, got)

	// A set step may bind it too.
	s = mustParse(t, "steps:\n  - call: set\n    bind: threshold\n    args: {value: 7}\n")
	env = mainEnv()
	require.NoError(t, Exec(context.Background(), s, env, testHost(&bytes.Buffer{})))
	got, ok = env.Threshold()
	require.True(t, ok)
	assert.Equal(t, 7.0, got)
}

func TestExec_RenderAndAssert(t *testing.T) {
	s := mustParse(t, `steps:
  - call: renderWindow
    bind: renWin
    args: {width: 20, height: 10, background: [0, 0, 255]}
  - call: fill
    args: {target: renWin, shape: rect, x: 0, y: 0, width: 5, height: 5, color: [255, 0, 0]}
  - call: fill
    args: {target: renWin, shape: circle, center: [15, 5], radius: 3}
  - call: render
    args: {target: renWin}
main:
  - call: assertSize
    args: {target: renWin, width: 20, height: 10}
  - call: assertPixel
    args: {target: renWin, x: 2, y: 2, color: [255, 0, 0]}
  - call: assertPixel
    args: {target: renWin, x: 15, y: 5, color: [255, 255, 255]}
  - call: assertPixel
    args: {target: renWin, x: 8, y: 8, color: [0, 0, 250], tolerance: 5}
`)
	env := mainEnv()
	require.NoError(t, Exec(context.Background(), s, env, testHost(&bytes.Buffer{})))

	v, ok := env.Lookup("renWin")
	require.True(t, ok)
	win := v.(*toolkit.RenderWindow)
	assert.Equal(t, 2, win.Actors())
}

func TestExec_AssertionFailure(t *testing.T) {
	s := mustParse(t, `steps:
  - call: renderWindow
    bind: w
    args: {width: 4, height: 4}
  - call: assertPixel
    args: {target: w, x: 1, y: 1, color: [255, 255, 255]}
`)
	err := Exec(context.Background(), s, mainEnv(), testHost(&bytes.Buffer{}))
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindAssertion, se.Kind)
	assert.Equal(t, 5, se.Frames[0].Line)
}

func TestExec_InteractorFromHost(t *testing.T) {
	s := mustParse(t, `steps:
  - call: renderWindow
    bind: renWin
    args: {width: 8, height: 8}
  - call: interactor
    bind: iren
    args: {window: renWin}
  - call: initialize
    args: {target: iren}
  - call: postEvent
    args: {target: iren, event: render}
  - call: start
    args: {target: iren}
  - call: terminate
    args: {target: iren}
`)
	var made *countingInteractor
	host := testHost(&bytes.Buffer{})
	host.Interactors = func(win *toolkit.RenderWindow) toolkit.Interactor {
		made = &countingInteractor{win: win}
		return made
	}

	env := mainEnv()
	require.NoError(t, Exec(context.Background(), s, env, host))
	require.NotNil(t, made)
	assert.Equal(t, 1, made.initialized)
	assert.Equal(t, 1, made.starts)
	assert.Equal(t, []toolkit.Event{toolkit.EventRender}, made.events)
	assert.True(t, made.terminated)

	iren, _ := env.Lookup("iren")
	assert.Same(t, made, iren)
}

func TestExec_NoiseIsSeeded(t *testing.T) {
	src := `steps:
  - call: renderWindow
    bind: w
    args: {width: 32, height: 32}
  - call: noise
    args: {target: w, count: 40}
`
	capture := func(seed int64) *image.RGBA {
		env := mainEnv()
		host := testHost(&bytes.Buffer{})
		host.Seed = seed
		require.NoError(t, Exec(context.Background(), mustParse(t, src), env, host))
		v, _ := env.Lookup("w")
		img, err := v.(*toolkit.RenderWindow).Capture()
		require.NoError(t, err)
		return img
	}

	assert.Equal(t, capture(1).Pix, capture(1).Pix)
	assert.NotEqual(t, capture(1).Pix, capture(2).Pix)
}

func TestExec_ReadImageRelativeToDataRoot(t *testing.T) {
	root := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, toolkit.WritePNG(filepath.Join(root, "in.png"), img))

	s := mustParse(t, `steps:
  - call: readImage
    bind: img
    args: {file: in.png}
  - call: imageWindow
    bind: imgWin
    args: {image: img}
  - call: render
    args: {target: imgWin}
main:
  - call: assertSize
    args: {target: imgWin, width: 3, height: 2}
  - call: assertPixel
    args: {target: img, x: 1, y: 1, color: [10, 20, 30]}
`)
	host := testHost(&bytes.Buffer{})
	host.DataRoot = root
	require.NoError(t, Exec(context.Background(), s, mainEnv(), host))

	host.DataRoot = t.TempDir()
	err := Exec(context.Background(), s, mainEnv(), host)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindIO, se.Kind)
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind string
	}{
		{"unbound name", "steps:\n  - call: render\n    args: {target: nope}\n", KindName},
		{"missing arg", "steps:\n  - call: divide\n    args: {a: 1}\n", KindType},
		{"wrong type", "steps:\n  - call: set\n    bind: n\n    args: {value: 3}\n  - call: fill\n    args: {target: n, shape: rect}\n", KindType},
		{"bad shape", "steps:\n  - call: renderWindow\n    bind: w\n  - call: fill\n    args: {target: w, shape: star}\n", KindValue},
		{"bind nothing", "steps:\n  - call: print\n    bind: x\n    args: {message: hi}\n", KindValue},
		{"custom raise", "steps:\n  - call: raise\n    args: {kind: CustomError, message: boom}\n", "CustomError"},
		{"default raise", "steps:\n  - call: raise\n", KindRuntime},
		{"negative noise count", "steps:\n  - call: renderWindow\n    bind: w\n    args: {width: 4, height: 4}\n  - call: noise\n    args: {target: w, count: -1}\n", KindValue},
		{"huge window", "steps:\n  - call: renderWindow\n    args: {width: 1000000, height: 1000000}\n", KindValue},
		{"negative window", "steps:\n  - call: renderWindow\n    args: {width: -1}\n", KindValue},
		{"infinite threshold", "steps:\n  - call: set\n    bind: threshold\n    args: {value: .inf}\n", KindValue},
		{"negative threshold", "steps:\n  - call: set\n    bind: threshold\n    args: {value: -3}\n", KindValue},
		{"text threshold", "steps:\n  - call: set\n    bind: threshold\n    args: {value: high}\n", KindType},
		{"unknown event", "steps:\n  - call: renderWindow\n    bind: w\n  - call: interactor\n    bind: i\n    args: {window: w}\n  - call: postEvent\n    args: {target: i, event: jump}\n", KindValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Exec(context.Background(), mustParse(t, tt.src), mainEnv(), testHost(&bytes.Buffer{}))
			var se *ScriptError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.kind, se.Kind)
		})
	}
}

func TestExec_FinalizedWindowCannotCapture(t *testing.T) {
	s := mustParse(t, `steps:
  - call: renderWindow
    bind: w
    args: {width: 4, height: 4}
  - call: finalize
    args: {target: w}
  - call: assertSize
    args: {target: w, width: 4}
`)
	err := Exec(context.Background(), s, mainEnv(), testHost(&bytes.Buffer{}))
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, toolkit.ErrNoContext)
}

func TestExec_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Exec(ctx, mustParse(t, "steps:\n  - call: print\n    args: {message: x}\n"), mainEnv(), testHost(&bytes.Buffer{}))
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindInterrupted, se.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExec_AppendPath(t *testing.T) {
	host := testHost(&bytes.Buffer{})
	s := mustParse(t, "steps:\n  - call: appendPath\n    args: {dir: extra}\n")
	require.NoError(t, Exec(context.Background(), s, mainEnv(), host))
	assert.Equal(t, []string{filepath.Join("testdata", "scripts"), "extra"}, host.SearchPath.Dirs())
}

func TestExec_PanickingOperationBecomesTraceback(t *testing.T) {
	ops["explode"] = func(*call) (any, error) {
		var m map[string]int
		m["boom"]++
		return nil, nil
	}
	t.Cleanup(func() { delete(ops, "explode") })

	s := &Script{
		Path: "inline.yaml",
		Steps: []Step{
			{Call: "print", Args: map[string]any{"message": "before"}, Line: 2},
			{Call: "explode", Line: 4},
			{Call: "print", Args: map[string]any{"message": "after"}, Line: 6},
		},
	}
	out := &bytes.Buffer{}
	err := Exec(context.Background(), s, mainEnv(), testHost(out))

	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindRuntime, se.Kind)
	assert.Contains(t, se.Message, "explode() panicked")
	require.Len(t, se.Frames, 1)
	assert.Equal(t, "inline.yaml:4 steps[1] explode", se.Frames[0].String())
	assert.Equal(t, "before\n", out.String())
}

func TestExec_ThresholdFieldMustBeFinite(t *testing.T) {
	inf := math.Inf(1)
	s := &Script{Path: "inline.yaml", Threshold: &inf}
	env := mainEnv()

	err := Exec(context.Background(), s, env, testHost(&bytes.Buffer{}))
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindValue, se.Kind)
	_, ok := env.Threshold()
	assert.False(t, ok)
}

func TestCheckThreshold(t *testing.T) {
	assert.NoError(t, checkThreshold(0))
	assert.NoError(t, checkThreshold(12.5))
	for _, v := range []any{math.Inf(1), math.Inf(-1), math.NaN(), -0.5} {
		assert.Error(t, checkThreshold(v), "%v", v)
	}
}

func TestEnv_ThresholdIgnoresInvalidBindings(t *testing.T) {
	for _, v := range []any{math.Inf(1), math.NaN(), -1.0, "10"} {
		env := NewEnv()
		env.Bind(NameThreshold, v)
		_, ok := env.Threshold()
		assert.False(t, ok, "%v", v)
	}
}
