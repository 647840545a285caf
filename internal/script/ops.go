package script

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/roach88/baseline/internal/toolkit"
)

// opFunc implements one script operation. A nil result binds nothing.
type opFunc func(c *call) (any, error)

// ops is the closed set of operations a script may call.
var ops = map[string]opFunc{
	"renderWindow": opRenderWindow,
	"fill":         opFill,
	"noise":        opNoise,
	"readImage":    opReadImage,
	"viewer":       opViewer,
	"imageWindow":  opImageWindow,
	"interactor":   opInteractor,
	"initialize":   opInitialize,
	"render":       opRender,
	"start":        opStart,
	"postEvent":    opPostEvent,
	"terminate":    opTerminate,
	"finalize":     opFinalize,
	"set":          opSet,
	"appendPath":   opAppendPath,
	"assertSize":   opAssertSize,
	"assertPixel":  opAssertPixel,
	"print":        opPrint,
	"raise":        opRaise,
	"divide":       opDivide,
}

const (
	defaultWindowSize = 300
	maxWindowSize     = 16384
	opaque            = 0xff
)

var (
	black = color.RGBA{A: opaque}
	white = color.RGBA{R: opaque, G: opaque, B: opaque, A: opaque}
)

func opRenderWindow(c *call) (any, error) {
	w, err := c.optInt("width", defaultWindowSize)
	if err != nil {
		return nil, err
	}
	h, err := c.optInt("height", defaultWindowSize)
	if err != nil {
		return nil, err
	}
	bg, err := c.color("background", black)
	if err != nil {
		return nil, err
	}
	if err := checkWindowSize(w, h); err != nil {
		return nil, err
	}
	return toolkit.NewRenderWindow(w, h, bg), nil
}

func checkWindowSize(w, h int) error {
	if w < 0 || h < 0 {
		return raise(KindValue, "window size must not be negative, got %dx%d", w, h)
	}
	if w > maxWindowSize || h > maxWindowSize {
		return raise(KindValue, "window size %dx%d exceeds %dx%d", w, h, maxWindowSize, maxWindowSize)
	}
	return nil
}

func opFill(c *call) (any, error) {
	win, err := c.window("target")
	if err != nil {
		return nil, err
	}
	col, err := c.color("color", white)
	if err != nil {
		return nil, err
	}
	shape, err := c.str("shape")
	if err != nil {
		return nil, err
	}

	var actor toolkit.Actor
	switch shape {
	case "polygon":
		pts, err := c.points("points")
		if err != nil {
			return nil, err
		}
		if len(pts) < 3 {
			return nil, raise(KindValue, "polygon needs at least 3 points, got %d", len(pts))
		}
		actor = &toolkit.Polygon{Points: pts, Color: col}

	case "rect":
		var dims [4]int
		for i, key := range []string{"x", "y", "width", "height"} {
			if dims[i], err = c.optInt(key, 0); err != nil {
				return nil, err
			}
		}
		actor = &toolkit.Rect{X: dims[0], Y: dims[1], Width: dims[2], Height: dims[3], Color: col}

	case "circle":
		center, err := c.point("center")
		if err != nil {
			return nil, err
		}
		r, err := c.num("radius")
		if err != nil {
			return nil, err
		}
		if r <= 0 {
			return nil, raise(KindValue, "circle radius must be positive, got %v", r)
		}
		actor = &toolkit.Circle{Center: center, Radius: r, Color: col}

	default:
		return nil, raise(KindValue, "unknown shape %q (want polygon, rect or circle)", shape)
	}

	win.AddActor(actor)
	return actor, nil
}

func opNoise(c *call) (any, error) {
	win, err := c.window("target")
	if err != nil {
		return nil, err
	}
	count, err := c.optInt("count", 100)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, raise(KindValue, "noise count must not be negative, got %d", count)
	}
	col, err := c.color("color", white)
	if err != nil {
		return nil, err
	}
	w, h := win.Size()
	pts := toolkit.NewRandomPoints(c.in.rng, count, w, h, col)
	win.AddActor(pts)
	return pts, nil
}

func opReadImage(c *call) (any, error) {
	name, err := c.str("file")
	if err != nil {
		return nil, err
	}
	path := name
	if !filepath.IsAbs(path) && c.in.host.DataRoot != "" {
		path = filepath.Join(c.in.host.DataRoot, name)
	}
	img, err := toolkit.ReadImage(path)
	if err != nil {
		return nil, raiseWrap(KindIO, err, "cannot read image %q", name)
	}
	return img, nil
}

func opViewer(c *call) (any, error) {
	img, err := c.image("image")
	if err != nil {
		return nil, err
	}
	w, err := c.optInt("width", 0)
	if err != nil {
		return nil, err
	}
	h, err := c.optInt("height", 0)
	if err != nil {
		return nil, err
	}
	if w > maxWindowSize || h > maxWindowSize {
		return nil, raise(KindValue, "viewer size %dx%d exceeds %dx%d", w, h, maxWindowSize, maxWindowSize)
	}
	return toolkit.NewViewer(img, w, h), nil
}

func opImageWindow(c *call) (any, error) {
	img, err := c.image("image")
	if err != nil {
		return nil, err
	}
	return toolkit.NewImageWindow(img), nil
}

func opInteractor(c *call) (any, error) {
	win, err := c.window("window")
	if err != nil {
		return nil, err
	}
	return c.in.host.Interactors(win), nil
}

func opInitialize(c *call) (any, error) {
	it, err := c.interactor("target")
	if err != nil {
		return nil, err
	}
	if err := it.Initialize(); err != nil {
		return nil, raiseWrap(KindRuntime, err, "initialize failed")
	}
	return nil, nil
}

// renderer is anything a script can render: windows, viewers, interactors.
type renderer interface {
	Render() error
}

func opRender(c *call) (any, error) {
	v, err := c.ref("target")
	if err != nil {
		return nil, err
	}
	r, ok := v.(renderer)
	if !ok {
		return nil, raise(KindType, "render() target must be renderable, got %T", v)
	}
	if err := r.Render(); err != nil {
		return nil, raiseWrap(KindRuntime, err, "render failed")
	}
	return nil, nil
}

func opStart(c *call) (any, error) {
	it, err := c.interactor("target")
	if err != nil {
		return nil, err
	}
	it.Start()
	return nil, nil
}

func opPostEvent(c *call) (any, error) {
	it, err := c.interactor("target")
	if err != nil {
		return nil, err
	}
	name, err := c.str("event")
	if err != nil {
		return nil, err
	}
	ev := toolkit.Event(name)
	if ev != toolkit.EventRender && ev != toolkit.EventExit {
		return nil, raise(KindValue, "unknown event %q", name)
	}
	it.PostEvent(ev)
	return nil, nil
}

func opTerminate(c *call) (any, error) {
	it, err := c.interactor("target")
	if err != nil {
		return nil, err
	}
	it.TerminateApp()
	return nil, nil
}

func opFinalize(c *call) (any, error) {
	win, err := c.window("target")
	if err != nil {
		return nil, err
	}
	win.Finalize()
	return nil, nil
}

func opSet(c *call) (any, error) {
	v, err := c.value("value")
	if err != nil {
		return nil, err
	}
	return v, nil
}

func opAppendPath(c *call) (any, error) {
	dir, err := c.str("dir")
	if err != nil {
		return nil, err
	}
	c.in.host.SearchPath.Append(dir)
	return nil, nil
}

// pixels captures the image behind a target: a window, anything owning one,
// or an image.
func (c *call) pixels(key string) (image.Image, error) {
	v, err := c.ref(key)
	if err != nil {
		return nil, err
	}
	if img, ok := v.(image.Image); ok {
		return img, nil
	}
	win, ok := windowOf(v)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must name a window or image, got %T", c.name, key, v)
	}
	img, err := win.Capture()
	if err != nil {
		return nil, raiseWrap(KindRuntime, err, "cannot capture %q", key)
	}
	return img, nil
}

func opAssertSize(c *call) (any, error) {
	img, err := c.pixels("target")
	if err != nil {
		return nil, err
	}
	w, err := c.optInt("width", -1)
	if err != nil {
		return nil, err
	}
	h, err := c.optInt("height", -1)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if (w >= 0 && b.Dx() != w) || (h >= 0 && b.Dy() != h) {
		return nil, raise(KindAssertion, "size is %dx%d, expected %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return nil, nil
}

func opAssertPixel(c *call) (any, error) {
	img, err := c.pixels("target")
	if err != nil {
		return nil, err
	}
	x, err := c.optInt("x", 0)
	if err != nil {
		return nil, err
	}
	y, err := c.optInt("y", 0)
	if err != nil {
		return nil, err
	}
	want, err := c.color("color", black)
	if err != nil {
		return nil, err
	}
	tol, err := c.optInt("tolerance", 0)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return nil, raise(KindAssertion, "pixel (%d, %d) is outside %dx%d", x, y, b.Dx(), b.Dy())
	}
	got := color.RGBAModel.Convert(img.At(p.X, p.Y)).(color.RGBA)
	if channelDiff(got.R, want.R) > tol || channelDiff(got.G, want.G) > tol || channelDiff(got.B, want.B) > tol {
		return nil, raise(KindAssertion, "pixel (%d, %d) is [%d %d %d], expected [%d %d %d]",
			x, y, got.R, got.G, got.B, want.R, want.G, want.B)
	}
	return nil, nil
}

func channelDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// opPrint writes message to stdout, expanding ${name} from the environment.
func opPrint(c *call) (any, error) {
	msg, err := c.str("message")
	if err != nil {
		return nil, err
	}
	out := os.Expand(msg, func(name string) string {
		v, ok := c.in.env.Lookup(name)
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	})
	fmt.Fprintln(c.in.host.Stdout, out)
	return nil, nil
}

func opRaise(c *call) (any, error) {
	kind, err := c.optStr("kind", KindRuntime)
	if err != nil {
		return nil, err
	}
	msg, err := c.optStr("message", "")
	if err != nil {
		return nil, err
	}
	return nil, raise(kind, "%s", msg)
}

func opDivide(c *call) (any, error) {
	a, err := c.num("a")
	if err != nil {
		return nil, err
	}
	b, err := c.num("b")
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, raise(KindZeroDivision, "division by zero")
	}
	return a / b, nil
}
