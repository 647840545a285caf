package script

import (
	"image"
	"image/color"
	"math"

	"github.com/roach88/baseline/internal/toolkit"
)

// call gives an operation typed access to its arguments.
type call struct {
	in   *interp
	name string
	args map[string]any
}

func (c *call) has(key string) bool {
	_, ok := c.args[key]
	return ok
}

func (c *call) value(key string) (any, error) {
	v, ok := c.args[key]
	if !ok {
		return nil, raise(KindType, "%s() missing required argument %q", c.name, key)
	}
	return v, nil
}

func (c *call) str(key string) (string, error) {
	v, err := c.value(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", raise(KindType, "%s() argument %q must be a string, got %T", c.name, key, v)
	}
	return s, nil
}

func (c *call) optStr(key, def string) (string, error) {
	if !c.has(key) {
		return def, nil
	}
	return c.str(key)
}

// num reads a number. A string names a binding holding a number.
func (c *call) num(key string) (float64, error) {
	v, err := c.value(key)
	if err != nil {
		return 0, err
	}
	if name, ok := v.(string); ok {
		bound, found := c.in.env.Lookup(name)
		if !found {
			return 0, raise(KindName, "name %q is not defined", name)
		}
		v = bound
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, raise(KindType, "%s() argument %q must be a number, got %T", c.name, key, v)
	}
	return f, nil
}

func (c *call) optNum(key string, def float64) (float64, error) {
	if !c.has(key) {
		return def, nil
	}
	return c.num(key)
}

func (c *call) optInt(key string, def int) (int, error) {
	f, err := c.optNum(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, raise(KindType, "%s() argument %q must be an integer, got %v", c.name, key, f)
	}
	return int(f), nil
}

// color reads [r, g, b] or [r, g, b, a] with 0-255 channels.
func (c *call) color(key string, def color.RGBA) (color.RGBA, error) {
	if !c.has(key) {
		return def, nil
	}
	nums, err := c.numbers(key)
	if err != nil {
		return color.RGBA{}, err
	}
	if len(nums) != 3 && len(nums) != 4 {
		return color.RGBA{}, raise(KindValue, "%s() argument %q must have 3 or 4 channels, got %d", c.name, key, len(nums))
	}
	col := toolkit.RGB(nums[0], nums[1], nums[2])
	if len(nums) == 4 {
		col = premultiply(col, nums[3])
	}
	return col, nil
}

func premultiply(c color.RGBA, alpha float64) color.RGBA {
	a := uint8(math.Round(math.Max(0, math.Min(0xff, alpha))))
	scale := func(v uint8) uint8 { return uint8(uint32(v) * uint32(a) / 0xff) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func (c *call) numbers(key string) ([]float64, error) {
	v, err := c.value(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must be a list of numbers, got %T", c.name, key, v)
	}
	out := make([]float64, len(list))
	for i, item := range list {
		f, ok := toFloat(item)
		if !ok {
			return nil, raise(KindType, "%s() argument %q[%d] must be a number, got %T", c.name, key, i, item)
		}
		out[i] = f
	}
	return out, nil
}

func (c *call) point(key string) (toolkit.Point, error) {
	nums, err := c.numbers(key)
	if err != nil {
		return toolkit.Point{}, err
	}
	if len(nums) != 2 {
		return toolkit.Point{}, raise(KindValue, "%s() argument %q must be [x, y]", c.name, key)
	}
	return toolkit.Point{X: nums[0], Y: nums[1]}, nil
}

func (c *call) points(key string) ([]toolkit.Point, error) {
	v, err := c.value(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must be a list of [x, y] pairs", c.name, key)
	}
	out := make([]toolkit.Point, len(list))
	for i, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, raise(KindValue, "%s() argument %q[%d] must be [x, y]", c.name, key, i)
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if !okX || !okY {
			return nil, raise(KindType, "%s() argument %q[%d] must hold numbers", c.name, key, i)
		}
		out[i] = toolkit.Point{X: x, Y: y}
	}
	return out, nil
}

// ref looks up the binding named by a string argument.
func (c *call) ref(key string) (any, error) {
	name, err := c.str(key)
	if err != nil {
		return nil, err
	}
	v, ok := c.in.env.Lookup(name)
	if !ok {
		return nil, raise(KindName, "name %q is not defined", name)
	}
	return v, nil
}

// windowed is satisfied by everything that owns a render window.
type windowed interface {
	RenderWindow() *toolkit.RenderWindow
}

func windowOf(v any) (*toolkit.RenderWindow, bool) {
	switch w := v.(type) {
	case *toolkit.RenderWindow:
		return w, true
	case windowed:
		return w.RenderWindow(), true
	}
	return nil, false
}

func (c *call) window(key string) (*toolkit.RenderWindow, error) {
	v, err := c.ref(key)
	if err != nil {
		return nil, err
	}
	win, ok := windowOf(v)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must name a window, got %T", c.name, key, v)
	}
	return win, nil
}

func (c *call) image(key string) (image.Image, error) {
	v, err := c.ref(key)
	if err != nil {
		return nil, err
	}
	img, ok := v.(image.Image)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must name an image, got %T", c.name, key, v)
	}
	return img, nil
}

func (c *call) interactor(key string) (toolkit.Interactor, error) {
	v, err := c.ref(key)
	if err != nil {
		return nil, err
	}
	it, ok := v.(toolkit.Interactor)
	if !ok {
		return nil, raise(KindType, "%s() argument %q must name an interactor, got %T", c.name, key, v)
	}
	return it, nil
}

// toFloat converts the numeric types YAML decoding and operations produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
