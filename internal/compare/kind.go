package compare

import (
	"image"
	"math"

	"github.com/roach88/baseline/internal/toolkit"
)

// Kind classifies a render target. It selects the default threshold.
type Kind int

const (
	KindRenderWindow Kind = iota
	KindViewer
	KindImageWindow
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindRenderWindow:
		return "RenderWindow"
	case KindViewer:
		return "Viewer"
	case KindImageWindow:
		return "ImageWindow"
	case KindImage:
		return "Image"
	}
	return "Unknown"
}

// DefaultThreshold is the threshold used when neither the script nor the
// invocation sets one.
func (k Kind) DefaultThreshold() float64 {
	switch k {
	case KindViewer, KindImageWindow:
		return 5
	default:
		return 10
	}
}

// ResolveThreshold applies the precedence script binding, then flag, then
// the kind default. Zero, negative and non-finite values count as unset at
// every level.
func ResolveThreshold(script *float64, flag float64, kind Kind) float64 {
	if script != nil && usable(*script) {
		return *script
	}
	if usable(flag) {
		return flag
	}
	return kind.DefaultThreshold()
}

func usable(t float64) bool {
	return t > 0 && !math.IsInf(t, 0)
}

// Target is a source of rendered pixels.
type Target interface {
	Capture() (*image.RGBA, error)
	Kind() Kind
}

// WindowTarget captures a render window.
type WindowTarget struct {
	Window *toolkit.RenderWindow
	K      Kind
}

func (t WindowTarget) Capture() (*image.RGBA, error) { return t.Window.Capture() }

func (t WindowTarget) Kind() Kind { return t.K }

// ImageTarget serves an already decoded image.
type ImageTarget struct {
	Image image.Image
}

func (t ImageTarget) Capture() (*image.RGBA, error) {
	src := toolkit.ToRGBA(t.Image)
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}

func (t ImageTarget) Kind() Kind { return KindImage }
