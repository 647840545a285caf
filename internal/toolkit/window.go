package toolkit

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrNoContext is returned when a window has no drawable surface: its size
// is zero or it has been finalized.
var ErrNoContext = errors.New("render window has no drawable context")

// Actor draws itself into a frame buffer.
type Actor interface {
	Draw(dst *image.RGBA)
}

// RenderWindow is an off-screen frame buffer.
//
// Actors are drawn in insertion order on top of the background. The frame is
// re-rendered lazily: Capture renders first when actors or size changed since
// the last Render.
type RenderWindow struct {
	width      int
	height     int
	background color.RGBA

	actors    []Actor
	frame     *image.RGBA
	dirty     bool
	finalized bool
	renders   int
}

// NewRenderWindow creates a window of the given size and background color.
func NewRenderWindow(width, height int, background color.RGBA) *RenderWindow {
	return &RenderWindow{
		width:      width,
		height:     height,
		background: background,
		dirty:      true,
	}
}

// Size returns the window size in pixels.
func (w *RenderWindow) Size() (int, int) {
	return w.width, w.height
}

// SetSize resizes the window. The next Capture re-renders.
func (w *RenderWindow) SetSize(width, height int) {
	w.width, w.height = width, height
	w.dirty = true
}

// Background returns the background color.
func (w *RenderWindow) Background() color.RGBA {
	return w.background
}

// AddActor appends an actor to the draw list.
func (w *RenderWindow) AddActor(a Actor) {
	w.actors = append(w.actors, a)
	w.dirty = true
}

// Actors returns the number of actors in the draw list.
func (w *RenderWindow) Actors() int {
	return len(w.actors)
}

// Render draws the background and all actors into a fresh frame.
func (w *RenderWindow) Render() error {
	if w.finalized || w.width <= 0 || w.height <= 0 {
		return ErrNoContext
	}

	frame := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(w.background), image.Point{}, draw.Src)
	for _, a := range w.actors {
		a.Draw(frame)
	}

	w.frame = frame
	w.dirty = false
	w.renders++
	return nil
}

// Capture returns a copy of the current frame, rendering first if needed.
func (w *RenderWindow) Capture() (*image.RGBA, error) {
	if w.finalized {
		return nil, ErrNoContext
	}
	if w.dirty || w.frame == nil {
		if err := w.Render(); err != nil {
			return nil, err
		}
	}

	out := image.NewRGBA(w.frame.Bounds())
	copy(out.Pix, w.frame.Pix)
	return out, nil
}

// Renders reports how many times the window has been rendered.
func (w *RenderWindow) Renders() int {
	return w.renders
}

// Finalize releases the drawable surface. Subsequent Render and Capture
// calls fail with ErrNoContext.
func (w *RenderWindow) Finalize() {
	w.finalized = true
	w.frame = nil
}
