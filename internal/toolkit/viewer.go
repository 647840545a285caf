package toolkit

import (
	"image"
	"image/color"
)

// Viewer displays an image scaled to fit its window.
type Viewer struct {
	input image.Image
	win   *RenderWindow
}

// NewViewer creates a viewer for img. A non-positive width or height uses
// the image's own size.
func NewViewer(img image.Image, width, height int) *Viewer {
	b := img.Bounds()
	if width <= 0 || height <= 0 {
		width, height = b.Dx(), b.Dy()
	}
	win := NewRenderWindow(width, height, color.RGBA{A: 0xff})
	win.AddActor(&ImageActor{Image: img, Width: width, Height: height})
	return &Viewer{input: img, win: win}
}

// Input returns the displayed image.
func (v *Viewer) Input() image.Image {
	return v.input
}

// Render renders the viewer's window.
func (v *Viewer) Render() error {
	return v.win.Render()
}

// RenderWindow returns the viewer's window.
func (v *Viewer) RenderWindow() *RenderWindow {
	return v.win
}

// ImageWindow displays an image at its native size.
type ImageWindow struct {
	input image.Image
	win   *RenderWindow
}

// NewImageWindow creates a window sized to img.
func NewImageWindow(img image.Image) *ImageWindow {
	b := img.Bounds()
	win := NewRenderWindow(b.Dx(), b.Dy(), color.RGBA{A: 0xff})
	win.AddActor(&ImageActor{Image: img})
	return &ImageWindow{input: img, win: win}
}

// Input returns the displayed image.
func (w *ImageWindow) Input() image.Image {
	return w.input
}

// Render renders the window.
func (w *ImageWindow) Render() error {
	return w.win.Render()
}

// RenderWindow returns the underlying window.
func (w *ImageWindow) RenderWindow() *RenderWindow {
	return w.win
}
