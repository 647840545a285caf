package toolkit

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Point is a position in window pixel coordinates, origin top-left.
type Point struct {
	X, Y float64
}

// Polygon is a closed polygon filled with the nonzero winding rule.
type Polygon struct {
	Points []Point
	Color  color.RGBA
}

// Draw rasterizes the polygon with anti-aliased coverage.
func (p *Polygon) Draw(dst *image.RGBA) {
	if len(p.Points) < 3 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(p.Points[0].X), float32(p.Points[0].Y))
	for _, pt := range p.Points[1:] {
		z.LineTo(float32(pt.X), float32(pt.Y))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(p.Color), image.Point{})
}

// Rect is an axis-aligned filled rectangle. Integer coordinates are drawn
// without anti-aliasing, so the covered pixels take the exact color.
type Rect struct {
	X, Y, Width, Height int
	Color               color.RGBA
}

// Draw composites the rectangle over dst.
func (r *Rect) Draw(dst *image.RGBA) {
	area := image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	draw.Draw(dst, area, image.NewUniform(r.Color), image.Point{}, draw.Over)
}

// Circle is a filled disc approximated by four cubic Bézier arcs.
type Circle struct {
	Center Point
	Radius float64
	Color  color.RGBA
}

// kappa places the Bézier control points of a quarter-circle arc.
const kappa = 0.5522847498307936

// Draw rasterizes the disc.
func (c *Circle) Draw(dst *image.RGBA) {
	if c.Radius <= 0 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())

	cx, cy, r := float32(c.Center.X), float32(c.Center.Y), float32(c.Radius)
	k := float32(kappa) * r
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c.Color), image.Point{})
}

// Points is a set of single-pixel points.
type Points struct {
	Coords []image.Point
	Color  color.RGBA
}

// NewRandomPoints places count points uniformly inside a width×height area.
// A non-positive count or area gives no points.
// The points are drawn from rng once, at construction.
func NewRandomPoints(rng *rand.Rand, count, width, height int, c color.RGBA) *Points {
	pts := &Points{Color: c}
	if count <= 0 || width <= 0 || height <= 0 {
		return pts
	}
	pts.Coords = make([]image.Point, count)
	for i := range pts.Coords {
		pts.Coords[i] = image.Point{X: rng.Intn(width), Y: rng.Intn(height)}
	}
	return pts
}

// Draw sets each point that falls inside dst.
func (p *Points) Draw(dst *image.RGBA) {
	for _, pt := range p.Coords {
		if pt.In(dst.Bounds()) {
			dst.SetRGBA(pt.X, pt.Y, p.Color)
		}
	}
}

// ImageActor draws an image with its top-left corner at Offset, optionally
// scaled to Width×Height.
type ImageActor struct {
	Image  image.Image
	Offset image.Point
	Width  int
	Height int
}

// Draw composites the image over dst.
func (a *ImageActor) Draw(dst *image.RGBA) {
	if a.Image == nil {
		return
	}
	src := a.Image.Bounds()
	w, h := a.Width, a.Height
	if w <= 0 || h <= 0 {
		w, h = src.Dx(), src.Dy()
	}
	target := image.Rect(a.Offset.X, a.Offset.Y, a.Offset.X+w, a.Offset.Y+h)

	if w == src.Dx() && h == src.Dy() {
		draw.Draw(dst, target, a.Image, src.Min, draw.Over)
		return
	}
	draw.ApproxBiLinear.Scale(dst, target, a.Image, src, draw.Over, nil)
}

// RGB builds an opaque color from 0-255 channel values, clamping out of
// range input.
func RGB(r, g, b float64) color.RGBA {
	return color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: 0xff}
}

func clamp8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
