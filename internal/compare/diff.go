package compare

import (
	"image"
	"image/color"
	"math"

	"github.com/roach88/baseline/internal/toolkit"
)

// PixelTolerance is the largest per-pixel channel-sum difference that is
// ignored.
const PixelTolerance = 16

// maxPixelDiff is the channel-sum difference between black and white.
const maxPixelDiff = 3 * 255

// Difference is the outcome of Diff.
type Difference struct {
	// Error is the sum of d/765 over all pixels.
	Error float64

	// ThresholdedError only counts pixels with d > PixelTolerance. This is
	// the value held against the threshold.
	ThresholdedError float64

	// SizeMismatch is set when the two images differ in size. Pixels
	// covered by only one of them count as maximally different.
	SizeMismatch bool

	// Image holds per-channel absolute differences over the union of both
	// extents.
	Image *image.RGBA
}

// Diff compares rendered against baseline.
func Diff(rendered, baseline image.Image) Difference {
	r := toolkit.ToRGBA(rendered)
	b := toolkit.ToRGBA(baseline)
	rw, rh := r.Bounds().Dx(), r.Bounds().Dy()
	bw, bh := b.Bounds().Dx(), b.Bounds().Dy()

	w, h := max(rw, bw), max(rh, bh)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	d := Difference{SizeMismatch: rw != bw || rh != bh, Image: out}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var px color.RGBA
			var diff int
			if x >= rw || y >= rh || x >= bw || y >= bh {
				px = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
				diff = maxPixelDiff
			} else {
				px, diff = bestMatch(r, b, x, y)
			}
			out.SetRGBA(x, y, px)

			e := float64(diff) / maxPixelDiff
			d.Error += e
			if diff > PixelTolerance {
				d.ThresholdedError += e
			}
		}
	}
	return d
}

// neighborhood lists the 3x3 offsets, center first so ties keep the
// unshifted pixel.
var neighborhood = []image.Point{
	{0, 0},
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// bestMatch finds the baseline pixel in the 3x3 neighborhood of (x, y) that
// is closest to the rendered pixel at (x, y).
func bestMatch(r, b *image.RGBA, x, y int) (color.RGBA, int) {
	rp := r.RGBAAt(x, y)
	bounds := b.Bounds()

	best := math.MaxInt
	var bestPx color.RGBA
	for _, off := range neighborhood {
		p := image.Pt(x+off.X, y+off.Y)
		if !p.In(bounds) {
			continue
		}
		bp := b.RGBAAt(p.X, p.Y)
		dr, dg, db := absDiff(rp.R, bp.R), absDiff(rp.G, bp.G), absDiff(rp.B, bp.B)
		sum := int(dr) + int(dg) + int(db)
		if sum < best {
			best = sum
			bestPx = color.RGBA{R: dr, G: dg, B: db, A: 0xff}
			if sum == 0 {
				break
			}
		}
	}
	return bestPx, best
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
