package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/baseline/internal/toolkit"
)

// SolidImage returns a w x h image filled with c.
func SolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// Gray returns an opaque gray.
func Gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

// WritePNG writes img to dir/name and returns the path.
func WritePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, toolkit.WritePNG(path, img))
	return path
}

// ReadPNG decodes the image at path as *image.RGBA.
func ReadPNG(t testing.TB, path string) *image.RGBA {
	t.Helper()
	img, err := toolkit.ReadImage(path)
	require.NoError(t, err)
	return toolkit.ToRGBA(img)
}
