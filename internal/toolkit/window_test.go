package toolkit

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWindow_Background(t *testing.T) {
	bg := RGB(10, 20, 30)
	win := NewRenderWindow(8, 4, bg)

	frame, err := win.Capture()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), frame.Bounds())
	assert.Equal(t, bg, frame.RGBAAt(0, 0))
	assert.Equal(t, bg, frame.RGBAAt(7, 3))
	assert.Equal(t, 1, win.Renders())
}

func TestRenderWindow_CaptureRendersOnlyWhenDirty(t *testing.T) {
	win := NewRenderWindow(4, 4, RGB(0, 0, 0))

	_, err := win.Capture()
	require.NoError(t, err)
	_, err = win.Capture()
	require.NoError(t, err)
	assert.Equal(t, 1, win.Renders())

	win.AddActor(&Rect{X: 0, Y: 0, Width: 1, Height: 1, Color: RGB(255, 0, 0)})
	_, err = win.Capture()
	require.NoError(t, err)
	assert.Equal(t, 2, win.Renders())
}

func TestRenderWindow_CaptureIsACopy(t *testing.T) {
	win := NewRenderWindow(2, 2, RGB(0, 0, 0))
	a, err := win.Capture()
	require.NoError(t, err)
	a.SetRGBA(0, 0, RGB(255, 255, 255))

	b, err := win.Capture()
	require.NoError(t, err)
	assert.Equal(t, RGB(0, 0, 0), b.RGBAAt(0, 0))
}

func TestRenderWindow_NoContext(t *testing.T) {
	t.Run("zero size", func(t *testing.T) {
		win := NewRenderWindow(0, 10, RGB(0, 0, 0))
		_, err := win.Capture()
		assert.ErrorIs(t, err, ErrNoContext)
	})

	t.Run("finalized", func(t *testing.T) {
		win := NewRenderWindow(4, 4, RGB(0, 0, 0))
		require.NoError(t, win.Render())
		win.Finalize()
		_, err := win.Capture()
		assert.ErrorIs(t, err, ErrNoContext)
		assert.ErrorIs(t, win.Render(), ErrNoContext)
	})
}

func TestRect_ExactColor(t *testing.T) {
	red := RGB(255, 0, 0)
	win := NewRenderWindow(10, 10, RGB(0, 0, 0))
	win.AddActor(&Rect{X: 2, Y: 3, Width: 4, Height: 5, Color: red})

	frame, err := win.Capture()
	require.NoError(t, err)
	assert.Equal(t, red, frame.RGBAAt(2, 3))
	assert.Equal(t, red, frame.RGBAAt(5, 7))
	assert.Equal(t, RGB(0, 0, 0), frame.RGBAAt(6, 7))
	assert.Equal(t, RGB(0, 0, 0), frame.RGBAAt(1, 3))
}

func TestPolygon_CoversInterior(t *testing.T) {
	win := NewRenderWindow(20, 20, RGB(0, 0, 0))
	win.AddActor(&Polygon{
		Points: []Point{{0, 0}, {20, 0}, {0, 20}},
		Color:  RGB(0, 255, 0),
	})

	frame, err := win.Capture()
	require.NoError(t, err)

	inside := frame.RGBAAt(2, 2)
	assert.InDelta(t, 255, int(inside.G), 2)
	outside := frame.RGBAAt(18, 18)
	assert.Equal(t, uint8(0), outside.G)
}

func TestCircle_CoversCenterNotCorners(t *testing.T) {
	win := NewRenderWindow(21, 21, RGB(0, 0, 0))
	win.AddActor(&Circle{Center: Point{10.5, 10.5}, Radius: 8, Color: RGB(0, 0, 255)})

	frame, err := win.Capture()
	require.NoError(t, err)
	assert.InDelta(t, 255, int(frame.RGBAAt(10, 10).B), 2)
	assert.Equal(t, uint8(0), frame.RGBAAt(0, 0).B)
	assert.Equal(t, uint8(0), frame.RGBAAt(20, 20).B)
}

func TestRandomPoints_SeedDeterminism(t *testing.T) {
	a := NewRandomPoints(rand.New(rand.NewSource(7)), 50, 16, 16, RGB(255, 255, 255))
	b := NewRandomPoints(rand.New(rand.NewSource(7)), 50, 16, 16, RGB(255, 255, 255))
	c := NewRandomPoints(rand.New(rand.NewSource(8)), 50, 16, 16, RGB(255, 255, 255))

	assert.Equal(t, a.Coords, b.Coords)
	assert.NotEqual(t, a.Coords, c.Coords)
	for _, p := range a.Coords {
		assert.True(t, p.In(image.Rect(0, 0, 16, 16)))
	}
}

func TestRandomPoints_NonPositiveCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, NewRandomPoints(rng, -1, 16, 16, RGB(255, 255, 255)).Coords)
	assert.Empty(t, NewRandomPoints(rng, 0, 16, 16, RGB(255, 255, 255)).Coords)
}

func TestImageActor_Scales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	win := NewRenderWindow(8, 8, RGB(0, 0, 0))
	win.AddActor(&ImageActor{Image: src, Width: 8, Height: 8})

	frame, err := win.Capture()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, frame.RGBAAt(4, 4))
}

func TestRGB_Clamps(t *testing.T) {
	assert.Equal(t, color.RGBA{0, 255, 128, 255}, RGB(-5, 300, 127.6))
}
