// Package compare decides whether a rendered frame matches a baseline image.
//
// The metric sums, for every pixel, the absolute RGB channel differences
// against the best match among the baseline's 3x3 neighborhood, so
// one-pixel shifts from rasterization differences are forgiven. Pixels whose
// best difference exceeds PixelTolerance contribute d/765 to the error that
// is held against the threshold.
//
// On a mismatch the rendered image and a difference image are written to
// the temp directory under stable names and announced with dashboard
// measurement tags on stdout.
package compare
