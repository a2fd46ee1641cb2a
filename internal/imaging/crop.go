package imaging

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
)

// Crop extracts a rectangular region of the raster as an independent copy.
//
// The rectangle uses image conventions: Min is inclusive, Max exclusive,
// X indexes columns and Y rows. Regions extending past the raster or with no
// area are rejected with an out_of_bounds error.
func Crop(g *mat.Dense, r image.Rectangle) (*mat.Dense, error) {
	height, width := g.Dims()

	if r.Min.X < 0 || r.Min.Y < 0 || r.Max.X > width || r.Max.Y > height {
		return nil, apperrors.NewOutOfBoundsError(fmt.Sprintf(
			"crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, width, height))
	}
	if r.Empty() {
		return nil, apperrors.NewOutOfBoundsError("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return mat.DenseCopyOf(g.Slice(r.Min.Y, r.Max.Y, r.Min.X, r.Max.X)), nil
}

// CenteredSquare returns the largest square of half-width at most half
// centered on (cx, cy) that fits inside a width x height image. The square
// spans [c-h, c+h) on both axes. ok is false when not even minHalf fits.
func CenteredSquare(width, height, cx, cy, half, minHalf int) (image.Rectangle, bool) {
	h := half
	for _, room := range []int{cx, cy, width - cx, height - cy} {
		if room < h {
			h = room
		}
	}
	if h < minHalf || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(cx-h, cy-h, cx+h, cy+h), true
}
