package detection

import (
	"context"
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/logger"
)

// Circle represents a detected circular boundary.
type Circle struct {
	// Center is the detected center point in source pixel coordinates.
	Center image.Point `json:"center"`

	// Radius is the detected radius in pixels.
	Radius int `json:"radius"`

	// Score is the fraction of the circle's perimeter offsets that received
	// an edge vote (0.0 to 1.0).
	Score float64 `json:"score"`
}

// HoughParams bounds the radius search of the circle transform.
type HoughParams struct {
	RadiusMin  int
	RadiusMax  int
	RadiusStep int
}

// Radii lists the candidate radii, inclusive of RadiusMax when the step lands on it.
func (p HoughParams) Radii() []int {
	step := p.RadiusStep
	if step < 1 {
		step = 1
	}
	var radii []int
	for r := p.RadiusMin; r <= p.RadiusMax; r += step {
		radii = append(radii, r)
	}
	return radii
}

// HoughCircle finds the single strongest circle in a binary edge map.
//
// # Algorithm (Hough Circle Transform)
//
//  1. Accumulator Voting: for each candidate radius, every edge pixel votes
//     for all centers on the digital circle of that radius around it
//  2. Normalization: votes are divided by the number of perimeter offsets so
//     small and large radii compete fairly
//  3. Peak Selection: the highest normalized accumulator value over all
//     radii wins. Ties keep the first peak in (radius, y, x) scan order.
//
// Only centers inside the edge map are considered. The context is checked
// between radii; a cancelled context yields a timeout error.
//
// Returns a no_circle_found error when the edge map is empty.
func HoughCircle(ctx context.Context, edges [][]bool, p HoughParams) (Circle, error) {
	height := len(edges)
	if height == 0 {
		return Circle{}, apperrors.NewNoCircleFoundError("empty edge map")
	}
	width := len(edges[0])

	var points []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] {
				points = append(points, image.Pt(x, y))
			}
		}
	}
	if len(points) == 0 {
		return Circle{}, apperrors.NewNoCircleFoundError("no edge pixels")
	}

	var best Circle
	accumulator := make([]int32, width*height)
	for _, radius := range p.Radii() {
		if err := ctx.Err(); err != nil {
			return Circle{}, apperrors.NewTimeoutError("circle search interrupted", err)
		}

		for i := range accumulator {
			accumulator[i] = 0
		}

		offsets := imaging.CirclePerimeter(radius)
		for _, pt := range points {
			for _, o := range offsets {
				cx, cy := pt.X+o.DX, pt.Y+o.DY
				if cx >= 0 && cx < width && cy >= 0 && cy < height {
					accumulator[cy*width+cx]++
				}
			}
		}

		peak, at := int32(0), -1
		for i, v := range accumulator {
			if v > peak {
				peak, at = v, i
			}
		}
		if at < 0 {
			continue
		}

		score := float64(peak) / float64(len(offsets))
		if score > best.Score {
			best = Circle{
				Center: image.Pt(at%width, at/width),
				Radius: radius,
				Score:  score,
			}
		}
	}

	if best.Score == 0 {
		return Circle{}, apperrors.NewNoCircleFoundError("no accumulator peak in radius range")
	}
	return best, nil
}

// LocateParams configures droplet localization.
type LocateParams struct {
	// MedianRadius is the square median footprint applied before edge detection
	MedianRadius int

	Canny imaging.CannyParams
	Hough HoughParams

	// CropPadding is added to the detected radius to form the crop half-width
	CropPadding int
}

// Localization is the result of droplet localization: the detected circle
// and the square region cropped around it.
type Localization struct {
	Circle Circle `json:"circle"`

	// Bounds is the crop rectangle in source coordinates.
	Bounds image.Rectangle `json:"bounds"`

	// Region is an independent copy of the unfiltered source pixels.
	Region *mat.Dense `json:"-"`
}

// CenterInRegion returns the circle center in cropped-region coordinates.
func (l *Localization) CenterInRegion() image.Point {
	return l.Circle.Center.Sub(l.Bounds.Min)
}

// Locate finds the droplet boundary in a raw grayscale raster and crops a
// square sub-image centered on it.
//
// The raster is denoised with a small median filter, reduced to an edge map
// by a heavily smoothed Canny detector and searched with HoughCircle. The
// crop half-width is radius + CropPadding; when that square does not fit the
// image, the padding is shrunk equally on all sides so the circle stays at
// the crop center. If even the bare circle does not fit, an out_of_bounds
// error is returned.
func Locate(ctx context.Context, g *mat.Dense, p LocateParams) (*Localization, error) {
	height, width := g.Dims()
	if width == 0 || height == 0 {
		return nil, apperrors.NewNoCircleFoundError("empty image")
	}

	denoised := imaging.Denoise(g, p.MedianRadius)
	edges := imaging.Canny(denoised, p.Canny)

	circle, err := HoughCircle(ctx, edges, p.Hough)
	if err != nil {
		return nil, err
	}

	logger.WithField("center", circle.Center).
		WithField("radius", circle.Radius).
		WithField("score", circle.Score).
		Debug("droplet boundary located")

	bounds, ok := imaging.CenteredSquare(width, height, circle.Center.X, circle.Center.Y, circle.Radius+p.CropPadding, circle.Radius)
	if !ok {
		return nil, apperrors.NewOutOfBoundsError(fmt.Sprintf(
			"circle at (%d,%d) r=%d does not fit inside %dx%d image",
			circle.Center.X, circle.Center.Y, circle.Radius, width, height))
	}

	region, err := imaging.Crop(g, bounds)
	if err != nil {
		return nil, err
	}

	return &Localization{Circle: circle, Bounds: bounds, Region: region}, nil
}
