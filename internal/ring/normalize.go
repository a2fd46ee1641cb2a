package ring

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize makes the ring the darkest feature of img.
//
// When the maximum lies further from the median than the minimum does, the
// bright extreme dominates and every pixel is replaced by maxIntensity - v.
// Otherwise a copy of img is returned unchanged. The second return value
// reports whether the inversion happened.
//
// On exact data a normalized image is left alone by a second pass, but the
// comparison is strict, so images whose extremes are equidistant from the
// median are never inverted whichever polarity they have.
func Normalize(img *mat.Dense, maxIntensity float64) (*mat.Dense, bool) {
	values := rasterValues(img)
	hi, lo := floats.Max(values), floats.Min(values)
	med := median(values)

	out := mat.DenseCopyOf(img)
	if hi-med <= med-lo {
		return out, false
	}

	out.Apply(func(_, _ int, v float64) float64 {
		return maxIntensity - v
	}, out)
	return out, true
}

// rasterValues returns the raster samples in row-major order.
func rasterValues(g *mat.Dense) []float64 {
	rows, cols := g.Dims()
	values := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		values = append(values, g.RawRowView(y)...)
	}
	return values
}

// median returns the middle value of values, averaging the two middle values
// for even counts. values is not modified. Callers guarantee len(values) > 0.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
