package imaging

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PointF is a sub-pixel position; X is the column, Y the row.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bilinear samples the raster at a sub-pixel position. Positions outside the
// raster are clamped to the nearest edge.
func Bilinear(g *mat.Dense, x, y float64) float64 {
	height, width := g.Dims()
	x = math.Max(0, math.Min(x, float64(width-1)))
	y = math.Max(0, math.Min(y, float64(height-1)))

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := clamp(x0+1, 0, width-1), clamp(y0+1, 0, height-1)
	fx, fy := x-float64(x0), y-float64(y0)

	top := g.At(y0, x0)*(1-fx) + g.At(y0, x1)*fx
	bottom := g.At(y1, x0)*(1-fx) + g.At(y1, x1)*fx
	return top*(1-fy) + bottom*fy
}

// ProfileLine samples intensities along the segment from src to dst,
// endpoints included. The sample count is ceil(length + 1), at least 2, so
// consecutive samples are at most one pixel apart.
func ProfileLine(g *mat.Dense, src, dst PointF) []float64 {
	length := math.Hypot(dst.X-src.X, dst.Y-src.Y)
	n := int(math.Ceil(length + 1))
	if n < 2 {
		n = 2
	}

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		samples[i] = Bilinear(g, src.X+t*(dst.X-src.X), src.Y+t*(dst.Y-src.Y))
	}
	return samples
}
