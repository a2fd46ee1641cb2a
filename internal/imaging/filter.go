package imaging

import (
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"gonum.org/v1/gonum/mat"
)

// Footprint is a set of neighborhood offsets relative to the filtered pixel.
type Footprint []Offset

// Offset is a relative pixel displacement.
type Offset struct {
	DX, DY int
}

// Disk returns the offsets within Euclidean distance radius of the origin.
func Disk(radius int) Footprint {
	fp := make(Footprint, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				fp = append(fp, Offset{DX: dx, DY: dy})
			}
		}
	}
	return fp
}

// Square returns the offsets of a (2*radius+1) square window.
func Square(radius int) Footprint {
	fp := make(Footprint, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			fp = append(fp, Offset{DX: dx, DY: dy})
		}
	}
	return fp
}

// MedianFilter replaces every pixel by the median of its footprint.
//
// Out-of-range neighbors are taken from the nearest edge pixel. For even
// footprint sizes the upper median is used, so the output only contains
// values present in the input.
func MedianFilter(g *mat.Dense, fp Footprint) *mat.Dense {
	height, width := g.Dims()
	out := mat.NewDense(height, width, nil)
	if len(fp) == 0 {
		out.Copy(g)
		return out
	}

	buf := make([]float64, len(fp))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for i, o := range fp {
				buf[i] = g.At(clamp(y+o.DY, 0, height-1), clamp(x+o.DX, 0, width-1))
			}
			sort.Float64s(buf)
			out.Set(y, x, buf[len(buf)/2])
		}
	}
	return out
}

// Denoise applies a square median filter of the given radius to an 8-bit
// raster using bild. Radius 0 returns a copy.
func Denoise(g *mat.Dense, radius int) *mat.Dense {
	if radius <= 0 {
		return mat.DenseCopyOf(g)
	}
	return fromRGBA(effect.Median(ToGray(g), float64(radius)))
}
