package detection

import (
	"context"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
)

// otsuBins is the histogram resolution of MultiOtsu.
const otsuBins = 256

// MultiOtsu computes the two thresholds that split the raster's intensities
// into three classes with maximal between-class variance.
//
// The histogram spans [min, max] with 256 equal bins. Each threshold is the
// upper edge of the last bin of its class, so a value v belongs to class 0
// when v <= t1, class 1 when t1 < v <= t2 and class 2 otherwise. Among equal
// optima the lowest threshold pair wins.
//
// A uniform raster has no split and yields a ring_not_visible error.
func MultiOtsu(g *mat.Dense) (t1, t2 float64, err error) {
	data := g.RawMatrix().Data
	rows, cols := g.Dims()
	values := data
	if g.RawMatrix().Stride != cols {
		values = make([]float64, 0, rows*cols)
		for y := 0; y < rows; y++ {
			values = append(values, g.RawRowView(y)...)
		}
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if hi <= lo {
		return 0, 0, apperrors.NewRingNotVisibleError("uniform region has no intensity classes")
	}
	width := (hi - lo) / otsuBins

	var counts [otsuBins]float64
	for _, v := range values {
		counts[binOf(v, lo, width)]++
	}

	// Prefix sums of weight and first moment over bin centers.
	var weight, moment [otsuBins + 1]float64
	for i := 0; i < otsuBins; i++ {
		center := lo + (float64(i)+0.5)*width
		weight[i+1] = weight[i] + counts[i]
		moment[i+1] = moment[i] + counts[i]*center
	}
	classTerm := func(from, to int) float64 {
		w := weight[to] - weight[from]
		if w == 0 {
			return 0
		}
		m := moment[to] - moment[from]
		return m * m / w
	}

	bestI, bestJ, best := 0, 1, -1.0
	for i := 0; i < otsuBins-2; i++ {
		for j := i + 1; j < otsuBins-1; j++ {
			v := classTerm(0, i+1) + classTerm(i+1, j+1) + classTerm(j+1, otsuBins)
			if v > best {
				best, bestI, bestJ = v, i, j
			}
		}
	}

	return lo + float64(bestI+1)*width, lo + float64(bestJ+1)*width, nil
}

func binOf(v, lo, width float64) int {
	idx := int(math.Floor((v - lo) / width))
	if idx < 0 {
		return 0
	}
	if idx >= otsuBins {
		return otsuBins - 1
	}
	return idx
}

// Digitize maps every pixel to level 0, 1 or 2 by the two thresholds.
// The result is row-major.
func Digitize(g *mat.Dense, t1, t2 float64) []int {
	rows, cols := g.Dims()
	levels := make([]int, rows*cols)
	for y := 0; y < rows; y++ {
		row := g.RawRowView(y)
		for x, v := range row {
			switch {
			case v <= t1:
				levels[y*cols+x] = 0
			case v <= t2:
				levels[y*cols+x] = 1
			default:
				levels[y*cols+x] = 2
			}
		}
	}
	return levels
}

// LabelLevels labels the 4-connected components of equal level, skipping
// pixels whose level equals background. Labels start at 1; 0 marks
// background. Returns the label map and the number of components.
func LabelLevels(levels []int, width, height, background int) ([]int, int) {
	labels := make([]int, len(levels))
	n := 0
	stack := make([]int, 0)

	for start, lvl := range levels {
		if lvl == background || labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%width, p/width

			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				q := ny*width + nx
				if labels[q] == 0 && levels[q] == lvl {
					labels[q] = n
					stack = append(stack, q)
				}
			}
		}
	}
	return labels, n
}

// Region describes one labeled connected component.
type Region struct {
	Label int `json:"label"`
	Level int `json:"level"`

	// Area is the number of pixels in the component.
	Area int `json:"area"`

	// FilledArea is the pixel count after closing every hole, that is every
	// non-member pixel of the bounding box not 4-connected to its border.
	FilledArea int `json:"filled_area"`

	Bounds image.Rectangle `json:"bounds"`
}

// AreaRatio is Area / FilledArea: 1 for solid blobs, lower for hollow rings.
func (r Region) AreaRatio() float64 {
	if r.FilledArea == 0 {
		return 0
	}
	return float64(r.Area) / float64(r.FilledArea)
}

// DescribeRegions computes area, filled area and bounds of labels 1..n.
//
// Bounds are the tight bounding boxes of each component. The hole fill runs
// once per region, so ctx is checked between regions.
func DescribeRegions(ctx context.Context, labels, levels []int, width, height, n int) ([]Region, error) {
	regions := make([]Region, n)
	for i := range regions {
		// inverted empty box; image.Rect would reorder the corners
		regions[i] = Region{
			Label:  i + 1,
			Bounds: image.Rectangle{Min: image.Pt(width, height), Max: image.Pt(0, 0)},
		}
	}

	for p, l := range labels {
		if l == 0 {
			continue
		}
		r := &regions[l-1]
		x, y := p%width, p/width
		r.Level = levels[p]
		r.Area++
		if x < r.Bounds.Min.X {
			r.Bounds.Min.X = x
		}
		if y < r.Bounds.Min.Y {
			r.Bounds.Min.Y = y
		}
		if x+1 > r.Bounds.Max.X {
			r.Bounds.Max.X = x + 1
		}
		if y+1 > r.Bounds.Max.Y {
			r.Bounds.Max.Y = y + 1
		}
	}

	for i := range regions {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewTimeoutError("region description interrupted", err)
		}
		regions[i].FilledArea = filledArea(labels, width, regions[i])
	}
	return regions, nil
}

// filledArea floods the non-member pixels of the region's bounding box from
// its border; whatever the flood cannot reach is a hole.
func filledArea(labels []int, width int, r Region) int {
	bw, bh := r.Bounds.Dx(), r.Bounds.Dy()
	if bw <= 0 || bh <= 0 {
		return 0
	}

	member := func(x, y int) bool {
		return labels[(y+r.Bounds.Min.Y)*width+x+r.Bounds.Min.X] == r.Label
	}

	outside := make([]bool, bw*bh)
	stack := make([]int, 0)
	seed := func(x, y int) {
		if !member(x, y) && !outside[y*bw+x] {
			outside[y*bw+x] = true
			stack = append(stack, y*bw+x)
		}
	}
	for x := 0; x < bw; x++ {
		seed(x, 0)
		seed(x, bh-1)
	}
	for y := 0; y < bh; y++ {
		seed(0, y)
		seed(bw-1, y)
	}

	reached := 0
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		x, y := p%bw, p/bw
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= bw || ny < 0 || ny >= bh {
				continue
			}
			seed(nx, ny)
		}
	}

	return bw*bh - reached
}
