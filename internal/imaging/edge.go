package imaging

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// minGradient is the magnitude below which an image is considered flat;
// rounding in the blur can leave residues of ~1e-13 on uniform input.
const minGradient = 1e-6

// CannyParams tunes the Canny edge detector.
type CannyParams struct {
	// Sigma is the standard deviation of the Gaussian pre-smoothing.
	// Large values (tens of pixels) suppress texture so only the dominant
	// boundary survives.
	Sigma float64

	// Low and High are hysteresis thresholds expressed as fractions of the
	// maximum gradient magnitude in the image (0 < Low <= High <= 1).
	Low  float64
	High float64
}

// Canny performs Canny edge detection on an intensity raster.
//
// Returns a binary edge map indexed [y][x] where true marks an edge pixel.
//
// # Algorithm
//
//  1. Gaussian blur: separable kernel truncated at 4 sigma, edges replicated
//
//  2. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//
//  3. Non-maximum suppression: keep only local maxima in the gradient
//     direction, quantized to four orientations
//
//  4. Hysteresis: pixels above High*max seed edges, which then grow through
//     8-connected pixels above Low*max
//
// A uniform image has zero gradient everywhere and yields an empty map.
// Border pixels are never edges.
func Canny(g *mat.Dense, p CannyParams) [][]bool {
	height, width := g.Dims()
	edges := make([][]bool, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}
	if width < 3 || height < 3 {
		return edges
	}

	blurred := GaussianBlur(g, p.Sigma)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	maxMag := 0.0
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := blurred[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
			if magnitude[y][x] > maxMag {
				maxMag = magnitude[y][x]
			}
		}
	}
	if maxMag < minGradient {
		return edges
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			if mag > 0 && mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	lowThresh := p.Low * maxMag
	highThresh := p.High * maxMag

	// Hysteresis: flood from strong pixels through weak ones
	stack := make([][2]int, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] > 0 && suppressed[y][x] >= highThresh {
				edges[y][x] = true
				stack = append(stack, [2]int{x, y})
			}
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p[0]+dx, p[1]+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height || edges[ny][nx] {
					continue
				}
				if suppressed[ny][nx] > 0 && suppressed[ny][nx] >= lowThresh {
					edges[ny][nx] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}
		}
	}

	return edges
}

// GaussianBlur smooths a raster with a separable Gaussian kernel of the given
// sigma, truncated at 4 sigma. Border pixels use clamped (replicated) values.
// Returns a [y][x] float grid so the edge detector keeps full precision.
func GaussianBlur(g *mat.Dense, sigma float64) [][]float64 {
	height, width := g.Dims()
	kernel := gaussianKernel(sigma)
	r := len(kernel) / 2

	tmp := make([][]float64, height)
	for y := 0; y < height; y++ {
		tmp[y] = make([]float64, width)
		row := g.RawRowView(y)
		for x := 0; x < width; x++ {
			var sum float64
			for k, w := range kernel {
				sum += w * row[clamp(x+k-r, 0, width-1)]
			}
			tmp[y][x] = sum
		}
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			var sum float64
			for k, w := range kernel {
				sum += w * tmp[clamp(y+k-r, 0, height-1)][x]
			}
			out[y][x] = sum
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	r := int(math.Ceil(4 * sigma))
	kernel := make([]float64, 2*r+1)
	var sum float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+r] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
