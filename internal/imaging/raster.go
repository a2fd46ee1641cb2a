package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// FromImage converts any decoded image to a grayscale intensity raster.
//
// The raster has one row per image row and one column per image column, with
// values on the conventional [0, 255] scale regardless of the source bit depth.
// Color images are reduced to luminance by imaging.Grayscale.
func FromImage(img image.Image) *mat.Dense {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width*4]
		for x := 0; x < width; x++ {
			data[y*width+x] = float64(row[x*4])
		}
	}
	return mat.NewDense(height, width, data)
}

// ToGray renders a raster as an 8-bit image, clamping values to [0, 255].
func ToGray(g *mat.Dense) *image.Gray {
	height, width := g.Dims()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.SetGray(x, y, color.Gray{Y: clampByte(g.At(y, x))})
		}
	}
	return out
}

// fromRGBA reads the red channel of an RGBA image back into a raster. Used
// after filters that return *image.RGBA for gray input.
func fromRGBA(img *image.RGBA) *mat.Dense {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = float64(img.Pix[y*img.Stride+x*4])
		}
	}
	return mat.NewDense(height, width, data)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
