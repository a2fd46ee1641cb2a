// Package synth renders synthetic droplet residues with known geometry.
// The rasters are used to exercise the pipeline end to end in tests.
package synth

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/coffee-ring/internal/imaging"
)

// Droplet describes a synthetic residue: a ring band of constant intensity
// between InnerRadius and OuterRadius (inclusive), an interior disk inside
// the band and a flat background outside it. InnerRadius 0 draws a solid disk.
type Droplet struct {
	Width, Height int
	CX, CY        float64

	Background float64
	Interior   float64
	Ring       float64

	InnerRadius float64
	OuterRadius float64
}

// Raster renders the droplet. Pixel (x, y) belongs to the ring when its
// distance to the center lies in [InnerRadius, OuterRadius]; edges are hard.
func (d Droplet) Raster() *mat.Dense {
	g := mat.NewDense(d.Height, d.Width, nil)
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			dist := math.Hypot(float64(x)-d.CX, float64(y)-d.CY)
			switch {
			case dist < d.InnerRadius:
				g.Set(y, x, d.Interior)
			case dist <= d.OuterRadius:
				g.Set(y, x, d.Ring)
			default:
				g.Set(y, x, d.Background)
			}
		}
	}
	return g
}

// Image renders the droplet as an 8-bit grayscale image.
func (d Droplet) Image() *image.Gray {
	return imaging.ToGray(d.Raster())
}

// Uniform returns a raster filled with a single intensity.
func Uniform(width, height int, v float64) *mat.Dense {
	g := mat.NewDense(height, width, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(y, x, v)
		}
	}
	return g
}

// UniformImage returns an 8-bit image filled with a single gray level.
func UniformImage(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// DarkRing is the reference droplet of the test suite: a 10 px dark band
// (50) of outer radius 70 on a bright background (200), centered in a
// 400x400 frame.
func DarkRing() Droplet {
	return Droplet{
		Width: 400, Height: 400,
		CX: 200, CY: 200,
		Background: 200, Interior: 200, Ring: 50,
		InnerRadius: 60, OuterRadius: 70,
	}
}

// SolidDisk is DarkRing with the band filled in: a dark disk of radius 70.
func SolidDisk() Droplet {
	d := DarkRing()
	d.InnerRadius = 0
	return d
}
