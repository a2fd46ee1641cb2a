package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// Segment is a straight sampling path between two sub-pixel points.
type Segment struct {
	Src PointF `json:"src"`
	Dst PointF `json:"dst"`
}

// OverlayStyle selects the colors of an annotated overlay as "#RRGGBB" strings.
type OverlayStyle struct {
	CircleColor  string
	ProfileColor string
}

// Overlay renders a raster with the detected circle and the radial profile
// paths drawn on top. Circle coordinates are in raster space.
func Overlay(g *mat.Dense, center image.Point, radius int, lines []Segment, style OverlayStyle) (*image.NRGBA, error) {
	circleColor, err := parseColor(style.CircleColor)
	if err != nil {
		return nil, err
	}
	profileColor, err := parseColor(style.ProfileColor)
	if err != nil {
		return nil, err
	}

	out := imaging.Clone(ToGray(g))
	for _, l := range lines {
		drawSegment(out, l, profileColor)
	}
	drawCircle(out, center.X, center.Y, radius, circleColor)
	return out, nil
}

// SaveOverlay writes an overlay image, creating the directory if needed.
// The encoder is chosen from the file extension.
func SaveOverlay(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

func parseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid overlay color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawCircle draws a circle outline using the midpoint algorithm.
// Pixels outside the image are skipped by image.NRGBA.Set.
func drawCircle(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	for _, o := range CirclePerimeter(radius) {
		img.Set(cx+o.DX, cy+o.DY, c)
	}
}

func drawSegment(img *image.NRGBA, s Segment, c color.NRGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(s.Dst.X-s.Src.X), math.Abs(s.Dst.Y-s.Src.Y))))
	if steps == 0 {
		img.Set(int(math.Round(s.Src.X)), int(math.Round(s.Src.Y)), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := s.Src.X + t*(s.Dst.X-s.Src.X)
		y := s.Src.Y + t*(s.Dst.Y-s.Src.Y)
		img.Set(int(math.Round(x)), int(math.Round(y)), c)
	}
}

// CirclePerimeter returns the distinct offsets of a digital circle of the
// given radius traced with the midpoint algorithm.
func CirclePerimeter(radius int) []Offset {
	if radius <= 0 {
		return []Offset{{}}
	}
	seen := make(map[Offset]bool)
	var offsets []Offset
	add := func(dx, dy int) {
		o := Offset{DX: dx, DY: dy}
		if !seen[o] {
			seen[o] = true
			offsets = append(offsets, o)
		}
	}

	x := radius
	y := 0
	d := 1 - radius
	for x >= y {
		add(x, y)
		add(y, x)
		add(-y, x)
		add(-x, y)
		add(-x, -y)
		add(-y, -x)
		add(y, -x)
		add(x, -y)

		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
	return offsets
}
