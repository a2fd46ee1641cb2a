package imaging

import (
	"image"
	"math"
	"path/filepath"
	"testing"
)

func TestCirclePerimeter(t *testing.T) {
	for _, r := range []int{1, 2, 5, 20, 33, 60, 150, 250} {
		offsets := CirclePerimeter(r)
		seen := make(map[Offset]bool)
		for _, o := range offsets {
			if seen[o] {
				t.Fatalf("radius %d: duplicate offset %v", r, o)
			}
			seen[o] = true
			d := math.Hypot(float64(o.DX), float64(o.DY))
			if math.Abs(d-float64(r)) > 0.5 {
				t.Errorf("radius %d: offset %v at distance %.2f", r, o, d)
			}
		}
		if len(offsets) < 4*r {
			t.Errorf("radius %d: only %d perimeter offsets", r, len(offsets))
		}
	}
}

func TestOverlay(t *testing.T) {
	g := uniformRaster(50, 50, 120)
	lines := []Segment{{Src: PointF{0, 25}, Dst: PointF{49, 25}}}

	out, err := Overlay(g, image.Pt(25, 25), 10, lines, OverlayStyle{CircleColor: "#ff0000", ProfileColor: "#0000ff"})
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	if c := out.NRGBAAt(35, 25); c.R != 255 || c.G != 0 {
		t.Errorf("circle pixel: got %+v, want red", c)
	}
	if c := out.NRGBAAt(5, 25); c.B != 255 || c.R != 0 {
		t.Errorf("profile pixel: got %+v, want blue", c)
	}
	if c := out.NRGBAAt(5, 5); c.R != 120 || c.G != 120 || c.B != 120 {
		t.Errorf("background pixel: got %+v, want gray 120", c)
	}

	path := filepath.Join(t.TempDir(), "out", "overlay.png")
	if err := SaveOverlay(out, path); err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}
	if _, err := Open(path); err != nil {
		t.Errorf("saved overlay cannot be reopened: %v", err)
	}
}

func TestOverlay_BadColor(t *testing.T) {
	_, err := Overlay(uniformRaster(5, 5, 0), image.Pt(2, 2), 1, nil, OverlayStyle{CircleColor: "red", ProfileColor: "#000000"})
	if err == nil {
		t.Error("expected error for non-hex color")
	}
}
