package imaging

import (
	"image"
	"image/color"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFromImage_ColorToLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)
	img.Set(2, 1, color.RGBA{255, 0, 0, 255})

	g := FromImage(img)
	rows, cols := g.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("dims: got %dx%d, want 2x3", rows, cols)
	}
	if g.At(0, 0) != 255 {
		t.Errorf("white: got %v, want 255", g.At(0, 0))
	}
	if g.At(0, 1) != 0 {
		t.Errorf("black: got %v, want 0", g.At(0, 1))
	}
	if v := g.At(1, 2); v <= 0 || v >= 255 {
		t.Errorf("red luminance should be mid-range, got %v", v)
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 14, 23))
	img.SetGray(13, 22, color.Gray{Y: 77})

	g := FromImage(img)
	if g.At(2, 3) != 77 {
		t.Errorf("bottom-right pixel: got %v, want 77", g.At(2, 3))
	}
}

func TestToGray_Clamps(t *testing.T) {
	g := mat.NewDense(1, 3, []float64{-20, 127.6, 400})
	out := ToGray(g)

	want := []uint8{0, 128, 255}
	for x, w := range want {
		if got := out.GrayAt(x, 0).Y; got != w {
			t.Errorf("pixel %d: got %d, want %d", x, got, w)
		}
	}
}
