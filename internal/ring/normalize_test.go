package ring

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/coffee-ring/internal/synth"
)

func TestNormalize_InvertsBrightRing(t *testing.T) {
	d := synth.DarkRing()
	d.Background, d.Interior, d.Ring = 40, 40, 230
	img := d.Raster()

	out, inverted := Normalize(img, 255)
	if !inverted {
		t.Fatal("expected a bright ring to be inverted")
	}

	rows, cols := img.Dims()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if out.At(y, x) != 255-img.At(y, x) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, out.At(y, x), 255-img.At(y, x))
			}
		}
	}
	if img.At(200, 265) != 230 {
		t.Error("Normalize must not modify its input")
	}
}

func TestNormalize_KeepsDarkRing(t *testing.T) {
	img := synth.DarkRing().Raster()

	out, inverted := Normalize(img, 255)
	if inverted {
		t.Fatal("a dark ring must not be inverted")
	}
	if !mat.Equal(out, img) {
		t.Error("output should equal input")
	}
}

func TestNormalize_SecondPass(t *testing.T) {
	d := synth.DarkRing()
	d.Background, d.Interior, d.Ring = 40, 40, 230

	once, _ := Normalize(d.Raster(), 255)
	twice, inverted := Normalize(once, 255)
	if inverted {
		t.Error("a normalized image must not be inverted again")
	}
	if !mat.Equal(once, twice) {
		t.Error("second pass changed the image")
	}
}

func TestNormalize_BitDepth(t *testing.T) {
	img := mat.NewDense(1, 5, []float64{100, 100, 100, 100, 60000})

	out, inverted := Normalize(img, 65535)
	if !inverted {
		t.Fatal("expected inversion")
	}
	if out.At(0, 4) != 5535 || out.At(0, 0) != 65435 {
		t.Errorf("16-bit complement: got %v", mat.Formatted(out))
	}
}

func TestNormalize_EquidistantExtremes(t *testing.T) {
	img := mat.NewDense(1, 3, []float64{0, 100, 200})
	if _, inverted := Normalize(img, 255); inverted {
		t.Error("equidistant extremes must not trigger inversion")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{5}, 5},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{200, 200, 50, 200}, 200},
	}
	for _, tt := range tests {
		if got := median(tt.values); got != tt.want {
			t.Errorf("median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}
