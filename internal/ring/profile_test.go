package ring

import (
	"math"
	"math/rand"
	"testing"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/synth"
)

func TestProfileAngles(t *testing.T) {
	for _, n := range []int{1, 4, 20, 7} {
		angles := ProfileAngles(n)
		if len(angles) != n {
			t.Fatalf("n=%d: got %d angles", n, len(angles))
		}
		for i, a := range angles {
			if a < 0 || a >= 180 {
				t.Errorf("n=%d: angle %v outside [0,180)", n, a)
			}
			if i > 0 && a <= angles[i-1] {
				t.Errorf("n=%d: angles not increasing at %d", n, i)
			}
		}
		if angles[0] != 0 {
			t.Errorf("n=%d: first angle %v, want 0", n, angles[0])
		}
	}

	if got := ProfileAngles(20)[1]; got != 9 {
		t.Errorf("spacing: got %v, want 9", got)
	}
}

func TestLineEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		src, dst imaging.PointF
	}{
		{"horizontal", 0, imaging.PointF{X: 1, Y: 110}, imaging.PointF{X: 219, Y: 110}},
		{"vertical", 90, imaging.PointF{X: 110, Y: 1}, imaging.PointF{X: 110, Y: 219}},
		{"diagonal", 45, imaging.PointF{X: 1, Y: 1}, imaging.PointF{X: 219, Y: 219}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := lineEndpoints(220, 220, 110, 110, tt.angle)
			if math.Abs(src.X-tt.src.X) > 1e-9 || math.Abs(src.Y-tt.src.Y) > 1e-9 {
				t.Errorf("src: got %+v, want %+v", src, tt.src)
			}
			if math.Abs(dst.X-tt.dst.X) > 1e-9 || math.Abs(dst.Y-tt.dst.Y) > 1e-9 {
				t.Errorf("dst: got %+v, want %+v", dst, tt.dst)
			}
		})
	}
}

// dippedProfile returns 40 samples: exterior 200, interior 100, ring minima
// at indices 8 and 30.
func dippedProfile() []float64 {
	p := make([]float64, 40)
	for i := range p {
		switch {
		case i == 8:
			p[i] = 50
		case i == 30:
			p[i] = 61
		case i > 8 && i < 30:
			p[i] = 100
		default:
			p[i] = 200
		}
	}
	return p
}

func TestMeasureLine(t *testing.T) {
	line, err := MeasureLine(dippedProfile(), 2)
	if err != nil {
		t.Fatalf("MeasureLine failed: %v", err)
	}
	if line.MinIndex != [2]int{8, 30} {
		t.Errorf("minima: got %v, want [8 30]", line.MinIndex)
	}
	if line.RingMin != 55 {
		t.Errorf("ring min: got %v, want trunc(55.5) = 55", line.RingMin)
	}
	if line.Interior != 100 {
		t.Errorf("interior: got %v, want 100", line.Interior)
	}
	if line.Exterior != 200 {
		t.Errorf("exterior: got %v, want 200", line.Exterior)
	}
}

func TestMeasureLine_FirstOccurrence(t *testing.T) {
	p := dippedProfile()
	p[12] = 50
	line, err := MeasureLine(p, 2)
	if err != nil {
		t.Fatalf("MeasureLine failed: %v", err)
	}
	if line.MinIndex[0] != 8 {
		t.Errorf("first minimum: got %d, want 8", line.MinIndex[0])
	}
}

func TestMeasureLine_Degenerate(t *testing.T) {
	edgeMinima := make([]float64, 40)
	for i := range edgeMinima {
		edgeMinima[i] = 200
	}
	edgeMinima[1], edgeMinima[38] = 10, 10

	tests := []struct {
		name string
		p    []float64
		tol  int
	}{
		{"tolerance swallows interior", dippedProfile(), 15},
		{"no exterior left", edgeMinima, 2},
		{"single sample", []float64{7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MeasureLine(tt.p, tt.tol)
			if !apperrors.IsType(err, apperrors.ErrorTypeDegenerateProfile) {
				t.Errorf("expected degenerate_profile, got %v", err)
			}
		})
	}
}

func TestSummarize_OrderInvariant(t *testing.T) {
	lines := make([]LineProfile, 20)
	for i := range lines {
		lines[i] = LineProfile{
			RingMin:  float64(40 + i),
			Interior: 150 + 0.1*float64(i*i),
			Exterior: 210 - 0.37*float64(i),
		}
	}
	want := Summarize(lines)

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		shuffled := append([]LineProfile(nil), lines...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Summarize(shuffled)
		if math.Abs(got.RingMin-want.RingMin) > 1e-9 ||
			math.Abs(got.Interior-want.Interior) > 1e-9 ||
			math.Abs(got.Exterior-want.Exterior) > 1e-9 {
			t.Errorf("round %d: got %+v, want %+v", round, got, want)
		}
	}

	if want.RingMin != 49.5 {
		t.Errorf("mean ring min: got %v, want 49.5", want.RingMin)
	}
}

func TestProfile_DarkRing(t *testing.T) {
	region := cropAroundCenter(t, synth.DarkRing(), 110)

	s, err := Profile(region, ProfileParams{NumLines: 20, Tolerance: 10})
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if len(s.Lines) != 20 {
		t.Fatalf("lines: got %d, want 20", len(s.Lines))
	}
	for _, l := range s.Lines {
		if l.RingMin != 50 || l.Interior != 200 || l.Exterior != 200 {
			t.Errorf("line at %.0f degrees: got min %v interior %v exterior %v",
				l.Angle, l.RingMin, l.Interior, l.Exterior)
		}
	}
	if s.RingMin != 50 || s.Interior != 200 || s.Exterior != 200 {
		t.Errorf("summary: got %+v", s)
	}
	if len(s.Segments()) != 20 {
		t.Errorf("segments: got %d, want 20", len(s.Segments()))
	}
}

func TestProfile_ToleranceTooLarge(t *testing.T) {
	region := cropAroundCenter(t, synth.DarkRing(), 110)

	_, err := Profile(region, ProfileParams{NumLines: 4, Tolerance: 80})
	if !apperrors.IsType(err, apperrors.ErrorTypeDegenerateProfile) {
		t.Fatalf("expected degenerate_profile, got %v", err)
	}
}

func TestProfile_NoLines(t *testing.T) {
	region := cropAroundCenter(t, synth.DarkRing(), 110)

	_, err := Profile(region, ProfileParams{NumLines: 0, Tolerance: 10})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
