package ring

import (
	"math"
	"testing"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		weights Weights
		want    float64
	}{
		{"unequal backgrounds", Summary{Exterior: 200, Interior: 100, RingMin: 50}, Weights{0.75, 0.25}, 1 - 50*(0.75/200.0+0.25/100.0)},
		{"equal backgrounds", Summary{Exterior: 200, Interior: 200, RingMin: 50}, Weights{0.75, 0.25}, 0.75},
		{"no ring contrast", Summary{Exterior: 200, Interior: 200, RingMin: 200}, Weights{0.75, 0.25}, 0},
		{"black ring", Summary{Exterior: 180, Interior: 90, RingMin: 0}, Weights{0.75, 0.25}, 1},
		{"unnormalized weights", Summary{Exterior: 100, Interior: 100, RingMin: 50}, Weights{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.summary, tt.weights)
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_ZeroBackground(t *testing.T) {
	for _, s := range []Summary{
		{Exterior: 0, Interior: 100, RingMin: 0},
		{Exterior: 100, Interior: 0, RingMin: 0},
	} {
		_, err := Score(s, Weights{0.75, 0.25})
		if !apperrors.IsType(err, apperrors.ErrorTypeZeroIntensity) {
			t.Errorf("%+v: expected zero_intensity_division, got %v", s, err)
		}
	}
}
