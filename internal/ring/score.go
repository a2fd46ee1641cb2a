package ring

import (
	"fmt"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
)

// Weights balances the exterior and interior backgrounds in the score. They
// conventionally sum to 1 but nothing enforces it.
type Weights struct {
	Exterior float64 `json:"exterior"`
	Interior float64 `json:"interior"`
}

// Score computes the ring parameter
//
//	1 - ringMin * (wExt/exterior + wInt/interior)
//
// from the averaged profile quantities. A zero background average is a
// zero_intensity_division error.
func Score(s Summary, w Weights) (float64, error) {
	if s.Exterior == 0 || s.Interior == 0 {
		return 0, apperrors.NewZeroIntensityError(fmt.Sprintf(
			"background average is zero (exterior %.3f, interior %.3f)", s.Exterior, s.Interior))
	}
	return 1 - s.RingMin*(w.Exterior/s.Exterior+w.Interior/s.Interior), nil
}
