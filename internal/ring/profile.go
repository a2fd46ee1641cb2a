package ring

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
)

// ProfileParams configures radial sampling.
type ProfileParams struct {
	// NumLines is the number of diameter lines, evenly spaced over [0, 180) degrees
	NumLines int

	// Tolerance is the number of samples trimmed next to each ring minimum
	// before the background medians are taken
	Tolerance int
}

// LineProfile holds the measurements of one diameter line.
type LineProfile struct {
	Angle   float64        `json:"angle"`
	Src     imaging.PointF `json:"src"`
	Dst     imaging.PointF `json:"dst"`
	Samples int            `json:"samples"`

	// MinIndex holds the first-occurrence minimum index of each half
	MinIndex [2]int `json:"min_index"`

	RingMin  float64 `json:"ring_min"`
	Interior float64 `json:"interior"`
	Exterior float64 `json:"exterior"`
}

// Summary is the arithmetic mean of the line measurements.
type Summary struct {
	Interior float64 `json:"interior"`
	Exterior float64 `json:"exterior"`
	RingMin  float64 `json:"ring_min"`

	Lines []LineProfile `json:"lines,omitempty"`
}

// ProfileAngles returns n angles in degrees, i*180/n for i in [0, n).
func ProfileAngles(n int) []float64 {
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = float64(i) * 180 / float64(n)
	}
	return angles
}

// Profile samples NumLines diameters through the center of img and reduces
// them to a Summary.
//
// The center is (width/2, height/2) truncated. Each line runs symmetrically
// through the center at its angle until one endpoint reaches the image
// border, so vertical and horizontal lines span the full region.
func Profile(img *mat.Dense, p ProfileParams) (Summary, error) {
	if p.NumLines < 1 {
		return Summary{}, apperrors.NewValidationError(fmt.Sprintf("numLines must be positive, got %d", p.NumLines), nil)
	}

	rows, cols := img.Dims()
	cx, cy := cols/2, rows/2

	lines := make([]LineProfile, 0, p.NumLines)
	for _, angle := range ProfileAngles(p.NumLines) {
		src, dst := lineEndpoints(cols, rows, cx, cy, angle)
		line, err := MeasureLine(imaging.ProfileLine(img, src, dst), p.Tolerance)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return Summary{}, appErr.WithDetails("line at %.1f degrees", angle)
			}
			return Summary{}, err
		}
		line.Angle, line.Src, line.Dst = angle, src, dst
		lines = append(lines, line)
	}

	return Summarize(lines), nil
}

// lineEndpoints returns the two endpoints of the diameter at angle degrees
// through (cx, cy), reflected about the center and clipped to the raster.
func lineEndpoints(width, height, cx, cy int, angle float64) (imaging.PointF, imaging.PointF) {
	rad := angle * math.Pi / 180
	dx, dy := math.Cos(rad), math.Sin(rad)

	reach := math.Inf(1)
	if math.Abs(dx) > 1e-12 {
		reach = math.Min(reach, float64(min(cx, width-1-cx))/math.Abs(dx))
	}
	if math.Abs(dy) > 1e-12 {
		reach = math.Min(reach, float64(min(cy, height-1-cy))/math.Abs(dy))
	}

	x, y := float64(cx), float64(cy)
	return imaging.PointF{X: x - reach*dx, Y: y - reach*dy},
		imaging.PointF{X: x + reach*dx, Y: y + reach*dy}
}

// MeasureLine extracts the ring minimum and both background medians from
// one intensity profile.
//
// The profile is split at len/2 and the first minimum of each half marks a
// ring crossing (indices i1 and i2). RingMin is the truncated mean of the two
// minima. The interior holds the samples strictly between the crossings
// after trimming tol samples on each side, p[i1+tol+1 : i2-tol]; the exterior
// concatenates p[:i1-tol] and p[i2+tol+1:].
//
// An empty interior or exterior window is a degenerate_profile error.
func MeasureLine(p []float64, tol int) (LineProfile, error) {
	n := len(p)
	if n < 2 {
		return LineProfile{}, apperrors.NewDegenerateProfileError(fmt.Sprintf("profile has %d samples", n))
	}

	half := n / 2
	i1 := argmin(p[:half])
	i2 := half + argmin(p[half:])

	line := LineProfile{
		Samples:  n,
		MinIndex: [2]int{i1, i2},
		RingMin:  math.Trunc((p[i1] + p[i2]) / 2),
	}

	lo, hi := i1+tol+1, i2-tol
	if lo >= hi {
		return line, apperrors.NewDegenerateProfileError(fmt.Sprintf(
			"interior window empty: minima at %d and %d with tolerance %d", i1, i2, tol))
	}

	var exterior []float64
	if end := i1 - tol; end > 0 {
		exterior = append(exterior, p[:end]...)
	}
	if start := i2 + tol + 1; start < n {
		exterior = append(exterior, p[start:]...)
	}
	if len(exterior) == 0 {
		return line, apperrors.NewDegenerateProfileError(fmt.Sprintf(
			"exterior window empty: minima at %d and %d of %d samples with tolerance %d", i1, i2, n, tol))
	}

	line.Interior = median(p[lo:hi])
	line.Exterior = median(exterior)
	return line, nil
}

// argmin returns the index of the first occurrence of the smallest value.
func argmin(values []float64) int {
	best := 0
	for i, v := range values {
		if v < values[best] {
			best = i
		}
	}
	return best
}

// Summarize averages the line measurements. The means do not depend on the
// order of lines.
func Summarize(lines []LineProfile) Summary {
	interior := make([]float64, len(lines))
	exterior := make([]float64, len(lines))
	ringMin := make([]float64, len(lines))
	for i, l := range lines {
		interior[i], exterior[i], ringMin[i] = l.Interior, l.Exterior, l.RingMin
	}

	return Summary{
		Interior: stat.Mean(interior, nil),
		Exterior: stat.Mean(exterior, nil),
		RingMin:  stat.Mean(ringMin, nil),
		Lines:    lines,
	}
}

// Segments returns the sampled lines in region coordinates, for overlays.
func (s Summary) Segments() []imaging.Segment {
	segments := make([]imaging.Segment, len(s.Lines))
	for i, l := range s.Lines {
		segments[i] = imaging.Segment{Src: l.Src, Dst: l.Dst}
	}
	return segments
}
