package ring

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/coffee-ring/internal/detection"
	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
)

// ValidatorParams configures ring visibility checking.
type ValidatorParams struct {
	// MedianRadius is the disk footprint radius of the denoising median
	MedianRadius int

	// AreaRatioThreshold rejects the region when every component's
	// area / filled-area ratio exceeds it
	AreaRatioThreshold float64
}

// Validation reports how the validator judged a region.
type Validation struct {
	Thresholds      [2]float64         `json:"thresholds"`
	BackgroundLevel int                `json:"background_level"`
	Regions         []detection.Region `json:"regions,omitempty"`

	// MinAreaRatio is the smallest area / filled-area ratio among the
	// foreground components; 1 when there are none.
	MinAreaRatio float64 `json:"min_area_ratio"`
}

// Validate decides whether the cropped region shows a ring-shaped deposit.
//
// The region is median filtered with a disk footprint, split into three
// levels by multi-Otsu thresholds and labeled into 4-connected components
// of equal level, ignoring the level found at the top-left pixel. A ring is
// hollow, so at least one component must have an area ratio at or below the
// threshold.
//
// Rejection is reported as a ring_not_visible error alongside the
// Validation gathered so far. The region itself is never modified. A
// cancelled ctx stops the work with a timeout error.
func Validate(ctx context.Context, region *mat.Dense, p ValidatorParams) (Validation, error) {
	v := Validation{MinAreaRatio: 1}

	rows, cols := region.Dims()
	filtered := imaging.MedianFilter(region, imaging.Disk(p.MedianRadius))
	if err := ctx.Err(); err != nil {
		return v, apperrors.NewTimeoutError("validation interrupted", err)
	}

	t1, t2, err := detection.MultiOtsu(filtered)
	if err != nil {
		return v, err
	}
	v.Thresholds = [2]float64{t1, t2}

	levels := detection.Digitize(filtered, t1, t2)
	v.BackgroundLevel = levels[0]

	labels, n := detection.LabelLevels(levels, cols, rows, v.BackgroundLevel)
	if n == 0 {
		return v, apperrors.NewRingNotVisibleError("no foreground region")
	}
	v.Regions, err = detection.DescribeRegions(ctx, labels, levels, cols, rows, n)
	if err != nil {
		return v, err
	}

	minRatio := math.Inf(1)
	for _, r := range v.Regions {
		minRatio = math.Min(minRatio, r.AreaRatio())
	}
	v.MinAreaRatio = minRatio

	if minRatio > p.AreaRatioThreshold {
		return v, apperrors.NewRingNotVisibleError(fmt.Sprintf(
			"min area ratio %.3f exceeds %.3f", minRatio, p.AreaRatioThreshold))
	}
	return v, nil
}
