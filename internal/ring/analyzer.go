package ring

import (
	"context"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/coffee-ring/internal/config"
	"github.com/ironsheep/coffee-ring/internal/detection"
	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/logger"
)

// Status tags the outcome of a successful analysis.
type Status string

const (
	// StatusMeasured means the ring was validated and scored.
	StatusMeasured Status = "measured"

	// StatusRingNotVisible means the validator rejected the region.
	StatusRingNotVisible Status = "ring_not_visible"
)

// Result is the outcome of analyzing one image.
type Result struct {
	Status Status  `json:"status"`
	Score  float64 `json:"score"`

	Circle   detection.Circle `json:"circle"`
	Inverted bool             `json:"inverted"`
	Summary  Summary          `json:"summary"`

	MinAreaRatio float64 `json:"min_area_ratio"`
}

// Measured reports whether the result carries a score.
func (r *Result) Measured() bool {
	return r.Status == StatusMeasured
}

// Value returns the score, or 0 when the ring is not visible.
func (r *Result) Value() float64 {
	if !r.Measured() {
		return 0
	}
	return r.Score
}

// Analyzer runs the ring pipeline with a fixed configuration. It is safe for
// concurrent use.
type Analyzer struct {
	cfg   *config.Config
	cache *imaging.ImageCache
}

// NewAnalyzer creates an analyzer. A nil config selects the defaults.
func NewAnalyzer(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Analyzer{cfg: cfg}
}

// WithCache returns an analyzer sharing a decoded image cache.
func (a *Analyzer) WithCache(cache *imaging.ImageCache) *Analyzer {
	c := *a
	c.cache = cache
	return &c
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// LocateParams derives the localizer parameters from the configuration.
func (a *Analyzer) LocateParams() detection.LocateParams {
	l := a.cfg.Localizer
	return detection.LocateParams{
		MedianRadius: l.MedianRadius,
		Canny:        imaging.CannyParams{Sigma: l.CannySigma, Low: l.CannyLow, High: l.CannyHigh},
		Hough:        detection.HoughParams{RadiusMin: l.RadiusMin, RadiusMax: l.RadiusMax, RadiusStep: l.RadiusStep},
		CropPadding:  l.CropPadding,
	}
}

func (a *Analyzer) validatorParams() ValidatorParams {
	return ValidatorParams{
		MedianRadius:       a.cfg.Validator.MedianRadius,
		AreaRatioThreshold: a.cfg.Validator.AreaRatioThreshold,
	}
}

func (a *Analyzer) profileParams() ProfileParams {
	return ProfileParams{NumLines: a.cfg.Profiler.NumLines, Tolerance: a.cfg.Profiler.Tolerance}
}

func (a *Analyzer) weights() Weights {
	return Weights{Exterior: a.cfg.Scorer.ExteriorWeight, Interior: a.cfg.Scorer.InteriorWeight}
}

// RingParameter runs the full pipeline on a grayscale raster.
//
// A validator rejection is not an error: it yields StatusRingNotVisible.
// Every other failure is returned as a typed error. The analysis is bounded
// by the configured per-image timeout.
func (a *Analyzer) RingParameter(ctx context.Context, img *mat.Dense) (*Result, error) {
	res, _, err := a.analyze(ctx, img)
	return res, err
}

// trace keeps the intermediate products needed to draw an overlay.
type trace struct {
	loc *detection.Localization
}

func (a *Analyzer) analyze(ctx context.Context, img *mat.Dense) (*Result, *trace, error) {
	if timeout := a.cfg.Batch.ImageTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	loc, err := detection.Locate(ctx, img, a.LocateParams())
	if err != nil {
		return nil, nil, err
	}
	res := &Result{Circle: loc.Circle}
	tr := &trace{loc: loc}

	if err := stageDone(ctx, "validate"); err != nil {
		return nil, nil, err
	}
	v, err := Validate(ctx, loc.Region, a.validatorParams())
	res.MinAreaRatio = v.MinAreaRatio
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRingNotVisible) {
			logger.WithField("reason", err.Error()).Debug("ring not visible")
			res.Status = StatusRingNotVisible
			return res, tr, nil
		}
		return nil, nil, err
	}

	if err := stageDone(ctx, "normalize"); err != nil {
		return nil, nil, err
	}
	normalized, inverted := Normalize(loc.Region, a.cfg.MaxIntensity())
	res.Inverted = inverted

	if err := stageDone(ctx, "profile"); err != nil {
		return nil, nil, err
	}
	summary, err := Profile(normalized, a.profileParams())
	if err != nil {
		return nil, nil, err
	}
	res.Summary = summary

	score, err := Score(summary, a.weights())
	if err != nil {
		return nil, nil, err
	}
	res.Score = score
	res.Status = StatusMeasured

	logger.WithField("min_area_ratio", res.MinAreaRatio).
		WithField("inverted", inverted).
		WithField("interior", summary.Interior).
		WithField("exterior", summary.Exterior).
		WithField("ring_min", summary.RingMin).
		WithField("score", score).
		Debug("ring measured")

	return res, tr, nil
}

func stageDone(ctx context.Context, next string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTimeoutError("analysis interrupted before "+next, err)
	}
	return nil
}

// AnalyzeFile loads an image file and runs the pipeline on it. When an
// overlay directory is configured, measured images also produce
// <name>_ring.png there.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	img, err := imaging.LoadRaster(a.cache, path)
	if err != nil {
		return nil, err
	}

	res, tr, err := a.analyze(ctx, img)
	if err != nil {
		return nil, err
	}

	if a.cfg.Output.OverlayDir != "" && res.Measured() {
		if err := a.writeOverlay(path, res, tr); err != nil {
			logger.WithError(err).WithField("path", path).Warn("failed to write overlay")
		}
	}
	return res, nil
}

// DetectCircle loads an image file and runs only the localizer.
func (a *Analyzer) DetectCircle(ctx context.Context, path string) (*detection.Localization, error) {
	img, err := imaging.LoadRaster(a.cache, path)
	if err != nil {
		return nil, err
	}
	return detection.Locate(ctx, img, a.LocateParams())
}

// OverlayPath returns where the overlay of the image at path is written.
func (a *Analyzer) OverlayPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(a.cfg.Output.OverlayDir, name+"_ring.png")
}

func (a *Analyzer) writeOverlay(path string, res *Result, tr *trace) error {
	style := imaging.OverlayStyle{
		CircleColor:  a.cfg.Output.CircleColor,
		ProfileColor: a.cfg.Output.ProfileColor,
	}
	out, err := imaging.Overlay(tr.loc.Region, tr.loc.CenterInRegion(), res.Circle.Radius, res.Summary.Segments(), style)
	if err != nil {
		return err
	}
	return imaging.SaveOverlay(out, a.OverlayPath(path))
}
