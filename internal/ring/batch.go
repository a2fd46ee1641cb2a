package ring

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/ironsheep/coffee-ring/internal/errors"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/logger"
)

// BatchItem is the outcome for one file of a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`

	Err    error               `json:"-"`
	Reason apperrors.ErrorType `json:"reason,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Skipped reports whether the file could not be analyzed.
func (i BatchItem) Skipped() bool {
	return i.Err != nil
}

// BatchReport holds the results of a batch in input order.
type BatchReport struct {
	Dir     string        `json:"dir,omitempty"`
	Items   []BatchItem   `json:"items"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Counts returns the number of measured, not visible and skipped items.
func (r *BatchReport) Counts() (measured, notVisible, skipped int) {
	for _, item := range r.Items {
		switch {
		case item.Skipped():
			skipped++
		case item.Result.Measured():
			measured++
		default:
			notVisible++
		}
	}
	return measured, notVisible, skipped
}

// Values returns the legacy scalar of every item, 0 for skipped files.
func (r *BatchReport) Values() []float64 {
	values := make([]float64, len(r.Items))
	for i, item := range r.Items {
		if item.Result != nil {
			values[i] = item.Result.Value()
		}
	}
	return values
}

// AnalyzeDir analyzes every image file of dir in sorted name order.
// Only a failure to list the directory is returned as an error; files that
// cannot be analyzed are recorded as skipped items.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string) (*BatchReport, error) {
	paths, err := imaging.ListImages(dir)
	if err != nil {
		return nil, err
	}
	report := a.AnalyzeFiles(ctx, paths)
	report.Dir = dir
	return report, nil
}

// AnalyzeFiles analyzes paths on up to Batch.Workers goroutines. Items are
// reported in the order of paths regardless of completion order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) *BatchReport {
	start := time.Now()
	items := make([]BatchItem, len(paths))

	workers := a.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			items[i] = a.analyzeItem(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{Items: items, Elapsed: time.Since(start)}
	measured, notVisible, skipped := report.Counts()
	logger.WithField("files", len(paths)).
		WithField("workers", workers).
		WithField("measured", measured).
		WithField("not_visible", notVisible).
		WithField("skipped", skipped).
		WithField("elapsed", report.Elapsed.String()).
		Info("batch complete")
	return report
}

func (a *Analyzer) analyzeItem(ctx context.Context, path string) BatchItem {
	item := BatchItem{Path: path}
	res, err := a.AnalyzeFile(ctx, path)
	if err != nil {
		item.Err = err
		item.Reason = apperrors.TypeOf(err)
		item.Error = err.Error()
		logger.WithError(err).WithField("path", path).Warn("image skipped")
		return item
	}
	item.Result = res
	return item
}
