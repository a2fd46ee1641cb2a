// Package ring measures the coffee-ring effect of a dried droplet.
//
// # Pipeline
//
// Every image runs through five stages, strictly in order:
//
//  1. Locate: detection.Locate finds the droplet boundary and crops a square
//     region centered on it
//  2. Validate: the region is segmented into three intensity classes; when
//     every non-background component is nearly solid the ring is not visible
//     and processing stops
//  3. Normalize: the region is inverted when needed so the ring is the
//     darkest feature
//  4. Profile: diameter lines through the region center are sampled and
//     reduced to ring minimum, interior and exterior intensities
//  5. Score: 1 - ringMin * (wExt/exterior + wInt/interior)
//
// # Results
//
// An Analyzer returns a tagged Result: either StatusMeasured with a score or
// StatusRingNotVisible. Result.Value keeps the historical convention where 0
// means "no ring". Any other failure is a typed error from internal/errors.
//
// Directories are processed by AnalyzeDir, which runs images on a bounded
// number of workers and reports them in sorted file order.
package ring
