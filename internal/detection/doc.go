// Package detection locates the droplet boundary and analyzes the connected
// regions of a cropped droplet image.
//
// # Circle Localization
//
// Locate denoises the raster, builds a Canny edge map with a large smoothing
// scale so only the dominant boundary survives, and runs a circular Hough
// transform over a bounded radius range. The strongest peak is the droplet.
// The crop around it is clipped symmetrically so the droplet center stays
// at the crop center.
//
// # Region Analysis
//
// MultiOtsu, Digitize, LabelLevels and DescribeRegions reduce an image to
// three intensity levels, label 4-connected components of equal level and
// measure how hollow each component is (area versus hole-filled area).
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
package detection
