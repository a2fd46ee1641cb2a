// Package imaging provides the raster primitives of the ring analyzer.
//
// Images are decoded with the standard and golang.org/x/image decoders,
// reduced to luminance, and held as gonum *mat.Dense rasters: one matrix row
// per image row, one column per image column, intensities on the [0, 255]
// scale. On top of that representation the package implements median
// filtering, Canny edge detection, bilinear line profiles, bounds-checked
// cropping and annotated overlays.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel), the matrix column
//   - Y: vertical position (0 = topmost pixel), the matrix row
//   - For regions, Min is inclusive and Max exclusive, as in image.Rectangle
//
// Note that gonum indexes matrices as At(row, col), that is At(y, x).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and never modify their input rasters.
package imaging
