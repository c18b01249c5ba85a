// Package grid provides the masked image-plane geometry every other part
// of the inversion engine is built on: boolean pixel masks, uniform
// (y, x) coordinate grids over the unmasked pixels, sub-pixel sampling,
// and ray-traced copies of those grids in the source plane.
//
// What:
//
//   - Mask2D marks which native image pixels take part in a fit and owns
//     the slim↔native index correspondence used by every downstream
//     structure. It is built once per dataset and never mutated.
//   - Grid2D is an ordered sequence of (y, x) arcsecond coordinates in
//     "slim" layout (unmasked entries only). A grid built with sub-size S
//     carries S×S sub-coordinates per pixel, binned back down by
//     BinAverage when a per-pixel quantity is needed.
//   - Traced produces the source-plane image of a grid by subtracting a
//     deflection-angle field. Traced grids are ephemeral: one per trial
//     mass model.
//
// Why:
//
//   - The slim layout keeps the linear algebra dense over exactly the
//     pixels that constrain the model, while the native layout is needed
//     for PSF convolution and visualization.
//   - Sub-sampling trades compute for accuracy where lensed images curve
//     strongly within a pixel.
//
// Conventions:
//
//   - Coordinates are (y, x) in arcseconds, origin at the image centre,
//     y increasing upward (decreasing row index), x increasing rightward.
//   - Native arrays are indexed [row][col]; slim indices run row-major
//     over unmasked pixels; sub-coordinates run row-major within a pixel.
//
// Errors:
//
//   - ErrEmptyMask: mask has no rows or no columns.
//   - ErrFullyMasked: mask excludes every pixel.
//   - ErrNonRectangular: mask rows have differing lengths.
//   - ErrBadPixelScale: non-positive pixel scale.
//   - ErrBadSubSize: sub-grid size below 1.
//   - ErrShapeMismatch: companion array length inconsistent with the grid.
package grid
