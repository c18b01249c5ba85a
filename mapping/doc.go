// Package mapping builds the sparse linear operator connecting
// source-plane mesh pixels to image-plane pixels: entry (i, j) is the
// fractional contribution of mesh pixel j to the flux observed in
// unmasked image pixel i.
//
// What:
//
//   - Build assigns every traced (sub-)coordinate to mesh pixels:
//     nearest-bin lookup for rectangular meshes, nearest-centre kd-tree
//     queries for Voronoi meshes, and barycentric interpolation over the
//     enclosing Delaunay triangle (optional, on by default) for Delaunay
//     meshes. Sub-pixels are binned back to one row per image pixel.
//   - Kernel is an odd-dimension, sum-normalized PSF; Blur convolves
//     every matrix column with it in native image space, producing the
//     operator the linear inversion actually uses.
//   - ConvolveFFT blurs dense native images via 2D FFT, for forward
//     simulation and diagnostics.
//
// Invariants:
//
//   - Every unblurred row sums to exactly 1: each sub-pixel lands
//     somewhere, with weights that partition its flux.
//   - All weights are non-negative: interpolation weights are clamped
//     and renormalized rather than extrapolated, preserving the
//     positivity of the downstream solve.
//   - A traced point outside the mesh hull falls back to its nearest
//     centre (or edge cell); mapping never fails on geometry.
//
// Complexity:
//
//   - Build: O(P·S²·log n) for P image pixels at sub-size S over n mesh
//     pixels (kd-tree queries dominate).
//   - Blur: O(nnz·kh·kw) over the matrix non-zeros and kernel taps.
//
// Errors:
//
//   - ErrMapping: malformed mesh reaching the builder (reserved; the
//     nearest-fallback policy means geometry alone cannot fail).
//   - ErrBadKernel: even kernel dimensions or non-positive kernel sum.
//   - ErrShapeMismatch: inconsistent operand sizes.
package mapping
