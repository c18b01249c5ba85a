// Package regularization builds the smoothness prior of the source
// reconstruction: a symmetric positive-semi-definite matrix H whose
// quadratic form fᵗHf equals the summed, coefficient-weighted squared
// flux differences between neighbouring mesh pixels.
//
// What:
//
//   - Constant applies one global coefficient to every neighbour pair.
//   - ConstantSplit applies separate coefficients inside and outside a
//     caller-supplied pixel subset.
//   - AdaptiveBrightness varies the coefficient per pixel, derived from
//     an "adapt" image of expected source structure: pixels carrying
//     real signal are regularized gently, empty outskirts strongly.
//
// Why:
//
//   - A single global coefficient over-smooths cuspy source centres
//     while under-correlating flat, noise-dominated exteriors; no
//     intermediate value fixes both. Per-pixel coefficients resolve the
//     tension, and the Bayesian evidence rewards the freed-up
//     complexity budget.
//
// Construction:
//
//   - Each undirected neighbour pair {i, j} contributes its pair
//     coefficient c to H[i][i], H[j][j] (positive) and H[i][j], H[j][i]
//     (negative), so diagonals equal the negative sum of their
//     off-diagonal row and the all-ones vector is penalized only at the
//     mesh boundary. For per-pixel coefficients the pair value is the
//     mean of the two pixel coefficients.
//   - A 1e-8 diagonal jitter keeps H invertible for the evidence's
//     log-determinant term without measurably changing the penalty.
//
// The adapt image is an explicit input threaded in by the caller (the
// previous fit phase's reconstruction), never ambient state.
//
// Errors:
//
//   - ErrRegularizationConfig: non-positive coefficient, missing or
//     mis-sized subset/signals, malformed adjacency. Coefficient bounds
//     belong upstream in the sampler priors; the checks here catch what
//     slips through.
//
// Complexity: O(n + E) assembly over n mesh pixels and E neighbour pairs
// (the matrix itself is O(n²) memory, dense symmetric storage).
package regularization
