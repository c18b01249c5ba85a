// Package inversion solves the regularized linear system at the heart
// of a pixelized lens fit and prices the solution with the Bayesian
// evidence.
//
// What:
//
//   - NormalEquations assembles the curvature system
//     A = Mᵗ N⁻¹ M + H,  b = Mᵗ N⁻¹ d
//     from the (blurred) mapping operator M, the regularization
//     operator H, the per-pixel noise map (N = diag(noise²)) and the
//     observed slim data vector d.
//   - SolveNonNegative finds the flux vector f ≥ 0 minimizing the
//     regularized chi-squared, using an active-set non-negative
//     least-squares algorithm (FNNLS) with Cholesky sub-solves. A
//     generic unconstrained solve followed by clipping would bias the
//     result and ring positive/negative; the constraint is enforced
//     inside the solver.
//   - Solve runs the full pipeline over one or more stacked linear
//     operators (pixelized meshes plus unregularized linear light
//     profiles) and derives the reconstruction: model image, residual /
//     normalized-residual / chi-squared maps, and the log-evidence
//
//     -0.5·(χ² + fᵗHf + log det A − log det H + Σ log 2πσ²)
//
//     whose determinant terms are the Occam penalty arbitrating between
//     mesh resolutions and regularization strengths.
//
// Failure semantics:
//
//   - A singular or ill-conditioned system (disconnected mesh regions,
//     vanishing regularization with unconstrained pixels) fails with an
//     error wrapping ErrInversion, as does a non-negative solve that
//     exhausts its iteration budget. Callers convert these into
//     rejected model samples; they are never fatal to the enclosing
//     fit.
//
// Concurrency: every call builds its own matrices; nothing is shared or
// cached, so concurrent evaluations need no locking.
//
// Complexity: O(nnz·k) curvature assembly (k = mean row occupancy),
// O(n³) worst-case for the active-set solve over n mesh pixels, in
// practice far lower since only data-constrained pixels join the
// passive set.
package inversion
