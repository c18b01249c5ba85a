// Package lensinv is a pixelized source-reconstruction engine for strong
// gravitational lensing: it rebuilds the unknown light of a background
// galaxy from lensed imaging data by solving a regularized, non-negative
// linear inversion on an irregular source-plane mesh.
//
// 🔭 What is lensinv?
//
//	A pure-numeric library implementing the hot path of a lens-model
//	likelihood evaluation:
//		• grid/           — masks, dual slim/native image grids, sub-sampling, ray-traced grids
//		• mesh/           — rectangular, Delaunay and Voronoi source-plane meshes with adjacency
//		• mapping/        — sparse image→source mapping operators and PSF blurring
//		• regularization/ — constant, split and brightness-adaptive smoothness priors
//		• inversion/      — non-negative least-squares solve and Bayesian log-evidence
//		• fit/            — one-call pipeline with rejected-sample error policy
//
// ✨ Why choose lensinv?
//
//   - Deterministic — identical inputs reproduce reconstructions bit for bit
//   - Honest failures — degenerate meshes and singular systems are typed
//     rejections, never crashes of the enclosing model search
//   - Pure Go numerics on gonum — no cgo, no hidden global state
//
// Data flows strictly upward: mask + traced grid → mesh → mapping matrix →
// regularized normal equations → non-negative solve → reconstruction,
// residual maps and log-evidence. Every evaluation builds its matrices
// fresh; shared inputs (mask index tables, PSF kernel) are immutable after
// dataset setup and safe to reuse across parallel evaluations.
//
// Dive into fit/ for the single-call entry point, or examples/ for a
// runnable synthetic reconstruction.
package lensinv
