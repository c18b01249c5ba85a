// Package mesh discretizes the source plane into the pixel grids a
// lensed source is reconstructed on: a uniform rectangular grid, or an
// irregular Delaunay/Voronoi tessellation seeded by ray-traced points.
//
// What:
//
//   - Mesh holds pixel centres plus neighbour adjacency (two pixels are
//     neighbours iff they share a tessellation edge; 4-connectivity for
//     the rectangular grid).
//   - Build is a stateless constructor invoked fresh for every trial
//     mass model: adaptive meshes depend on the traced grid, so nothing
//     is cached across calls.
//   - Magnification-adaptive kinds take their centres directly from a
//     coarse ray-traced seed grid: traced seeds bunch up where the lens
//     magnifies, concentrating resolution exactly there.
//   - Brightness-adaptive kinds cluster the traced pixel positions with
//     deterministic weighted seeding, drawing the weights from an
//     "adapt" image of expected source structure.
//
// Why:
//
//   - A source reconstructed on too coarse a mesh under-fits; too fine a
//     mesh wastes pixels that regularization must then pay for. Adaptive
//     meshes place resolution where the data demands it, and the
//     Bayesian evidence arbitrates between mesh choices.
//
// Edge policy:
//
//   - Mesh pixels that end up far from any traced data are retained, not
//     culled. They still participate in regularization, and the evidence
//     penalty they attract is the mechanism that discourages
//     over-complex meshes.
//
// Complexity:
//
//   - Rectangular build: O(rows×cols).
//   - Delaunay/Voronoi build: O(n²) incremental Bowyer–Watson over n
//     seed centres (n is at most a few thousand).
//
// Errors:
//
//   - ErrMeshConstruction: degenerate tessellation input; wrapped by
//     ErrTooFewPoints and ErrCollinearPoints. Callers treat it as a
//     rejected model evaluation, never a crash.
//   - ErrBadConfig: invalid mesh configuration (caught at setup).
package mesh
