package mesh

import "github.com/lensinv/lensinv/grid"

// Build constructs a fresh Mesh for the current trial mass model. It is
// stateless: adaptive meshes follow the traced grid, so every
// likelihood evaluation rebuilds from scratch and nothing is cached
// across calls.
//
// Inputs per kind:
//
//   - Rectangular: only the traced grid (its extent sizes the mesh).
//   - *Magnification: seeds must hold the ray-traced positions of a
//     coarse seed grid (see grid.SparseFromMask for the image-plane
//     half of that contract).
//   - *Brightness: weights must hold one clustering weight per image
//     pixel of the traced grid (see WeightsFromAdapt); centres are
//     placed by deterministic weighted clustering of the traced pixel
//     positions.
//
// Degenerate tessellation input (too few distinct seeds, collinear
// seeds) fails with an error wrapping ErrMeshConstruction; the caller
// converts this into a rejected model evaluation.
func Build(cfg Config, traced *grid.Grid2D, seeds [][2]float64, weights []float64) (*Mesh, error) {
	if traced == nil || traced.Len() == 0 {
		return nil, ErrBadConfig
	}
	switch cfg.Kind {
	case Rectangular:
		yMin, yMax, xMin, xMax := traced.Extent()

		return buildRectangular(yMin, yMax, xMin, xMax, cfg.Shape)

	case DelaunayMagnification, VoronoiMagnification:
		if len(seeds) == 0 {
			return nil, ErrTooFewPoints
		}

		return buildTessellated(cfg.Kind, seeds)

	case DelaunayBrightness, VoronoiBrightness:
		centres, err := WeightedSeeds(traced.BinnedCoords(), weights, cfg.Pixels)
		if err != nil {
			return nil, err
		}

		return buildTessellated(cfg.Kind, centres)

	default:
		return nil, ErrBadConfig
	}
}
