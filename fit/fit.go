package fit

import (
	"errors"
	"io"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lensinv/lensinv/grid"
	"github.com/lensinv/lensinv/inversion"
	"github.com/lensinv/lensinv/mapping"
	"github.com/lensinv/lensinv/mesh"
	"github.com/lensinv/lensinv/regularization"
)

// Run executes one likelihood evaluation: build the source-plane mesh
// over the traced grid, map and blur, regularize, solve non-negatively
// and price the solution with the log-evidence.
//
// traced is the dataset's image grid deflected by the trial mass model
// (Dataset.Grid().Traced(deflections)). logger may be nil.
//
// Model-dependent failures return a rejected Result with a nil error;
// setup mistakes return a non-nil error.
//
// Complexity: dominated by the inversion, O(n³) worst case over n mesh
// pixels.
func Run(ds *Dataset, traced *grid.Grid2D, cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if ds == nil || traced == nil || traced.Pixels() != len(ds.data) || traced.Sub() != ds.grid.Sub() {
		return nil, ErrBadDataset
	}

	seeds, weights, err := meshInputs(ds, traced, cfg)
	if err != nil {
		return nil, err
	}
	msh, err := mesh.Build(cfg.Mesh, traced, seeds, weights)
	if err != nil {
		return classify(logger, "mesh", err)
	}

	m, err := mapping.Build(msh, traced, cfg.Mapping)
	if err != nil {
		return classify(logger, "mapping", err)
	}
	blurred, err := mapping.Blur(m, ds.kernel, ds.mask)
	if err != nil {
		return classify(logger, "blur", err)
	}

	h, err := buildRegularization(cfg, m, msh)
	if err != nil {
		return classify(logger, "regularization", err)
	}

	ops := []inversion.LinearOperator{{Mapping: blurred, Regularization: h}}
	if len(cfg.LinearProfiles) > 0 {
		for _, p := range cfg.LinearProfiles {
			if len(p) != len(ds.data) {
				return nil, ErrBadDataset
			}
		}
		profiles, err := mapping.FromColumns(cfg.LinearProfiles...)
		if err != nil {
			return nil, ErrBadDataset
		}
		ops = append(ops, inversion.LinearOperator{Mapping: profiles})
	}

	rec, err := inversion.Solve(ops, ds.data, ds.noise, cfg.Solver)
	if err != nil {
		return classify(logger, "inversion", err)
	}

	logger.Debug("model evaluation accepted",
		"mesh_kind", cfg.Mesh.Kind.String(),
		"mesh_pixels", msh.Len(),
		"chi_squared", rec.ChiSquared,
		"log_evidence", rec.LogEvidence,
	)

	return &Result{
		LogEvidence:    rec.LogEvidence,
		Mesh:           msh,
		Operator:       blurred,
		Reconstruction: rec,
	}, nil
}

// meshInputs derives the seed positions and clustering weights the mesh
// kind needs from the traced grid and the adapt image.
func meshInputs(ds *Dataset, traced *grid.Grid2D, cfg Config) (seeds [][2]float64, weights []float64, err error) {
	switch cfg.Mesh.Kind {
	case mesh.DelaunayMagnification, mesh.VoronoiMagnification:
		return magnificationSeeds(traced, cfg.Mesh.Pixels), nil, nil

	case mesh.DelaunayBrightness, mesh.VoronoiBrightness:
		if len(cfg.Adapt) != len(ds.data) {
			return nil, nil, ErrMissingAdapt
		}

		return nil, mesh.WeightsFromAdapt(cfg.Adapt, cfg.Mesh.WeightFloor, cfg.Mesh.WeightPower), nil

	default:
		return nil, nil, nil
	}
}

// magnificationSeeds decimates the traced grid's binned pixel positions
// with a uniform native-space stride targeting roughly target points.
// Traced seeds pile up where the lens magnifies, which is exactly where
// the adaptive meshes should spend resolution.
func magnificationSeeds(traced *grid.Grid2D, target int) [][2]float64 {
	m := traced.Mask()
	if target < 1 {
		target = 1
	}
	stride := int(math.Round(math.Sqrt(float64(m.Len()) / float64(target))))
	if stride < 1 {
		stride = 1
	}
	binned := traced.BinnedCoords()
	shape := m.Shape()
	var out [][2]float64
	for r := 0; r < shape[0]; r += stride {
		for c := 0; c < shape[1]; c += stride {
			if m.IsMasked(r, c) {
				continue
			}
			out = append(out, binned[m.SlimIndex(r, c)])
		}
	}

	return out
}

// buildRegularization assembles H for the configured scheme, computing
// pixel signals from the unblurred mapping when the scheme adapts to
// brightness.
func buildRegularization(cfg Config, m *mapping.Matrix, msh *mesh.Mesh) (h *mat.SymDense, err error) {
	var signals []float64
	if cfg.Regularization.Kind == regularization.AdaptiveBrightness {
		if len(cfg.Adapt) == 0 {
			return nil, ErrMissingAdapt
		}
		signals, err = regularization.PixelSignals(m, cfg.Adapt, cfg.Regularization.SignalScale)
		if err != nil {
			return nil, err
		}
	}

	return regularization.Build(cfg.Regularization, msh.Neighbors(), signals)
}

// classify converts the four model-dependent error kinds into a
// rejected sample; anything else propagates as a setup error.
func classify(logger *slog.Logger, stage string, err error) (*Result, error) {
	switch {
	case errors.Is(err, mesh.ErrMeshConstruction),
		errors.Is(err, mapping.ErrMapping),
		errors.Is(err, regularization.ErrRegularizationConfig),
		errors.Is(err, inversion.ErrInversion):
		logger.Debug("model evaluation rejected", "stage", stage, "cause", err)

		return &Result{Rejected: true, Cause: err, LogEvidence: math.Inf(-1)}, nil

	default:
		return nil, err
	}
}
