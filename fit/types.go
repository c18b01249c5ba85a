package fit

import (
	"errors"

	"github.com/lensinv/lensinv/grid"
	"github.com/lensinv/lensinv/inversion"
	"github.com/lensinv/lensinv/mapping"
	"github.com/lensinv/lensinv/mesh"
	"github.com/lensinv/lensinv/regularization"
)

// Sentinel errors for setup mistakes. These are fatal configuration
// errors, never converted into rejected samples.
var (
	// ErrBadDataset indicates data, noise, mask or kernel that do not
	// form a consistent dataset.
	ErrBadDataset = errors.New("fit: invalid dataset")
	// ErrMissingAdapt indicates a brightness-adaptive mesh or
	// regularization configuration without a matching adapt image.
	ErrMissingAdapt = errors.New("fit: adapt image required for brightness-adaptive configuration")
)

// Dataset is the immutable observed side of a fit: slim data and noise
// vectors over the mask's unmasked pixels, the PSF kernel and the
// image-plane grid the trial models deflect.
type Dataset struct {
	mask   *grid.Mask2D
	grid   *grid.Grid2D
	kernel *mapping.Kernel
	data   []float64
	noise  []float64
}

// NewDataset validates and assembles a Dataset. data and noise are slim
// vectors of length mask.Len(); noise entries must be positive; sub is
// the grid sub-sampling size. The slices are not copied; callers must
// not mutate them afterwards.
func NewDataset(mask *grid.Mask2D, data, noise []float64, kernel *mapping.Kernel, sub int) (*Dataset, error) {
	if mask == nil || kernel == nil {
		return nil, ErrBadDataset
	}
	if len(data) != mask.Len() || len(noise) != mask.Len() {
		return nil, ErrBadDataset
	}
	for _, s := range noise {
		if s <= 0 {
			return nil, ErrBadDataset
		}
	}
	g, err := grid.FromMask(mask, sub)
	if err != nil {
		return nil, ErrBadDataset
	}

	return &Dataset{mask: mask, grid: g, kernel: kernel, data: data, noise: noise}, nil
}

// Mask returns the dataset's mask.
func (d *Dataset) Mask() *grid.Mask2D { return d.mask }

// Grid returns the undeflected image-plane grid; trial models trace it
// with Grid2D.Traced and pass the result to Run.
func (d *Dataset) Grid() *grid.Grid2D { return d.grid }

// Kernel returns the PSF kernel.
func (d *Dataset) Kernel() *mapping.Kernel { return d.kernel }

// Data returns the slim data vector. Read-only by contract.
func (d *Dataset) Data() []float64 { return d.data }

// Noise returns the slim noise vector. Read-only by contract.
func (d *Dataset) Noise() []float64 { return d.noise }

// Config is the per-model-family fit configuration.
type Config struct {
	// Mesh selects the source-plane discretization.
	Mesh mesh.Config
	// Regularization selects the smoothing scheme and coefficients.
	Regularization regularization.Config
	// Adapt is an optional adapt image (one value per unmasked image
	// pixel) steering brightness-adaptive meshes and the
	// AdaptiveBrightness regularization scheme.
	Adapt []float64
	// LinearProfiles holds optional pre-blurred unit-amplitude profile
	// images solved alongside the mesh as an unregularized block.
	LinearProfiles [][]float64
	// Mapping tunes point-to-mesh assignment.
	Mapping mapping.Options
	// Solver tunes the non-negative solve.
	Solver inversion.Options
}

// DefaultConfig returns a rectangular-mesh, constant-regularization
// configuration with the per-package defaults.
func DefaultConfig() Config {
	return Config{
		Mesh:           mesh.DefaultConfig(),
		Regularization: regularization.DefaultConfig(),
		Mapping:        mapping.DefaultOptions(),
		Solver:         inversion.DefaultOptions(),
	}
}

// Result is the outcome of one likelihood evaluation.
type Result struct {
	// Rejected marks a model-dependent failure; LogEvidence is -Inf and
	// Cause holds the classified error. The remaining fields are nil.
	Rejected bool
	// Cause is the rejection cause, nil on success.
	Cause error

	// LogEvidence is the Bayesian evidence of the linear sub-problem.
	LogEvidence float64
	// Mesh is the source-plane mesh the model was reconstructed on.
	Mesh *mesh.Mesh
	// Operator is the blurred mapping operator of the mesh block.
	Operator *mapping.Matrix
	// Reconstruction carries the flux vector, model image, residual maps
	// and the evidence decomposition.
	Reconstruction *inversion.Reconstruction
}

// SourceFlux returns the reconstructed flux of the mesh block, nil for
// rejected results. Read-only by contract.
func (r *Result) SourceFlux() []float64 {
	if r.Rejected {
		return nil
	}

	return r.Reconstruction.FluxOf(0)
}

// Centres returns the mesh pixel centres for visualization, nil for
// rejected results. Read-only by contract.
func (r *Result) Centres() [][2]float64 {
	if r.Rejected {
		return nil
	}

	return r.Mesh.Centres()
}

// Neighbors returns the mesh adjacency for visualization, nil for
// rejected results. Read-only by contract.
func (r *Result) Neighbors() [][]int {
	if r.Rejected {
		return nil
	}

	return r.Mesh.Neighbors()
}
