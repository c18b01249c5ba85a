package inversion

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/lensinv/lensinv/mapping"
)

// ErrInversion is the umbrella sentinel for an unphysical or degenerate
// solution. Specific causes wrap it; callers classify with
// errors.Is(err, ErrInversion) and reject the model sample.
var ErrInversion = errors.New("inversion: unphysical or degenerate solution")

var (
	// ErrSingularSystem indicates the curvature-plus-regularization
	// matrix could not be factorized.
	ErrSingularSystem = fmt.Errorf("%w: singular curvature-plus-regularization matrix", ErrInversion)
	// ErrNoConvergence indicates the non-negative solve exhausted its
	// iteration budget.
	ErrNoConvergence = fmt.Errorf("%w: non-negative solve exceeded iteration budget", ErrInversion)
)

// Sentinel errors for malformed (non-model-dependent) input; these are
// setup mistakes, not rejections.
var (
	// ErrShapeMismatch indicates inconsistent operand dimensions.
	ErrShapeMismatch = errors.New("inversion: operand shape mismatch")
	// ErrBadNoise indicates a noise map with non-positive entries.
	ErrBadNoise = errors.New("inversion: noise map entries must be positive")
	// ErrNoOperators indicates an empty operator stack.
	ErrNoOperators = errors.New("inversion: at least one linear operator is required")
)

// Options tunes the non-negative solver.
type Options struct {
	// MaxIterations bounds the total active-set iterations. Zero means
	// 3×n + 30, which in practice converges with a wide margin.
	MaxIterations int
	// Tolerance is the relative Karush–Kuhn–Tucker tolerance deciding
	// when a candidate pixel no longer improves the fit.
	Tolerance float64
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return Options{MaxIterations: 0, Tolerance: 1e-10}
}

// LinearOperator is one simultaneously solved linear object: a mapping
// block plus its regularization block. Linear light profiles, whose
// amplitude is solved for rather than sampled, carry a nil
// Regularization and contribute a zero block.
type LinearOperator struct {
	Mapping        *mapping.Matrix
	Regularization *mat.SymDense
}

// Reconstruction is the solved source model of one likelihood
// evaluation, consumed immediately by the caller and discarded.
type Reconstruction struct {
	// Flux is the non-negative solution vector over all stacked columns.
	Flux []float64
	// Offsets marks the first column of each operator block inside
	// Flux; Offsets[len(ops)] == len(Flux).
	Offsets []int

	// ModelImage is M·f: the blurred model in slim image space.
	ModelImage []float64
	// Residuals is data − model.
	Residuals []float64
	// NormalizedResiduals is residual / noise.
	NormalizedResiduals []float64
	// ChiSquaredMap is normalized residual squared, per pixel.
	ChiSquaredMap []float64

	// ChiSquared is the summed chi-squared map.
	ChiSquared float64
	// NoiseNormalization is Σ log(2π·noise²).
	NoiseNormalization float64
	// RegularizationTerm is fᵗHf.
	RegularizationTerm float64
	// LogDetCurvatureReg is log det(Mᵗ N⁻¹ M + H).
	LogDetCurvatureReg float64
	// LogDetRegularization is log det H.
	LogDetRegularization float64
	// LogEvidence is the Bayesian evidence of the linear sub-problem.
	LogEvidence float64
}

// FluxOf returns the solution slice of operator block i. Read-only by
// contract.
func (r *Reconstruction) FluxOf(i int) []float64 {
	return r.Flux[r.Offsets[i]:r.Offsets[i+1]]
}

// TotalFlux returns the summed reconstructed source flux.
func (r *Reconstruction) TotalFlux() float64 {
	return floats.Sum(r.Flux)
}

// Magnification returns the ratio of total model-image flux to total
// reconstructed source flux, the flux amplification the lens applies
// to this source model.
func (r *Reconstruction) Magnification() float64 {
	src := r.TotalFlux()
	if src == 0 {
		return 0
	}

	return floats.Sum(r.ModelImage) / src
}
