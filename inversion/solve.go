package inversion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solve runs the complete linear inversion for one likelihood
// evaluation: stack the operators, assemble the normal equations,
// solve non-negatively and derive the reconstruction, its residual
// maps and the Bayesian log-evidence.
//
// data and noise are slim vectors over the unmasked image pixels;
// every operator's mapping block must share that row space.
//
// Errors wrapping ErrInversion mark the trial model as unphysical or
// degenerate; the caller rejects the sample and the enclosing
// non-linear search continues.
func Solve(ops []LinearOperator, data, noise []float64, opts Options) (*Reconstruction, error) {
	m, h, offsets, err := Stack(ops)
	if err != nil {
		return nil, err
	}
	a, b, err := NormalEquations(m, h, data, noise)
	if err != nil {
		return nil, err
	}

	flux, err := SolveNonNegative(a, b, opts)
	if err != nil {
		return nil, err
	}

	model, err := m.MulVec(flux)
	if err != nil {
		return nil, err
	}

	r := &Reconstruction{
		Flux:                flux,
		Offsets:             offsets,
		ModelImage:          model,
		Residuals:           make([]float64, len(data)),
		NormalizedResiduals: make([]float64, len(data)),
		ChiSquaredMap:       make([]float64, len(data)),
	}
	for i := range data {
		res := data[i] - model[i]
		norm := res / noise[i]
		r.Residuals[i] = res
		r.NormalizedResiduals[i] = norm
		r.ChiSquaredMap[i] = norm * norm
		r.ChiSquared += norm * norm
		r.NoiseNormalization += math.Log(2 * math.Pi * noise[i] * noise[i])
	}

	fv := mat.NewVecDense(len(flux), flux)
	var hf mat.VecDense
	hf.MulVec(h, fv)
	r.RegularizationTerm = mat.Dot(fv, &hf)

	r.LogDetCurvatureReg, err = logDet(a)
	if err != nil {
		return nil, err
	}
	r.LogDetRegularization, err = logDet(h)
	if err != nil {
		return nil, err
	}

	r.LogEvidence = -0.5 * (r.ChiSquared +
		r.RegularizationTerm +
		r.LogDetCurvatureReg -
		r.LogDetRegularization +
		r.NoiseNormalization)

	return r, nil
}

// logDet returns log det of a symmetric positive-definite matrix via
// Cholesky, or ErrSingularSystem when the factorization fails.
func logDet(s *mat.SymDense) (float64, error) {
	var chol mat.Cholesky
	if !chol.Factorize(s) {
		return 0, ErrSingularSystem
	}
	d := chol.LogDet()
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, ErrSingularSystem
	}

	return d, nil
}
