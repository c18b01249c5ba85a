package inversion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SolveNonNegative minimizes ½fᵗAf − bᵗf subject to f ≥ 0, for A
// symmetric positive definite: the normal-equations form of
// non-negative least squares (Bro & de Jong's FNNLS variant of
// Lawson–Hanson). Pixels enter the passive set greedily by their
// Karush–Kuhn–Tucker gradient; each candidate solution comes from a
// Cholesky solve of the passive submatrix, with backtracking when a
// passive pixel would turn negative.
//
// The constraint lives inside the solver: clipping an unconstrained
// solution would bias fluxes and ring positive/negative around sharp
// features.
//
// Returns ErrSingularSystem if a passive submatrix cannot be
// factorized, ErrNoConvergence if the iteration budget runs out.
//
// Complexity: O(k³) per passive-set change for k passive pixels;
// typically only data-constrained pixels ever join.
func SolveNonNegative(a *mat.SymDense, b []float64, opts Options) ([]float64, error) {
	n, _ := a.Dims()
	if len(b) != n {
		return nil, ErrShapeMismatch
	}

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 3*n + 30
	}
	// KKT tolerance relative to the problem scale.
	scale := 0.0
	for _, v := range b {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		// b = 0: the zero vector is optimal.
		return make([]float64, n), nil
	}
	tol := opts.Tolerance * scale

	f := make([]float64, n)
	passive := make([]bool, n)
	w := make([]float64, n) // KKT gradient b − A·f
	copy(w, b)

	refreshGradient := func() {
		for i := 0; i < n; i++ {
			s := 0.0
			for j := 0; j < n; j++ {
				s += a.At(i, j) * f[j]
			}
			w[i] = b[i] - s
		}
	}

	for iter := 0; iter < maxIter; iter++ {
		// Most improving constrained pixel.
		best, bestW := -1, tol
		for i := 0; i < n; i++ {
			if !passive[i] && w[i] > bestW {
				best, bestW = i, w[i]
			}
		}
		if best < 0 {
			return f, nil // KKT conditions met
		}
		passive[best] = true

		// Inner loop: solve on the passive set, backtrack while any
		// passive flux would go negative.
		for {
			z, err := solvePassive(a, b, passive)
			if err != nil {
				return nil, err
			}
			minIdx, alpha := -1, 1.0
			for i, zi := range z {
				if !passive[i] || zi > 0 {
					continue
				}
				// Step from f toward z hits zero at f/(f−z).
				if step := f[i] / (f[i] - zi); step < alpha {
					alpha, minIdx = step, i
				}
			}
			if minIdx < 0 {
				for i := range f {
					if passive[i] {
						f[i] = z[i]
					}
				}
				break
			}
			for i := range f {
				if passive[i] {
					f[i] += alpha * (z[i] - f[i])
				}
			}
			passive[minIdx] = false
			f[minIdx] = 0
			iter++
			if iter >= maxIter {
				return nil, ErrNoConvergence
			}
		}
		refreshGradient()
	}

	// The budget ran out after the last passive-set change; the solution
	// is still optimal if no constrained pixel wants in.
	for i := 0; i < n; i++ {
		if !passive[i] && w[i] > tol {
			return nil, ErrNoConvergence
		}
	}

	return f, nil
}

// solvePassive solves A[P,P]·z[P] = b[P] by Cholesky, returning a full
// length-n vector with zeros on the active (constrained) entries.
func solvePassive(a *mat.SymDense, b []float64, passive []bool) ([]float64, error) {
	n := len(passive)
	idx := make([]int, 0, n)
	for i, p := range passive {
		if p {
			idx = append(idx, i)
		}
	}
	k := len(idx)
	sub := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	for r, i := range idx {
		rhs.SetVec(r, b[i])
		for c := r; c < k; c++ {
			sub.SetSym(r, c, a.At(i, idx[c]))
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sub) {
		return nil, ErrSingularSystem
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, rhs); err != nil {
		return nil, ErrSingularSystem
	}

	z := make([]float64, n)
	for r, i := range idx {
		z[i] = sol.AtVec(r)
	}

	return z, nil
}
