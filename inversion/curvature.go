package inversion

import (
	"gonum.org/v1/gonum/mat"

	"github.com/lensinv/lensinv/mapping"
)

// NormalEquations assembles the curvature system of the regularized
// least-squares problem:
//
//	A = Mᵗ N⁻¹ M + H,   b = Mᵗ N⁻¹ d,   N = diag(noise²).
//
// The data term is accumulated sparsely row by row (each image pixel
// couples only the mesh pixels it maps to), so assembly is O(nnz·k)
// with k the mean entries per row, not O(rows·n²). Pass h == nil for a
// pure data system (no regularization block).
func NormalEquations(m *mapping.Matrix, h *mat.SymDense, data, noise []float64) (*mat.SymDense, []float64, error) {
	rows, cols := m.Dims()
	if len(data) != rows || len(noise) != rows {
		return nil, nil, ErrShapeMismatch
	}
	if h != nil {
		if hn, _ := h.Dims(); hn != cols {
			return nil, nil, ErrShapeMismatch
		}
	}

	a := mat.NewSymDense(cols, nil)
	b := make([]float64, cols)
	for i := 0; i < rows; i++ {
		sigma := noise[i]
		if sigma <= 0 {
			return nil, nil, ErrBadNoise
		}
		invVar := 1 / (sigma * sigma)
		cIdx, vals := m.Row(i)
		di := data[i] * invVar
		for p, j := range cIdx {
			vp := vals[p]
			b[j] += vp * di
			wp := vp * invVar
			for q := p; q < len(cIdx); q++ {
				k := cIdx[q]
				a.SetSym(j, k, a.At(j, k)+wp*vals[q])
			}
		}
	}
	if h != nil {
		for j := 0; j < cols; j++ {
			for k := j; k < cols; k++ {
				if v := h.At(j, k); v != 0 {
					a.SetSym(j, k, a.At(j, k)+v)
				}
			}
		}
	}

	return a, b, nil
}

// Stack concatenates the mapping blocks of several linear operators
// side by side and assembles their regularization blocks into one
// block-diagonal matrix (zero block for unregularized operators).
// Returns the combined operator, the combined H, and the column offset
// of each block.
func Stack(ops []LinearOperator) (*mapping.Matrix, *mat.SymDense, []int, error) {
	if len(ops) == 0 {
		return nil, nil, nil, ErrNoOperators
	}
	blocks := make([]*mapping.Matrix, len(ops))
	offsets := make([]int, len(ops)+1)
	for i, op := range ops {
		if op.Mapping == nil {
			return nil, nil, nil, ErrShapeMismatch
		}
		blocks[i] = op.Mapping
		_, c := op.Mapping.Dims()
		if op.Regularization != nil {
			if hn, _ := op.Regularization.Dims(); hn != c {
				return nil, nil, nil, ErrShapeMismatch
			}
		}
		offsets[i+1] = offsets[i] + c
	}
	combined, err := mapping.Concat(blocks...)
	if err != nil {
		return nil, nil, nil, ErrShapeMismatch
	}

	total := offsets[len(ops)]
	h := mat.NewSymDense(total, nil)
	for i, op := range ops {
		if op.Regularization == nil {
			// Unregularized blocks still need an invertible H for the
			// evidence's log-determinant: the same jitter the
			// regularization builder applies, a constant offset across
			// samples of equal dimension.
			for j := offsets[i]; j < offsets[i+1]; j++ {
				h.SetSym(j, j, 1e-8)
			}
			continue
		}
		off := offsets[i]
		n, _ := op.Regularization.Dims()
		for j := 0; j < n; j++ {
			for k := j; k < n; k++ {
				if v := op.Regularization.At(j, k); v != 0 {
					h.SetSym(off+j, off+k, v)
				}
			}
		}
	}

	return combined, h, offsets, nil
}
