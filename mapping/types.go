package mapping

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for mapping construction.
var (
	// ErrMapping indicates a malformed mesh reaching the builder (missing
	// triangulation on a Delaunay mesh, empty centre set). The
	// nearest-fallback assignment policy means well-formed geometry can
	// never fail, so this sentinel is reserved for structural defects.
	ErrMapping = errors.New("mapping: malformed mesh structure")
	// ErrBadKernel indicates a PSF kernel without odd dimensions or with
	// a non-positive sum.
	ErrBadKernel = errors.New("mapping: PSF kernel must have odd dimensions and a positive sum")
	// ErrShapeMismatch indicates inconsistent operand dimensions.
	ErrShapeMismatch = errors.New("mapping: operand shape mismatch")
)

// Options tunes the mapping build.
type Options struct {
	// Interpolate enables barycentric weights over the enclosing
	// Delaunay triangle instead of whole-pixel nearest-centre
	// assignment. Ignored for rectangular and Voronoi meshes.
	Interpolate bool
}

// DefaultOptions enables Delaunay interpolation.
func DefaultOptions() Options {
	return Options{Interpolate: true}
}

// Matrix is a compressed sparse row operator of shape
// (image pixels × mesh pixels). Immutable once built.
type Matrix struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	vals       []float64
}

// Dims returns (image pixels, mesh pixels).
func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored non-zeros.
func (m *Matrix) NNZ() int { return len(m.vals) }

// Row returns the column indices and values of row i. Read-only by
// contract. Complexity: O(1).
func (m *Matrix) Row(i int) (cols []int, vals []float64) {
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]

	return m.colIdx[lo:hi], m.vals[lo:hi]
}

// MulVec returns M·x (mesh fluxes → model image). Complexity: O(nnz).
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, ErrShapeMismatch
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var s float64
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			s += m.vals[p] * x[m.colIdx[p]]
		}
		out[i] = s
	}

	return out, nil
}

// MulTransVec returns Mᵗ·x (image vector → mesh space).
// Complexity: O(nnz).
func (m *Matrix) MulTransVec(x []float64) ([]float64, error) {
	if len(x) != m.rows {
		return nil, ErrShapeMismatch
	}
	out := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			out[m.colIdx[p]] += m.vals[p] * xi
		}
	}

	return out, nil
}

// Dense exports the operator as a gonum dense matrix.
func (m *Matrix) Dense() *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	for i := 0; i < m.rows; i++ {
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			out.Set(i, m.colIdx[p], m.vals[p])
		}
	}

	return out
}

// matrixBuilder accumulates (row, col) → weight contributions and
// compresses them into a Matrix with deterministically ordered rows.
type matrixBuilder struct {
	rows, cols int
	acc        []map[int]float64
}

func newMatrixBuilder(rows, cols int) *matrixBuilder {
	b := &matrixBuilder{rows: rows, cols: cols, acc: make([]map[int]float64, rows)}
	for i := range b.acc {
		b.acc[i] = make(map[int]float64, 4)
	}

	return b
}

func (b *matrixBuilder) add(row, col int, w float64) {
	if w == 0 {
		return
	}
	b.acc[row][col] += w
}

func (b *matrixBuilder) build() *Matrix {
	m := &Matrix{
		rows:   b.rows,
		cols:   b.cols,
		rowPtr: make([]int, b.rows+1),
	}
	for i, row := range b.acc {
		cols := make([]int, 0, len(row))
		for c := range row {
			cols = append(cols, c)
		}
		// Ascending column order keeps output bit-reproducible.
		sort.Ints(cols)
		for _, c := range cols {
			m.colIdx = append(m.colIdx, c)
			m.vals = append(m.vals, row[c])
		}
		m.rowPtr[i+1] = len(m.colIdx)
	}

	return m
}
