package mapping

import (
	"math"

	"github.com/lensinv/lensinv/grid"
)

// Kernel is a 2D point-spread-function kernel with odd dimensions,
// normalized so its taps sum to 1. Immutable once built; a dataset's
// kernel is shared read-only across all evaluations.
type Kernel struct {
	rows, cols int
	w          [][]float64
}

// NewKernel validates and normalizes a PSF kernel. The input is
// deep-copied. Returns ErrBadKernel for even dimensions, ragged rows or
// a non-positive sum.
func NewKernel(values [][]float64) (*Kernel, error) {
	rows := len(values)
	if rows == 0 || rows%2 == 0 {
		return nil, ErrBadKernel
	}
	cols := len(values[0])
	if cols == 0 || cols%2 == 0 {
		return nil, ErrBadKernel
	}
	sum := 0.0
	w := make([][]float64, rows)
	for r, row := range values {
		if len(row) != cols {
			return nil, ErrBadKernel
		}
		w[r] = make([]float64, cols)
		copy(w[r], row)
		for _, v := range row {
			sum += v
		}
	}
	if sum <= 0 {
		return nil, ErrBadKernel
	}
	for r := range w {
		for c := range w[r] {
			w[r][c] /= sum
		}
	}

	return &Kernel{rows: rows, cols: cols, w: w}, nil
}

// Gaussian builds a normalized circular Gaussian kernel of the given
// odd shape, with sigma in the same scaled units as the pixel scales.
func Gaussian(shape [2]int, pixelScales [2]float64, sigma float64) (*Kernel, error) {
	if shape[0] < 1 || shape[1] < 1 || sigma <= 0 {
		return nil, ErrBadKernel
	}
	cy, cx := shape[0]/2, shape[1]/2
	values := make([][]float64, shape[0])
	for r := range values {
		values[r] = make([]float64, shape[1])
		for c := range values[r] {
			dy := float64(r-cy) * pixelScales[0]
			dx := float64(c-cx) * pixelScales[1]
			values[r][c] = math.Exp(-(dy*dy + dx*dx) / (2 * sigma * sigma))
		}
	}

	return NewKernel(values)
}

// Delta returns the identity kernel of the given odd shape.
func Delta(shape [2]int) (*Kernel, error) {
	if shape[0] < 1 || shape[0]%2 == 0 || shape[1] < 1 || shape[1]%2 == 0 {
		return nil, ErrBadKernel
	}
	values := make([][]float64, shape[0])
	for r := range values {
		values[r] = make([]float64, shape[1])
	}
	values[shape[0]/2][shape[1]/2] = 1

	return NewKernel(values)
}

// Shape returns the kernel's (rows, cols).
func (k *Kernel) Shape() [2]int { return [2]int{k.rows, k.cols} }

// At returns the normalized tap at kernel index (r, c).
func (k *Kernel) At(r, c int) float64 { return k.w[r][c] }

// Blur convolves every column of the mapping matrix with the kernel in
// native image space: flux a mesh pixel sends to image pixel q spreads
// to q's neighbourhood with the kernel taps. Flux blurred onto masked
// pixels is dropped, exactly as the instrument+mask would.
//
// The matrix columns are sparse, so direct convolution of the stored
// non-zeros beats an FFT of every column.
//
// Complexity: O(nnz·kh·kw).
func Blur(m *Matrix, k *Kernel, mask *grid.Mask2D) (*Matrix, error) {
	if m == nil || k == nil || mask == nil {
		return nil, ErrShapeMismatch
	}
	if m.rows != mask.Len() {
		return nil, ErrShapeMismatch
	}
	cy, cx := k.rows/2, k.cols/2
	b := newMatrixBuilder(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		row, col := mask.NativePixel(i)
		cols, vals := m.Row(i)
		for a := 0; a < k.rows; a++ {
			for bb := 0; bb < k.cols; bb++ {
				tap := k.w[a][bb]
				if tap == 0 {
					continue
				}
				tr, tc := row+a-cy, col+bb-cx
				if !mask.InBounds(tr, tc) || mask.IsMasked(tr, tc) {
					continue
				}
				target := mask.SlimIndex(tr, tc)
				for p, j := range cols {
					b.add(target, j, vals[p]*tap)
				}
			}
		}
	}

	return b.build(), nil
}
