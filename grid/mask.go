package grid

// NewMask2D constructs a Mask2D from a rectangular boolean array where
// true marks an excluded pixel. The array is deep-copied and the
// slim↔native index tables are computed once here; they are immutable
// for the lifetime of the mask.
//
// Returns ErrEmptyMask, ErrNonRectangular, ErrBadPixelScale or
// ErrFullyMasked on invalid input.
//
// Complexity: O(rows×cols) time and memory.
func NewMask2D(masked [][]bool, pixelScales [2]float64) (*Mask2D, error) {
	if len(masked) == 0 || len(masked[0]) == 0 {
		return nil, ErrEmptyMask
	}
	if pixelScales[0] <= 0 || pixelScales[1] <= 0 {
		return nil, ErrBadPixelScale
	}
	rows, cols := len(masked), len(masked[0])
	cells := make([][]bool, rows)
	for r, row := range masked {
		if len(row) != cols {
			return nil, ErrNonRectangular
		}
		cells[r] = make([]bool, cols)
		copy(cells[r], row)
	}

	m := &Mask2D{
		rows:        rows,
		cols:        cols,
		pixelScales: pixelScales,
		masked:      cells,
		natToSlim:   make([]int, rows*cols),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if cells[r][c] {
				m.natToSlim[r*cols+c] = -1
				continue
			}
			m.natToSlim[r*cols+c] = len(m.slimToNat)
			m.slimToNat = append(m.slimToNat, [2]int{r, c})
		}
	}
	if len(m.slimToNat) == 0 {
		return nil, ErrFullyMasked
	}

	return m, nil
}

// Circular builds a mask keeping only pixels whose scaled centre lies
// within radius arcseconds of the image centre. Every lens dataset in
// practice is fitted inside such an aperture.
//
// Complexity: O(rows×cols).
func Circular(shape [2]int, pixelScales [2]float64, radius float64) (*Mask2D, error) {
	if shape[0] <= 0 || shape[1] <= 0 {
		return nil, ErrEmptyMask
	}
	if pixelScales[0] <= 0 || pixelScales[1] <= 0 {
		return nil, ErrBadPixelScale
	}
	if radius <= 0 {
		return nil, ErrBadRadius
	}
	cy := (float64(shape[0]) - 1) / 2
	cx := (float64(shape[1]) - 1) / 2
	masked := make([][]bool, shape[0])
	for r := range masked {
		masked[r] = make([]bool, shape[1])
		for c := range masked[r] {
			dy := (cy - float64(r)) * pixelScales[0]
			dx := (float64(c) - cx) * pixelScales[1]
			masked[r][c] = dy*dy+dx*dx > radius*radius
		}
	}

	return NewMask2D(masked, pixelScales)
}

// Unmasked builds a mask that keeps every pixel of the given shape.
func Unmasked(shape [2]int, pixelScales [2]float64) (*Mask2D, error) {
	if shape[0] <= 0 || shape[1] <= 0 {
		return nil, ErrEmptyMask
	}
	masked := make([][]bool, shape[0])
	for r := range masked {
		masked[r] = make([]bool, shape[1])
	}

	return NewMask2D(masked, pixelScales)
}

// Shape returns the native (rows, cols) dimensions.
func (m *Mask2D) Shape() [2]int { return [2]int{m.rows, m.cols} }

// PixelScales returns the (y, x) arcsecond scale of one pixel.
func (m *Mask2D) PixelScales() [2]float64 { return m.pixelScales }

// Len returns the number of unmasked pixels (the slim length).
func (m *Mask2D) Len() int { return len(m.slimToNat) }

// IsMasked reports whether native pixel (row, col) is excluded.
func (m *Mask2D) IsMasked(row, col int) bool { return m.masked[row][col] }

// InBounds reports whether (row, col) lies within the native shape.
func (m *Mask2D) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// SlimIndex returns the slim index of native pixel (row, col), or -1 if
// the pixel is masked.
//
// Complexity: O(1).
func (m *Mask2D) SlimIndex(row, col int) int {
	return m.natToSlim[row*m.cols+col]
}

// NativePixel returns the (row, col) of the given slim index.
//
// Complexity: O(1).
func (m *Mask2D) NativePixel(slim int) (row, col int) {
	p := m.slimToNat[slim]

	return p[0], p[1]
}

// Centre returns the scaled (y, x) centre of native pixel (row, col),
// with the coordinate origin at the image centre.
func (m *Mask2D) Centre(row, col int) (y, x float64) {
	cy := (float64(m.rows) - 1) / 2
	cx := (float64(m.cols) - 1) / 2
	y = (cy - float64(row)) * m.pixelScales[0]
	x = (float64(col) - cx) * m.pixelScales[1]

	return y, x
}

// ScatterNative expands a slim per-pixel vector into a native 2D array,
// with masked entries zeroed. Returns ErrShapeMismatch if values does
// not have one entry per unmasked pixel.
//
// Complexity: O(rows×cols).
func (m *Mask2D) ScatterNative(values []float64) ([][]float64, error) {
	if len(values) != m.Len() {
		return nil, ErrShapeMismatch
	}
	out := make([][]float64, m.rows)
	for r := range out {
		out[r] = make([]float64, m.cols)
	}
	for s, p := range m.slimToNat {
		out[p[0]][p[1]] = values[s]
	}

	return out, nil
}

// GatherSlim reduces a native 2D array to the slim vector of its
// unmasked entries. Returns ErrShapeMismatch on a shape mismatch.
//
// Complexity: O(rows×cols).
func (m *Mask2D) GatherSlim(native [][]float64) ([]float64, error) {
	if len(native) != m.rows {
		return nil, ErrShapeMismatch
	}
	for _, row := range native {
		if len(row) != m.cols {
			return nil, ErrShapeMismatch
		}
	}
	out := make([]float64, m.Len())
	for s, p := range m.slimToNat {
		out[s] = native[p[0]][p[1]]
	}

	return out, nil
}
