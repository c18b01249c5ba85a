package mapping

// Concat joins matrices with a shared row space side by side: the
// result has the same image-pixel rows and the column blocks of the
// inputs in order. Used to solve several linear objects (meshes,
// linear light profiles) in one system.
//
// Complexity: O(total nnz).
func Concat(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, ErrShapeMismatch
	}
	rows := ms[0].rows
	cols := 0
	nnz := 0
	for _, m := range ms {
		if m == nil || m.rows != rows {
			return nil, ErrShapeMismatch
		}
		cols += m.cols
		nnz += len(m.vals)
	}

	out := &Matrix{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1),
		colIdx: make([]int, 0, nnz),
		vals:   make([]float64, 0, nnz),
	}
	for i := 0; i < rows; i++ {
		offset := 0
		for _, m := range ms {
			lo, hi := m.rowPtr[i], m.rowPtr[i+1]
			for p := lo; p < hi; p++ {
				out.colIdx = append(out.colIdx, m.colIdx[p]+offset)
				out.vals = append(out.vals, m.vals[p])
			}
			offset += m.cols
		}
		out.rowPtr[i+1] = len(out.colIdx)
	}

	return out, nil
}

// FromColumns builds a dense-column operator from explicit column
// vectors (each a full slim image). This is how linear light profiles,
// whose amplitude is solved for rather than sampled, enter the
// inversion: one pre-blurred unit-amplitude image per column.
func FromColumns(columns ...[]float64) (*Matrix, error) {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return nil, ErrShapeMismatch
	}
	rows := len(columns[0])
	for _, c := range columns {
		if len(c) != rows {
			return nil, ErrShapeMismatch
		}
	}
	b := newMatrixBuilder(rows, len(columns))
	for j, c := range columns {
		for i, v := range c {
			b.add(i, j, v)
		}
	}

	return b.build(), nil
}
