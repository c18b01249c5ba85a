package grid

import "math"

// SparseFromMask returns the scaled centres of a uniformly decimated
// subset of the mask's unmasked pixels, targeting roughly targetN
// points. These are the image-plane seed positions that, once ray
// traced, concentrate adaptive meshes toward high-magnification regions
// (traced seeds pile up where the lens magnifies).
//
// The decimation stride is deterministic, so repeated calls return the
// identical point set.
//
// Complexity: O(rows×cols).
func SparseFromMask(m *Mask2D, targetN int) ([][2]float64, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyMask
	}
	if targetN < 1 {
		return nil, ErrShapeMismatch
	}
	stride := int(math.Round(math.Sqrt(float64(m.Len()) / float64(targetN))))
	if stride < 1 {
		stride = 1
	}
	var out [][2]float64
	shape := m.Shape()
	for r := 0; r < shape[0]; r += stride {
		for c := 0; c < shape[1]; c += stride {
			if m.IsMasked(r, c) {
				continue
			}
			y, x := m.Centre(r, c)
			out = append(out, [2]float64{y, x})
		}
	}
	if len(out) == 0 {
		return nil, ErrFullyMasked
	}

	return out, nil
}
