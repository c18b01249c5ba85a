package regularization

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lensinv/lensinv/mapping"
)

// diagonalJitter keeps H invertible for the evidence log-determinant
// while perturbing the penalty far below noise level.
const diagonalJitter = 1e-8

// Build assembles the regularization matrix for the given scheme over
// the mesh adjacency. signals is required only for AdaptiveBrightness
// (see PixelSignals); pass nil otherwise.
//
// Complexity: O(n² storage, n+E assembly).
func Build(cfg Config, neighbors [][]int, signals []float64) (*mat.SymDense, error) {
	weights, err := Weights(cfg, len(neighbors), signals)
	if err != nil {
		return nil, err
	}

	return Assemble(weights, neighbors)
}

// Weights expands the scheme configuration into one coefficient per
// mesh pixel.
func Weights(cfg Config, n int, signals []float64) ([]float64, error) {
	out := make([]float64, n)
	switch cfg.Kind {
	case Constant:
		if cfg.Coefficient <= 0 {
			return nil, ErrNonPositiveCoefficient
		}
		for i := range out {
			out[i] = cfg.Coefficient
		}

	case ConstantSplit:
		if cfg.InnerCoefficient <= 0 || cfg.OuterCoefficient <= 0 {
			return nil, ErrNonPositiveCoefficient
		}
		if len(cfg.Inner) != n {
			return nil, ErrBadSubset
		}
		for i := range out {
			if cfg.Inner[i] {
				out[i] = cfg.InnerCoefficient
			} else {
				out[i] = cfg.OuterCoefficient
			}
		}

	case AdaptiveBrightness:
		if cfg.InnerCoefficient <= 0 || cfg.OuterCoefficient <= 0 {
			return nil, ErrNonPositiveCoefficient
		}
		if len(signals) != n {
			return nil, ErrBadSignals
		}
		for i, s := range signals {
			out[i] = cfg.InnerCoefficient*s + cfg.OuterCoefficient*(1-s)
		}

	default:
		return nil, ErrRegularizationConfig
	}

	return out, nil
}

// Assemble builds H from per-pixel coefficients: each undirected
// neighbour pair {i, j} contributes c = (w_i+w_j)/2 positively to both
// diagonals and negatively to both off-diagonals, so
// fᵗHf = Σ_pairs c·(f_i−f_j)². A small diagonal jitter keeps the
// matrix invertible.
func Assemble(weights []float64, neighbors [][]int) (*mat.SymDense, error) {
	n := len(weights)
	if len(neighbors) != n {
		return nil, ErrMalformedAdjacency
	}
	h := mat.NewSymDense(n, nil)
	for i := range neighbors {
		h.SetSym(i, i, diagonalJitter)
	}
	for i, adj := range neighbors {
		for _, j := range adj {
			if j < 0 || j >= n {
				return nil, ErrMalformedAdjacency
			}
			if j <= i {
				// Each undirected pair is assembled once, from its
				// lower-index endpoint.
				continue
			}
			c := (weights[i] + weights[j]) / 2
			h.SetSym(i, i, h.At(i, i)+c)
			h.SetSym(j, j, h.At(j, j)+c)
			h.SetSym(i, j, h.At(i, j)-c)
		}
	}

	return h, nil
}

// PixelSignals maps an adapt image (one value per unmasked image
// pixel) through the mapping matrix onto the mesh: each mesh pixel
// receives the weight-averaged adapt flux of the image pixels mapping
// to it, floored at zero, normalized by the peak and raised to scale.
// Mesh pixels nothing maps to get signal 0 (maximum smoothing; they
// carry no data).
//
// Complexity: O(nnz).
func PixelSignals(m *mapping.Matrix, adapt []float64, scale float64) ([]float64, error) {
	rows, cols := m.Dims()
	if len(adapt) != rows {
		return nil, ErrBadSignals
	}
	signal := make([]float64, cols)
	weight := make([]float64, cols)
	for i := 0; i < rows; i++ {
		cIdx, vals := m.Row(i)
		for p, j := range cIdx {
			signal[j] += vals[p] * adapt[i]
			weight[j] += vals[p]
		}
	}
	peak := 0.0
	for j := range signal {
		if weight[j] > 0 {
			signal[j] /= weight[j]
		}
		if signal[j] < 0 {
			signal[j] = 0
		}
		if signal[j] > peak {
			peak = signal[j]
		}
	}
	if peak > 0 {
		for j := range signal {
			signal[j] /= peak
			if scale != 1 {
				signal[j] = math.Pow(signal[j], scale)
			}
		}
	}

	return signal, nil
}
