package mesh

import "math"

// WeightsFromAdapt converts an adapt image (expected source structure,
// one value per image pixel) into clustering weights: values are
// min-max normalized, floored at WeightFloor of the peak, and raised to
// WeightPower. Higher weight draws more mesh centres.
//
// A flat adapt image yields uniform weights, reducing the brightness
// kinds to magnification-like behaviour.
//
// Complexity: O(n).
func WeightsFromAdapt(adapt []float64, floor, power float64) []float64 {
	out := make([]float64, len(adapt))
	if len(adapt) == 0 {
		return out
	}
	lo, hi := adapt[0], adapt[0]
	for _, v := range adapt[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range adapt {
		w := 1.0
		if span > 0 {
			w = (v - lo) / span
		}
		w += floor
		if power != 1 {
			w = math.Pow(w, power)
		}
		out[i] = w
	}

	return out
}

// WeightedSeeds selects k centres among the candidate points,
// concentrating them where weights are large. Selection is a greedy
// weighted farthest-point pass (first seed at the maximum weight,
// each next seed maximizing weight × squared distance to the chosen
// set) followed by a fixed number of weighted Lloyd refinements.
//
// The procedure is fully deterministic: ties break toward the lower
// candidate index, and no randomness is involved, so identical inputs
// give identical seeds.
//
// Complexity: O(k×n) time per pass, O(n) memory.
func WeightedSeeds(points [][2]float64, weights []float64, k int) ([][2]float64, error) {
	n := len(points)
	if k < 3 || n == 0 || len(weights) != n {
		return nil, ErrBadConfig
	}
	if k > n {
		k = n
	}

	// Greedy weighted farthest-point initialization.
	best := 0
	for i := 1; i < n; i++ {
		if weights[i] > weights[best] {
			best = i
		}
	}
	seeds := make([][2]float64, 0, k)
	seeds = append(seeds, points[best])
	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = dist2(points[i], seeds[0])
	}
	for len(seeds) < k {
		best = 0
		bestScore := -1.0
		for i := 0; i < n; i++ {
			score := weights[i] * minDist[i]
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		s := points[best]
		seeds = append(seeds, s)
		for i := range minDist {
			if d := dist2(points[i], s); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	// Weighted Lloyd refinement: move each seed to the weighted centroid
	// of the candidates nearest to it. Empty cells keep their position.
	const lloydPasses = 5
	sumY := make([]float64, k)
	sumX := make([]float64, k)
	sumW := make([]float64, k)
	for pass := 0; pass < lloydPasses; pass++ {
		for i := range sumY {
			sumY[i], sumX[i], sumW[i] = 0, 0, 0
		}
		for i, p := range points {
			nearest := 0
			nd := dist2(p, seeds[0])
			for j := 1; j < k; j++ {
				if d := dist2(p, seeds[j]); d < nd {
					nd = d
					nearest = j
				}
			}
			w := weights[i]
			sumY[nearest] += w * p[0]
			sumX[nearest] += w * p[1]
			sumW[nearest] += w
		}
		for j := 0; j < k; j++ {
			if sumW[j] > 0 {
				seeds[j] = [2]float64{sumY[j] / sumW[j], sumX[j] / sumW[j]}
			}
		}
	}

	return seeds, nil
}

// dist2 returns the squared Euclidean distance between two (y, x) points.
func dist2(a, b [2]float64) float64 {
	dy, dx := a[0]-b[0], a[1]-b[1]

	return dy*dy + dx*dx
}
