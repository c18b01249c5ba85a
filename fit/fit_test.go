package fit

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lensinv/lensinv/grid"
	"github.com/lensinv/lensinv/mapping"
	"github.com/lensinv/lensinv/mesh"
	"github.com/lensinv/lensinv/regularization"
)

// deltaKernel returns a 3×3 identity PSF.
func deltaKernel(t *testing.T) *mapping.Kernel {
	t.Helper()
	k, err := mapping.Delta([2]int{3, 3})
	require.NoError(t, err)

	return k
}

// constantDeflections returns one (dy, dx) vector per grid coordinate.
func constantDeflections(g *grid.Grid2D, dy, dx float64) [][2]float64 {
	out := make([][2]float64, g.Len())
	for i := range out {
		out[i] = [2]float64{dy, dx}
	}

	return out
}

// TestNewDataset_Validation covers the setup sentinels.
func TestNewDataset_Validation(t *testing.T) {
	mask, err := grid.Unmasked([2]int{4, 4}, [2]float64{1, 1})
	require.NoError(t, err)
	k := deltaKernel(t)
	good := make([]float64, mask.Len())
	noise := make([]float64, mask.Len())
	for i := range noise {
		noise[i] = 1
	}

	cases := []struct {
		name   string
		data   []float64
		noise  []float64
		kernel *mapping.Kernel
		sub    int
	}{
		{"nil kernel", good, noise, nil, 1},
		{"short data", good[:3], noise, k, 1},
		{"short noise", good, noise[:3], k, 1},
		{"zero noise entry", good, append([]float64{0}, noise[1:]...), k, 1},
		{"bad sub size", good, noise, k, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDataset(mask, tc.data, tc.noise, tc.kernel, tc.sub)
			require.ErrorIs(t, err, ErrBadDataset)
		})
	}

	ds, err := NewDataset(mask, good, noise, k, 2)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Grid().Sub())
	require.Equal(t, mask.Len(), len(ds.Data()))
}

// TestRun_NoiselessRoundTrip simulates a smooth source through a known
// deflection field and fits it back with a fine mesh and near-zero
// regularization: residuals vanish and flux is conserved.
func TestRun_NoiselessRoundTrip(t *testing.T) {
	mask, err := grid.Unmasked([2]int{20, 20}, [2]float64{0.1, 0.1})
	require.NoError(t, err)
	g, err := grid.FromMask(mask, 1)
	require.NoError(t, err)
	traced, err := g.Traced(constantDeflections(g, 0.3, -0.2))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.Rectangular, Shape: [2]int{10, 10}}
	cfg.Regularization = regularization.Config{Kind: regularization.Constant, Coefficient: 1e-8}

	// Simulate the data through the same forward operator the fit will
	// build: a smooth positive source sampled at the mesh centres.
	msh, err := mesh.Build(cfg.Mesh, traced, nil, nil)
	require.NoError(t, err)
	m, err := mapping.Build(msh, traced, cfg.Mapping)
	require.NoError(t, err)
	kernel := deltaKernel(t)
	blurred, err := mapping.Blur(m, kernel, mask)
	require.NoError(t, err)

	truth := make([]float64, msh.Len())
	total := 0.0
	for j := range truth {
		y, x := msh.Centre(j)
		truth[j] = math.Exp(-(y*y + x*x) / 0.5)
		total += truth[j]
	}
	data, err := blurred.MulVec(truth)
	require.NoError(t, err)
	noise := make([]float64, len(data))
	for i := range noise {
		noise[i] = 1e-4
	}

	ds, err := NewDataset(mask, data, noise, kernel, 1)
	require.NoError(t, err)
	res, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)
	require.False(t, res.Rejected)

	rec := res.Reconstruction
	require.Less(t, rec.ChiSquared, 1e-6, "noiseless data must be fit exactly")
	require.InDelta(t, total, rec.TotalFlux(), 1e-6, "source flux conserved")
	for i, v := range rec.Flux {
		require.InDelta(t, truth[i], v, 1e-6, "flux %d", i)
	}
}

// TestRun_RejectsDegenerateMesh: a one-row mask traces to collinear
// seeds, which cannot tessellate; the evaluation is rejected, not
// failed, and the rejection is logged.
func TestRun_RejectsDegenerateMesh(t *testing.T) {
	masked := [][]bool{
		{true, true, true, true, true, true, true, true, true},
		{false, false, false, false, false, false, false, false, false},
		{true, true, true, true, true, true, true, true, true},
	}
	mask, err := grid.NewMask2D(masked, [2]float64{1, 1})
	require.NoError(t, err)

	data := make([]float64, mask.Len())
	noise := make([]float64, mask.Len())
	for i := range noise {
		data[i] = 1
		noise[i] = 0.1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.DelaunayMagnification, Pixels: 9}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res, err := Run(ds, traced, cfg, logger)
	require.NoError(t, err, "rejection must not surface as an error")
	require.True(t, res.Rejected)
	require.True(t, math.IsInf(res.LogEvidence, -1))
	require.ErrorIs(t, res.Cause, mesh.ErrMeshConstruction)
	require.Contains(t, buf.String(), "rejected")
	require.Nil(t, res.SourceFlux())
}

// TestRun_RejectsBadCoefficient: a non-positive trial coefficient is a
// model-dependent failure, converted to a rejected sample.
func TestRun_RejectsBadCoefficient(t *testing.T) {
	mask, err := grid.Unmasked([2]int{8, 8}, [2]float64{1, 1})
	require.NoError(t, err)
	data := make([]float64, mask.Len())
	noise := make([]float64, mask.Len())
	for i := range noise {
		noise[i] = 1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.Rectangular, Shape: [2]int{4, 4}}
	cfg.Regularization = regularization.Config{Kind: regularization.Constant, Coefficient: 0}

	res, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)
	require.True(t, res.Rejected)
	require.ErrorIs(t, res.Cause, regularization.ErrRegularizationConfig)
}

// TestRun_MissingAdaptIsSetupError: brightness-adaptive configurations
// without an adapt image are configuration mistakes, not rejections.
func TestRun_MissingAdaptIsSetupError(t *testing.T) {
	mask, err := grid.Unmasked([2]int{8, 8}, [2]float64{1, 1})
	require.NoError(t, err)
	data := make([]float64, mask.Len())
	noise := make([]float64, mask.Len())
	for i := range noise {
		noise[i] = 1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.DelaunayBrightness, Pixels: 10, WeightFloor: 0.05, WeightPower: 1}

	res, err := Run(ds, traced, cfg, nil)
	require.ErrorIs(t, err, ErrMissingAdapt)
	require.Nil(t, res)
}

// TestRun_Idempotent: the full brightness-adaptive pipeline (weighted
// seeding, Voronoi assignment, adaptive regularization, non-negative
// solve) is deterministic end to end.
func TestRun_Idempotent(t *testing.T) {
	mask, err := grid.Circular([2]int{16, 16}, [2]float64{0.1, 0.1}, 0.7)
	require.NoError(t, err)
	n := mask.Len()
	data := make([]float64, n)
	noise := make([]float64, n)
	adapt := make([]float64, n)
	for i := 0; i < n; i++ {
		row, col := mask.NativePixel(i)
		y, x := mask.Centre(row, col)
		data[i] = 2 * math.Exp(-(y*y+x*x)/0.1)
		adapt[i] = data[i]
		noise[i] = 0.1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0.05, 0.02))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.VoronoiBrightness, Pixels: 15, WeightFloor: 0.05, WeightPower: 1}
	cfg.Regularization = regularization.Config{
		Kind:             regularization.AdaptiveBrightness,
		InnerCoefficient: 0.1,
		OuterCoefficient: 10,
		SignalScale:      1,
	}
	cfg.Adapt = adapt

	first, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)
	require.False(t, first.Rejected)
	second, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)

	require.Equal(t, first.LogEvidence, second.LogEvidence)
	require.Equal(t, first.SourceFlux(), second.SourceFlux())
}

// TestRun_UnconstrainedPixelsStayFinite: a rectangular mesh spanning a
// circular mask's bounding box has corner cells no image pixel maps to.
// Their flux must come out finite and non-negative, driven purely by
// regularization.
func TestRun_UnconstrainedPixelsStayFinite(t *testing.T) {
	mask, err := grid.Circular([2]int{12, 12}, [2]float64{0.1, 0.1}, 0.55)
	require.NoError(t, err)
	n := mask.Len()
	data := make([]float64, n)
	noise := make([]float64, n)
	for i := 0; i < n; i++ {
		row, col := mask.NativePixel(i)
		y, x := mask.Centre(row, col)
		data[i] = 1 + math.Exp(-(y*y+x*x)/0.05)
		noise[i] = 0.1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.Rectangular, Shape: [2]int{8, 8}}
	cfg.Regularization = regularization.Config{Kind: regularization.Constant, Coefficient: 1}

	res, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)
	require.False(t, res.Rejected)

	// Verify the scenario actually has unconstrained mesh pixels.
	colSums := make([]float64, res.Mesh.Len())
	rows, _ := res.Operator.Dims()
	for i := 0; i < rows; i++ {
		cols, vals := res.Operator.Row(i)
		for p, j := range cols {
			colSums[j] += vals[p]
		}
	}
	unconstrained := 0
	for _, s := range colSums {
		if s == 0 {
			unconstrained++
		}
	}
	require.Greater(t, unconstrained, 0, "fixture must contain empty mesh cells")

	for i, v := range res.SourceFlux() {
		require.False(t, math.IsNaN(v), "flux %d is NaN", i)
		require.False(t, math.IsInf(v, 0), "flux %d is Inf", i)
		require.GreaterOrEqual(t, v, 0.0, "flux %d", i)
	}
	require.False(t, math.IsNaN(res.LogEvidence))
	require.False(t, math.IsInf(res.LogEvidence, 0))
}

// TestRun_EvidenceSweepOnNoise fits pure noise on a 100×100 masked grid
// with a 20×20 mesh across a coefficient sweep from 0.1 to 10: every
// evidence is finite and the strongest smoothing wins.
func TestRun_EvidenceSweepOnNoise(t *testing.T) {
	if testing.Short() {
		t.Skip("large inversion sweep")
	}
	mask, err := grid.Circular([2]int{100, 100}, [2]float64{0.1, 0.1}, 4.5)
	require.NoError(t, err)
	n := mask.Len()
	rng := rand.New(rand.NewSource(7))
	data := make([]float64, n)
	noise := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i] = rng.NormFloat64()
		noise[i] = 1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	coefficients := []float64{0.1, 1, 10}
	evidences := make([]float64, len(coefficients))
	for i, coeff := range coefficients {
		cfg := DefaultConfig()
		cfg.Mesh = mesh.Config{Kind: mesh.Rectangular, Shape: [2]int{20, 20}}
		cfg.Regularization = regularization.Config{Kind: regularization.Constant, Coefficient: coeff}

		res, err := Run(ds, traced, cfg, nil)
		require.NoError(t, err)
		require.False(t, res.Rejected, "coefficient %v", coeff)
		require.False(t, math.IsNaN(res.LogEvidence), "coefficient %v", coeff)
		evidences[i] = res.LogEvidence
	}
	require.Greater(t, evidences[2], evidences[0],
		"noise-only data: evidence must favour strong smoothing (%v)", evidences)
}

// TestRun_StackedLinearProfile solves the mesh together with a flat
// pre-blurred profile block and checks both blocks are reported.
func TestRun_StackedLinearProfile(t *testing.T) {
	mask, err := grid.Unmasked([2]int{10, 10}, [2]float64{0.1, 0.1})
	require.NoError(t, err)
	n := mask.Len()
	data := make([]float64, n)
	noise := make([]float64, n)
	profile := make([]float64, n)
	for i := 0; i < n; i++ {
		row, col := mask.NativePixel(i)
		y, x := mask.Centre(row, col)
		data[i] = 0.5 + math.Exp(-(y*y+x*x)/0.05)
		noise[i] = 0.05
		profile[i] = 1
	}
	ds, err := NewDataset(mask, data, noise, deltaKernel(t), 1)
	require.NoError(t, err)
	traced, err := ds.Grid().Traced(constantDeflections(ds.Grid(), 0, 0))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Mesh = mesh.Config{Kind: mesh.Rectangular, Shape: [2]int{5, 5}}
	cfg.LinearProfiles = [][]float64{profile}

	res, err := Run(ds, traced, cfg, nil)
	require.NoError(t, err)
	require.False(t, res.Rejected)

	rec := res.Reconstruction
	require.Len(t, rec.Offsets, 3)
	require.Len(t, rec.FluxOf(0), res.Mesh.Len())
	require.Len(t, rec.FluxOf(1), 1)
	require.Len(t, res.SourceFlux(), res.Mesh.Len())
}
