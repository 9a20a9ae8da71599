package gapfill

import (
	"math"
	"testing"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGrid(t *testing.T, nx, ny int, fill func(i, j int) float64) *grid.Store2D[float64] {
	t.Helper()
	xs := make([]float64, nx)
	for i := range xs {
		xs[i] = float64(i)
	}
	ys := make([]float64, ny)
	for j := range ys {
		ys[j] = float64(j)
	}
	x, err := axis.New(xs)
	require.NoError(t, err)
	y, err := axis.New(ys)
	require.NoError(t, err)
	values := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			values[i*ny+j] = fill(i, j)
		}
	}
	g, err := grid.BuildStore2D(x, y, values)
	require.NoError(t, err)
	return g
}

func TestPoissonFillsSingleHoleNearConstantField(t *testing.T) {
	g := buildGrid(t, 5, 5, func(i, j int) float64 { return 7.0 })
	g.Values()[2*5+2] = math.NaN()

	iters, residual, err := Poisson(g, PoissonConfig{MaxIterations: 500})
	require.NoError(t, err)
	assert.Greater(t, iters, 0)
	assert.Less(t, residual, 1e-3)
	assert.InDelta(t, 7.0, g.Value(2, 2), 1e-2)
}

func TestPoissonLeavesDefinedCellsUntouched(t *testing.T) {
	g := buildGrid(t, 5, 5, func(i, j int) float64 { return float64(i + j) })
	g.Values()[2*5+2] = math.NaN()

	_, _, err := Poisson(g, PoissonConfig{MaxIterations: 200})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, g.Value(0, 0), 1e-12)
	assert.InDelta(t, 8.0, g.Value(4, 4), 1e-12)
}

func TestPoissonRejectsInvalidRelaxation(t *testing.T) {
	g := buildGrid(t, 5, 5, func(i, j int) float64 { return 1.0 })
	_, _, err := Poisson(g, PoissonConfig{Relaxation: 3})
	assert.Error(t, err)
}

func TestPoissonRejectsTooSmallGrid(t *testing.T) {
	g := buildGrid(t, 2, 2, func(i, j int) float64 { return 1.0 })
	_, _, err := Poisson(g, PoissonConfig{})
	assert.Error(t, err)
}

func TestLOESSFillsHoleFromNeighbors(t *testing.T) {
	g := buildGrid(t, 7, 7, func(i, j int) float64 { return 3.0 })
	g.Values()[3*7+3] = math.NaN()

	err := LOESS(g, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, g.Value(3, 3), 1e-9)
}

func TestLOESSLeavesCellWithoutNeighborsUntouched(t *testing.T) {
	g := buildGrid(t, 3, 3, func(i, j int) float64 { return math.NaN() })
	err := LOESS(g, 1, 1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g.Value(1, 1)))
}

func TestLOESSRejectsNonPositiveWindow(t *testing.T) {
	g := buildGrid(t, 5, 5, func(i, j int) float64 { return 1.0 })
	err := LOESS(g, 0, 1)
	assert.Error(t, err)
}

func TestLOESSMirrorsNeighborsAtEdge(t *testing.T) {
	// A hole at the corner has no interior neighbors on two sides; Sym
	// mirroring must still draw them from the reflected in-bounds cells
	// rather than leaving the corner untouched.
	g := buildGrid(t, 5, 5, func(i, j int) float64 { return 5.0 })
	g.Values()[0] = math.NaN() // (0, 0)

	err := LOESS(g, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, g.Value(0, 0), 1e-9)
}

func TestMirrorIndexReflectsOutOfRange(t *testing.T) {
	i, ok := mirrorIndex(-1, 5)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = mirrorIndex(5, 5)
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	i, ok = mirrorIndex(2, 5)
	assert.True(t, ok)
	assert.Equal(t, 2, i)
}
