package interp

import (
	"math"
	"testing"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearField2D(t *testing.T, nx, ny int) *grid.Store2D[float64] {
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
			values[i*ny+j] = 2*float64(i) + 3*float64(j) + 1
		}
	}
	g, err := grid.BuildStore2D(x, y, values)
	require.NoError(t, err)
	return g
}

func TestBivariateCornerExactness(t *testing.T) {
	g := linearField2D(t, 5, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			v, err := Bivariate(g, []float64{float64(i)}, []float64{float64(j)}, WithBoundary(config.Expand))
			require.NoError(t, err)
			assert.InDelta(t, 2*float64(i)+3*float64(j)+1, v[0], 1e-10)
		}
	}
}

func TestBivariateBilinearOnLinearField(t *testing.T) {
	g := linearField2D(t, 5, 5)
	v, err := Bivariate(g, []float64{1.5}, []float64{2.25}, WithBoundary(config.Expand))
	require.NoError(t, err)
	assert.InDelta(t, 2*1.5+3*2.25+1, v[0], 1e-9)
}

func TestBivariateVectorizedMatchesSequentialWorker(t *testing.T) {
	g := linearField2D(t, 5, 5)
	xs := []float64{0.5, 1.5, 2.5, 3.0}
	ys := []float64{0.5, 1.0, 1.5, 2.0}
	parallel, err := Bivariate(g, xs, ys, WithBoundary(config.Expand), NumThreads(4))
	require.NoError(t, err)
	sequential, err := Bivariate(g, xs, ys, WithBoundary(config.Expand), NumThreads(1))
	require.NoError(t, err)
	assert.Equal(t, sequential, parallel)
}

func TestBivariateRejectsMismatchedLengths(t *testing.T) {
	g := linearField2D(t, 5, 5)
	_, err := Bivariate(g, []float64{1, 2}, []float64{1}, WithBoundary(config.Expand))
	assert.Error(t, err)
}

func TestBivariateNearestReturnsClosestSample(t *testing.T) {
	g := linearField2D(t, 5, 5)
	v, err := Bivariate(g, []float64{1.9}, []float64{2.1}, WithMethod(Nearest))
	require.NoError(t, err)
	assert.InDelta(t, 2*2+3*2+1, v[0], 1e-10)
}

func TestBivariateIDWExactAtSample(t *testing.T) {
	g := linearField2D(t, 5, 5)
	v, err := Bivariate(g, []float64{2.0}, []float64{2.0}, WithMethod(InverseDistanceWeighting), Power(2), WithBoundary(config.Expand))
	require.NoError(t, err)
	assert.InDelta(t, 2*2+3*2+1, v[0], 1e-10)
}

func TestBivariateIDWSkipsNaNCorners(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	x, err := axis.New(xs)
	require.NoError(t, err)
	y, err := axis.New(ys)
	require.NoError(t, err)
	values := []float64{1, math.NaN(), 3, 4}
	g, err := grid.BuildStore2D(x, y, values)
	require.NoError(t, err)

	v, err := Bivariate(g, []float64{0.5}, []float64{0.5}, WithMethod(InverseDistanceWeighting), WithBoundary(config.Expand))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(v[0]))
}

func TestBivariateBilinearPropagatesNaNCorner(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 1}
	x, err := axis.New(xs)
	require.NoError(t, err)
	y, err := axis.New(ys)
	require.NoError(t, err)
	values := []float64{1, math.NaN(), 3, 4}
	g, err := grid.BuildStore2D(x, y, values)
	require.NoError(t, err)

	v, err := Bivariate(g, []float64{0.5}, []float64{0.5}, WithBoundary(config.Expand))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v[0]))
}

func TestBivariateUndefOutOfDomainErrors(t *testing.T) {
	g := linearField2D(t, 5, 5)
	_, err := Bivariate(g, []float64{-1}, []float64{-1}, WithBoundary(config.Undef))
	assert.Error(t, err)
}
