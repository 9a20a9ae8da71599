package interp

import (
	"testing"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearField4D(t *testing.T, n int) *grid.Store4D[float64] {
	t.Helper()
	mk := func() *axis.Axis {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(i)
		}
		a, err := axis.New(vals)
		require.NoError(t, err)
		return a
	}
	x, y, z, u := mk(), mk(), mk(), mk()

	values := make([]float64, n*n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					values[((i*n+j)*n+k)*n+l] = float64(i) + 2*float64(j) + 3*float64(k) + 4*float64(l)
				}
			}
		}
	}
	g, err := grid.BuildStore4D(x, y, z, u, values)
	require.NoError(t, err)
	return g
}

func TestQuadrivariateLinearField(t *testing.T) {
	g := linearField4D(t, 4)
	v, err := Quadrivariate(g, []float64{1.5}, []float64{2.0}, []float64{0.5}, []float64{2.25}, QuadrivariateBoundary(config.Expand))
	require.NoError(t, err)
	assert.InDelta(t, 1.5+2*2.0+3*0.5+4*2.25, v[0], 1e-7)
}

func TestQuadrivariateExactAtNode(t *testing.T) {
	g := linearField4D(t, 4)
	v, err := Quadrivariate(g, []float64{1}, []float64{2}, []float64{3}, []float64{0}, QuadrivariateBoundary(config.Expand))
	require.NoError(t, err)
	assert.InDelta(t, 1+2*2+3*3+4*0, v[0], 1e-7)
}

func TestQuadrivariateRejectsMismatchedLengths(t *testing.T) {
	g := linearField4D(t, 4)
	_, err := Quadrivariate(g, []float64{1, 2}, []float64{1}, []float64{1}, []float64{1}, QuadrivariateBoundary(config.Expand))
	assert.Error(t, err)
}
