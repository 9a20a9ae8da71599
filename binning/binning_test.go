package binning

import (
	"math"
	"testing"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/geodetic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallAxes(t *testing.T) (*axis.Axis, *axis.Axis) {
	t.Helper()
	x, err := axis.New([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	y, err := axis.New([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	return x, y
}

func TestPushSimpleAccumulatesMeanAndCount(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	b.Push(1, 1, 10, 1)
	b.Push(1, 1, 20, 1)
	b.Push(1, 1, 30, 1)

	assert.InDelta(t, 20.0, b.Value(Mean, 1, 1, 0), 1e-9)
	assert.InDelta(t, 3.0, b.Value(Count, 1, 1, 0), 1e-9)
	assert.True(t, b.Touched(1, 1))
	assert.False(t, b.Touched(0, 0))
}

func TestPushSkipsNaN(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	b.Push(1, 1, math.NaN(), 1)
	assert.False(t, b.Touched(1, 1))
}

func TestVarianceMatchesKnownSample(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		b.Push(0, 0, v, 1)
	}
	// population variance of this classic sample is 4.0
	assert.InDelta(t, 4.0, b.Value(Variance, 0, 0, 0), 1e-9)
}

func TestMinMaxTrackExtremes(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	for _, v := range []float64{5, 1, 9, 3} {
		b.Push(0, 0, v, 1)
	}
	assert.Equal(t, 1.0, b.Value(Min, 0, 0, 0))
	assert.Equal(t, 9.0, b.Value(Max, 0, 0, 0))
}

func TestMergeIsAssociativeWithSplitPushes(t *testing.T) {
	x, y := smallAxes(t)
	whole := New(x, y)
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for _, v := range samples {
		whole.Push(2, 2, v, 1)
	}

	partA := New(x, y)
	partB := New(x, y)
	for i, v := range samples {
		if i%2 == 0 {
			partA.Push(2, 2, v, 1)
		} else {
			partB.Push(2, 2, v, 1)
		}
	}
	require.NoError(t, partA.Merge(partB))

	assert.InDelta(t, whole.Value(Mean, 2, 2, 0), partA.Value(Mean, 2, 2, 0), 1e-9)
	assert.InDelta(t, whole.Value(Variance, 2, 2, 0), partA.Value(Variance, 2, 2, 0), 1e-9)
	assert.Equal(t, whole.Value(Count, 2, 2, 0), partA.Value(Count, 2, 2, 0))
}

func TestMergeRejectsShapeMismatch(t *testing.T) {
	x, y := smallAxes(t)
	a := New(x, y)
	smallerX, err := axis.New([]float64{0, 1, 2})
	require.NoError(t, err)
	b := New(smallerX, y)
	assert.Error(t, a.Merge(b))
}

func TestClearResetsCells(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	b.Push(1, 1, 10, 1)
	b.Clear()
	assert.False(t, b.Touched(1, 1))
	assert.True(t, math.IsNaN(b.Value(Mean, 1, 1, 0)))
}

func TestLinearModeSpreadsAcrossNeighborCells(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y, WithMode(Linear))
	b.Push(1.5, 1.5, 10, 1)

	assert.True(t, b.Touched(1, 1))
	assert.True(t, b.Touched(1, 2))
	assert.True(t, b.Touched(2, 1))
	assert.True(t, b.Touched(2, 2))
}

func TestSumOfWeightsTracksAccumulatedWeight(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	b.Push(1, 1, 10, 2)
	b.Push(1, 1, 20, 3)
	assert.InDelta(t, 5.0, b.Value(SumOfWeights, 1, 1, 0), 1e-9)
}

func TestMedianIsNaNWithoutHistogramBacking(t *testing.T) {
	x, y := smallAxes(t)
	b := New(x, y)
	b.Push(1, 1, 10, 1)
	assert.True(t, math.IsNaN(b.Value(Median, 1, 1, 0)))
}

func TestGeodeticWeightingOnlyAppliesInLinearMode(t *testing.T) {
	x, y := smallAxes(t)
	simple := New(x, y, WithGeodeticSystem(geodetic.WGS84))
	simple.Push(1, 1, 10, 1)
	// Simple mode assigns the full weight to one cell regardless of
	// WithGeodeticSystem: there is no sub-cell to distribute across.
	assert.InDelta(t, 1.0, simple.Value(SumOfWeights, 1, 1, 0), 1e-9)
}

func TestGeodeticLinearWeightingUsesSuppliedSystem(t *testing.T) {
	x, err := axis.New([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	y, err := axis.New([]float64{0, 80, 88, 89})
	require.NoError(t, err)

	plain := New(x, y, WithMode(Linear))
	plain.Push(1.5, 88.5, 10, 1)

	geo := New(x, y, WithMode(Linear), WithGeodeticSystem(geodetic.WGS84))
	geo.Push(1.5, 88.5, 10, 1)

	// Near the pole, spherical sub-cell areas shrink sharply between
	// consecutive latitude bands, so the geodetic split across corners
	// differs from the plain bilinear fractional split.
	assert.NotEqual(t, plain.Value(SumOfWeights, 1, 2, 0), geo.Value(SumOfWeights, 1, 2, 0))
}
