package histogram

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanOfUniformSamples(t *testing.T) {
	h := New(50)
	for i := 1; i <= 100; i++ {
		h.Push(float64(i), 1)
	}
	assert.InDelta(t, 50.5, h.Mean(), 0.5)
}

func TestQuantileMedianApproximatesTrueMedian(t *testing.T) {
	h := New(64)
	for i := 1; i <= 1000; i++ {
		h.Push(float64(i), 1)
	}
	median, err := h.Quantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 500, median, 30)
}

func TestQuantileExtremesMatchMinMax(t *testing.T) {
	h := New(200)
	for i := 1; i <= 50; i++ {
		h.Push(float64(i), 1)
	}
	lo, err := h.Quantile(0)
	require.NoError(t, err)
	hi, err := h.Quantile(1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lo, 1.0)
	assert.InDelta(t, 50.0, hi, 1.0)
}

func TestQuantileRejectsOutOfRange(t *testing.T) {
	h := New(10)
	h.Push(1, 1)
	_, err := h.Quantile(1.5)
	assert.Error(t, err)
}

func TestPushSkipsNaN(t *testing.T) {
	h := New(10)
	h.Push(math.NaN(), 1)
	assert.Equal(t, 0.0, h.Count())
}

func TestCompressStaysWithinBudget(t *testing.T) {
	h := New(20)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		h.Push(r.Float64()*1000, 1)
	}
	assert.LessOrEqual(t, len(h.bins), 20)
	assert.InDelta(t, 5000, h.Count(), 1e-6)
}

func TestMergeCombinesCounts(t *testing.T) {
	a := New(50)
	b := New(50)
	for i := 0; i < 100; i++ {
		a.Push(float64(i), 1)
	}
	for i := 100; i < 200; i++ {
		b.Push(float64(i), 1)
	}
	a.Merge(b)
	assert.InDelta(t, 200, a.Count(), 1e-9)
	assert.InDelta(t, 99.5, a.Mean(), 2)
}
