package rtree

import (
	"math"
	"testing"

	"github.com/readthedocs-assistant/pangeo-pyinterp/geodetic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridLonLat(step float64) ([]float64, []float64, []float64) {
	var lons, lats, values []float64
	for lat := -80.0; lat <= 80.0; lat += step {
		for lon := -170.0; lon <= 170.0; lon += step {
			lons = append(lons, lon)
			lats = append(lats, lat)
			values = append(values, lon+lat)
		}
	}
	return lons, lats, values
}

func TestPackAndLen(t *testing.T) {
	lons, lats, values := gridLonLat(10)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)
	assert.Equal(t, len(lons), idx.Len())
}

func TestPackRejectsLengthMismatch(t *testing.T) {
	_, err := Pack(geodetic.WGS84, []float64{0, 1}, []float64{0}, []float64{0, 1})
	assert.Error(t, err)
}

func TestInsertGrowsIndexAndIsQueryable(t *testing.T) {
	lons, lats, values := gridLonLat(10)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)
	before := idx.Len()

	require.NoError(t, idx.Insert([]float64{12.0}, []float64{34.0}, []float64{999}))
	assert.Equal(t, before+1, idx.Len())

	neighbors := idx.Query(geodetic.Haversine, 12.0, 34.0, 1, false)
	require.Len(t, neighbors, 1)
	assert.Equal(t, 999.0, neighbors[0].Value)
}

func TestInsertRejectsLengthMismatch(t *testing.T) {
	lons, lats, values := gridLonLat(10)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)
	assert.Error(t, idx.Insert([]float64{1, 2}, []float64{1}, []float64{1, 2}))
}

func TestInsertIntoEmptyIndex(t *testing.T) {
	idx, err := Pack[float64](geodetic.WGS84, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Insert([]float64{0}, []float64{0}, []float64{42}))
	assert.Equal(t, 1, idx.Len())
}

func TestQueryReturnsClosestFirst(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	neighbors := idx.Query(geodetic.Haversine, 12.0, 34.0, 5, false)
	require.Len(t, neighbors, 5)
	prev := 0.0
	for i, n := range neighbors {
		d := geodetic.Distance(geodetic.WGS84, geodetic.Haversine, 12.0, 34.0, n.Lon, n.Lat)
		if i > 0 {
			assert.GreaterOrEqual(t, d, prev)
		}
		prev = d
	}
}

func TestQueryWithinRejectsExtrapolatedTarget(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	// Far outside the populated lon/lat band: its nearest neighbors'
	// bounding box cannot contain it.
	neighbors := idx.Query(geodetic.Haversine, 0, 89, 5, true)
	assert.Nil(t, neighbors)
}

func TestQueryWithinAcceptsInteriorTarget(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	neighbors := idx.Query(geodetic.Haversine, 12.0, 34.0, 5, true)
	assert.Len(t, neighbors, 5)
}

func TestEnvelopeRejectOutsideBoundingBox(t *testing.T) {
	neighbors := []Point3{{0, 0, 0}, {1, 1, 1}}
	assert.True(t, EnvelopeReject(Point3{5, 5, 5}, neighbors))
	assert.False(t, EnvelopeReject(Point3{0.5, 0.5, 0.5}, neighbors))
}

func TestEnvelopeRejectEmptyNeighbors(t *testing.T) {
	assert.True(t, EnvelopeReject(Point3{0, 0, 0}, nil))
}

func TestQueryBallOnlyReturnsWithinRadius(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	radius := 300000.0
	points := idx.QueryBall(geodetic.Haversine, 0, 0, radius)
	for _, p := range points {
		d := geodetic.Distance(geodetic.WGS84, geodetic.Haversine, 0, 0, p.Lon, p.Lat)
		assert.LessOrEqual(t, d, radius)
	}
}

func TestIDWExactAtSamplePoint(t *testing.T) {
	lons, lats, values := gridLonLat(10)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := IDW(idx, geodetic.Haversine, []float64{lons[0]}, []float64{lats[0]}, 4, 2, false)
	require.NoError(t, err)
	assert.InDelta(t, values[0], v[0], 1e-6)
	assert.Equal(t, 4, n[0])
}

func TestIDWWithinRejectsExtrapolatedTarget(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := IDW(idx, geodetic.Haversine, []float64{0}, []float64{89}, 5, 2, true)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 0, n[0])
}

func TestIDWRejectsLengthMismatch(t *testing.T) {
	lons, lats, values := gridLonLat(10)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)
	_, _, err = IDW(idx, geodetic.Haversine, []float64{1, 2}, []float64{1}, 4, 2, false)
	assert.Error(t, err)
}

func TestRBFFitsExactlyAtTrainingPoints(t *testing.T) {
	lons := []float64{0, 1, 0, 1}
	lats := []float64{0, 0, 1, 1}
	values := []float64{1, 2, 3, 4}
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := RBF(idx, geodetic.Haversine, []float64{1}, []float64{1}, 4, Multiquadric, 1000, false)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v[0], 1e-3)
	assert.Equal(t, 4, n[0])
}

func TestRBFWithinRejectsExtrapolatedTarget(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := RBF(idx, geodetic.Haversine, []float64{0}, []float64{89}, 5, Multiquadric, 1000, true)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 0, n[0])
}

func TestWindowAveragesPointsWithinRadius(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := Window(idx, geodetic.Haversine, []float64{0}, []float64{0}, 500000, Hann)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(v[0]))
	assert.Greater(t, n[0], 0)
}

func TestWindowNoPointsInRadiusReportsNaN(t *testing.T) {
	lons, lats, values := gridLonLat(5)
	idx, err := Pack(geodetic.WGS84, lons, lats, values)
	require.NoError(t, err)

	v, n, err := Window(idx, geodetic.Haversine, []float64{0}, []float64{0}, 1, Hann)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, 0, n[0])
}

func TestWindowKernelApplyBoundedAtOne(t *testing.T) {
	for _, k := range []WindowKernel{Boxcar, Hann, Hamming, Blackman, BlackmanHarris, Nuttall, FlatTop, Parzen, Welch, Lanczos, WindowGaussian} {
		assert.Equal(t, 0.0, k.apply(1.5))
	}
}

func TestSolveLinearSystemIdentity(t *testing.T) {
	a := [][]float64{{2, 0}, {0, 3}}
	b := []float64{4, 9}
	x, err := solveLinearSystem(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, x[0], 1e-9)
	assert.InDelta(t, 3.0, x[1], 1e-9)
}

func TestSolveLinearSystemSingularErrors(t *testing.T) {
	a := [][]float64{{1, 2}, {2, 4}}
	b := []float64{1, 2}
	_, err := solveLinearSystem(a, b)
	assert.Error(t, err)
}
