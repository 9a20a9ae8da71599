package geodetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedQuantities(t *testing.T) {
	s := WGS84
	assert.InDelta(t, 6356752.314245, s.B(), 1e-3)
	assert.Greater(t, s.E2(), 0.0)
	assert.Less(t, s.E2(), 0.01)
	assert.Greater(t, s.MeanRadius(), s.B())
	assert.Less(t, s.MeanRadius(), s.A)
}

// Scenario from spec §8: ECEF(LLA(p)) ~= p within tolerance for
// latitudes within +-85 degrees.
func TestRoundTripLLAECEF(t *testing.T) {
	cases := []struct{ lon, lat, alt float64 }{
		{0, 0, 0},
		{45, 45, 100},
		{-73.5, 40.7, 10},
		{179.9, -84.9, 8848},
		{-179.9, 84.9, -10},
		{120, 0, 0},
	}
	for _, c := range cases {
		x, y, z := LLAToECEF(WGS84, c.lon, c.lat, c.alt)
		lon, lat, alt := ECEFToLLA(WGS84, x, y, z)

		assert.InDelta(t, c.lon, lon, 1e-7, "lon case %+v", c)
		assert.InDelta(t, c.lat, lat, 1e-7, "lat case %+v", c)
		assert.InDelta(t, c.alt, alt, 1e-3, "alt case %+v", c)
	}
}

func TestEquatorECEFIsOnXYPlane(t *testing.T) {
	x, y, z := LLAToECEF(WGS84, 0, 0, 0)
	assert.InDelta(t, WGS84.A, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
	assert.InDelta(t, 0, z, 1e-6)
}

func TestDistanceStrategiesAgreeApproximately(t *testing.T) {
	// New York to London, roughly 5570 km great-circle.
	lon1, lat1 := -74.0, 40.7
	lon2, lat2 := -0.1, 51.5

	h := Distance(WGS84, Haversine, lon1, lat1, lon2, lat2)
	v := Distance(WGS84, Vincenty, lon1, lat1, lon2, lat2)
	a := Distance(WGS84, Andoyer, lon1, lat1, lon2, lat2)

	assert.InDelta(t, 5.57e6, h, 5e4)
	assert.InDelta(t, h, v, 5e4)
	assert.InDelta(t, h, a, 5e4)
}

func TestDistanceZeroForCoincidentPoints(t *testing.T) {
	for _, strategy := range []DistanceStrategy{Haversine, Andoyer, Thomas, Vincenty} {
		d := Distance(WGS84, strategy, 10, 20, 10, 20)
		assert.InDelta(t, 0, d, 1e-6)
	}
}

func TestCurvatureAtPoles(t *testing.T) {
	m, p := WGS84.Curvature(math.Pi / 2)
	assert.Greater(t, p, WGS84.A)
	assert.Greater(t, m, WGS84.B())
}
