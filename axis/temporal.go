package axis

import (
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
)

// Resolution tags the unit of a Temporal axis's int64 coordinates.
type Resolution int

const (
	Year Resolution = iota
	Month
	Week
	Day
	Hour
	Minute
	Second
	Millisecond
	Microsecond
	Nanosecond
)

// nanosPerUnit gives the nanosecond scale of each calendar-independent
// resolution. Year/Month/Week are calendar-dependent in general, but
// for the purposes of SafeCast truncation detection we use their
// average Gregorian length, matching how GRIB-family formats treat
// coarse time units as fixed-width ticks.
var nanosPerUnit = map[Resolution]int64{
	Year:        31556952 * 1e9, // average Gregorian year, 365.2425 days
	Month:       2629746 * 1e9,  // average Gregorian month, 1/12 of a year
	Week:        7 * 24 * 3600 * 1e9,
	Day:         24 * 3600 * 1e9,
	Hour:        3600 * 1e9,
	Minute:      60 * 1e9,
	Second:      1e9,
	Millisecond: 1e6,
	Microsecond: 1e3,
	Nanosecond:  1,
}

// Temporal is an Axis whose coordinates are 64-bit signed integers in
// a declared time resolution (spec §3). It embeds a float64-backed
// Axis over the raw integer ticks (stored as float64, which carries
// integers exactly up to 2^53) so it gets Axis's lookup semantics for
// free, and adds the resolution tag plus SafeCast.
type Temporal struct {
	*Axis
	resolution Resolution
}

// NewTemporal builds a Temporal axis from integer ticks already
// expressed in the given resolution.
func NewTemporal(ticks []int64, resolution Resolution, opts ...Option) (*Temporal, error) {
	coords := make([]float64, len(ticks))
	for i, t := range ticks {
		coords[i] = float64(t)
	}
	a, err := New(coords, opts...)
	if err != nil {
		return nil, err
	}
	return &Temporal{Axis: a, resolution: resolution}, nil
}

// Resolution returns the axis's declared time resolution.
func (t *Temporal) Resolution() Resolution { return t.resolution }

// SafeCast converts an instant expressed in `from` resolution to this
// axis's resolution, warning via config.Warn when the conversion loses
// sub-unit precision (spec §3, §7's ResolutionTruncation).
func (t *Temporal) SafeCast(instant int64, from Resolution) int64 {
	if from == t.resolution {
		return instant
	}
	fromNanos := nanosPerUnit[from]
	toNanos := nanosPerUnit[t.resolution]

	totalNanos := instant * fromNanos
	cast := totalNanos / toNanos
	if totalNanos%toNanos != 0 {
		config.Warn.Warnf("ResolutionTruncation: casting instant %d from resolution %v to %v loses sub-unit precision", instant, from, t.resolution)
	}
	return cast
}
