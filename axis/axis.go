// Package axis implements the 1-D coordinate abstraction that
// underpins every gridded operation in this module (spec §4.A):
// O(1) lookup on regular axes, O(log n) bisection on irregular axes,
// and circular (wrap-around) semantics for longitudes.
package axis

import (
	"math"
	"sort"

	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// DefaultEpsilon is the default relative tolerance used to decide
// whether an axis is regular (spec §3: max|dᵢ - d̄| ≤ ε, ε relative by
// default).
const DefaultEpsilon = 1e-6

// DefaultPeriod is the default period for circular (angular) axes.
const DefaultPeriod = 360.0

// Direction is the monotonic direction of an axis.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Axis is an ordered sequence of monotonic real-valued coordinates.
// It is immutable after construction except for the in-place Flip
// operation (spec §3).
type Axis struct {
	coords    []float64 // stored ascending internally regardless of Direction
	dir       Direction
	circular  bool
	period    float64
	epsilon   float64
	regular   bool
	min, max  float64
	step      float64 // valid only when regular
}

// Option configures axis construction.
type Option func(*buildOpts)

type buildOpts struct {
	circular bool
	period   float64
	epsilon  float64
}

// Circular marks the axis as circular (wrap-around) with the given
// period. A period of 0 selects DefaultPeriod.
func Circular(period float64) Option {
	return func(o *buildOpts) {
		o.circular = true
		if period != 0 {
			o.period = period
		}
	}
}

// Epsilon overrides the regularity tolerance.
func Epsilon(eps float64) Option {
	return func(o *buildOpts) {
		o.epsilon = eps
	}
}

// New builds an Axis from a coordinate sequence. The sequence must be
// strictly monotonic (ascending or descending); it is stored ascending
// internally and the original direction is recorded.
//
// For circular axes the values modulo period must be distinct and the
// axis must cover exactly one period (spec §3's circular invariant).
func New(coords []float64, opts ...Option) (*Axis, error) {
	const op = "axis.New"
	if len(coords) == 0 {
		return nil, pyerr.New(pyerr.InvalidShape, op, "axis requires at least one coordinate")
	}

	o := buildOpts{period: DefaultPeriod, epsilon: DefaultEpsilon}
	for _, apply := range opts {
		apply(&o)
	}

	dir, err := monotonicDirection(coords, op)
	if err != nil {
		return nil, err
	}

	stored := make([]float64, len(coords))
	copy(stored, coords)
	if dir == Descending {
		reverse(stored)
	}

	a := &Axis{
		coords:   stored,
		dir:      dir,
		circular: o.circular,
		period:   o.period,
		epsilon:  o.epsilon,
	}

	if o.circular {
		if err := a.validateCircular(op); err != nil {
			return nil, err
		}
	}

	a.recomputeCache()
	return a, nil
}

func monotonicDirection(coords []float64, op string) (Direction, error) {
	if len(coords) == 1 {
		return Ascending, nil
	}
	ascending := coords[1] > coords[0]
	for i := 1; i < len(coords); i++ {
		d := coords[i] - coords[i-1]
		if d == 0 {
			return 0, pyerr.New(pyerr.InvalidArgument, op, "coordinates must be strictly monotonic, duplicate at index %d", i)
		}
		if (d > 0) != ascending {
			return 0, pyerr.New(pyerr.InvalidArgument, op, "coordinates must be strictly monotonic, direction change at index %d", i)
		}
	}
	if ascending {
		return Ascending, nil
	}
	return Descending, nil
}

func (a *Axis) validateCircular(op string) error {
	seen := make(map[float64]struct{}, len(a.coords))
	for _, c := range a.coords {
		m := math.Mod(c, a.period)
		if m < 0 {
			m += a.period
		}
		if _, dup := seen[m]; dup {
			return pyerr.New(pyerr.InvalidArgument, op, "circular axis values are not distinct modulo period %g", a.period)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func (a *Axis) recomputeCache() {
	n := len(a.coords)
	a.min, a.max = a.coords[0], a.coords[n-1]
	if n < 2 {
		a.regular = true
		a.step = 0
		return
	}
	step := a.coords[1] - a.coords[0]
	tol := a.epsilon * math.Max(math.Abs(step), 1)
	regular := true
	for i := 1; i < n-1; i++ {
		d := a.coords[i+1] - a.coords[i]
		if math.Abs(d-step) > tol {
			regular = false
			break
		}
	}
	a.regular = regular
	a.step = step
}

// Len returns the number of coordinates.
func (a *Axis) Len() int { return len(a.coords) }

// IsRegular reports whether the axis spacing is uniform within
// epsilon.
func (a *Axis) IsRegular() bool { return a.regular }

// IsAscending reports whether the axis's current declared direction
// is ascending; Flip toggles it.
func (a *Axis) IsAscending() bool { return a.dir == Ascending }

// IsCircle reports whether the axis has wrap-around semantics.
func (a *Axis) IsCircle() bool { return a.circular }

// Period returns the circular period (meaningless if !IsCircle()).
func (a *Axis) Period() float64 { return a.period }

// Front returns the first coordinate in the axis's declared direction.
func (a *Axis) Front() float64 {
	if a.dir == Ascending {
		return a.coords[0]
	}
	return a.coords[len(a.coords)-1]
}

// Back returns the last coordinate in the axis's declared direction.
func (a *Axis) Back() float64 {
	if a.dir == Ascending {
		return a.coords[len(a.coords)-1]
	}
	return a.coords[0]
}

// Coordinates returns the axis values in its declared direction. The
// returned slice is a copy; callers may not mutate the axis through it.
func (a *Axis) Coordinates() []float64 {
	out := make([]float64, len(a.coords))
	copy(out, a.coords)
	if a.dir == Descending {
		reverse(out)
	}
	return out
}

// At returns the i'th coordinate in the axis's declared direction.
func (a *Axis) At(i int) float64 {
	if a.dir == Descending {
		i = len(a.coords) - 1 - i
	}
	return a.coords[i]
}

// Contains reports whether x lies within [min, max] (always true for
// circular axes).
func (a *Axis) Contains(x float64) bool {
	if a.circular {
		return true
	}
	return x >= a.min && x <= a.max
}

// Flip reverses the axis's declared direction in place: Coordinates,
// At, Front and Back read in the opposite order afterwards, while the
// ascending storage is left as it is. Flip is an involution:
// a.Flip(); a.Flip() restores the original axis (spec §8).
func (a *Axis) Flip() {
	if a.dir == Ascending {
		a.dir = Descending
	} else {
		a.dir = Ascending
	}
	a.recomputeCache()
}

// Increment returns the constant step of a regular axis in its
// declared direction, or a NotRegular error on an irregular axis
// (spec §4.A, §7).
func (a *Axis) Increment() (float64, error) {
	if !a.regular {
		return 0, pyerr.New(pyerr.NotRegular, "axis.Increment", "axis is not regular")
	}
	step := a.step
	if a.dir == Descending {
		step = -step
	}
	return step, nil
}

// reduceCircular reduces x into [x0, x0+period) where x0 is the first
// ascending-stored coordinate, per spec §4.A's "reduced modulo the
// period into [x0, x0+period)".
func (a *Axis) reduceCircular(x float64) float64 {
	x0 := a.coords[0]
	p := a.period
	r := math.Mod(x-x0, p)
	if r < 0 {
		r += p
	}
	return x0 + r
}

// FindIndex returns the grid index whose coordinate is closest to x,
// in the axis's declared direction. Regular axes use direct
// arithmetic; irregular axes bisect then compare neighbors. Exact
// midpoints resolve to the lower index (spec §4.A tie-break).
//
// If bounded is false and x lies outside [min, max] (non-circular),
// FindIndex returns -1. If bounded is true, x is clamped to the
// nearest endpoint.
func (a *Axis) FindIndex(x float64, bounded bool) int {
	if a.circular {
		x = a.reduceCircular(x)
	}

	if !a.circular {
		if x < a.min || x > a.max {
			if !bounded {
				return -1
			}
			if x < a.min {
				x = a.min
			} else {
				x = a.max
			}
		}
	}

	var idx int
	if a.regular && len(a.coords) > 1 {
		raw := (x - a.coords[0]) / a.step
		idx = int(math.Ceil(raw - 0.5))
		if idx < 0 {
			idx = 0
		}
		if idx > len(a.coords)-1 {
			idx = len(a.coords) - 1
		}
	} else {
		idx = bisectNearest(a.coords, x)
	}

	if a.dir == Descending {
		idx = len(a.coords) - 1 - idx
	}
	return idx
}

// bisectNearest returns the index in ascending sorted coords closest
// to x, with exact midpoints resolving to the lower index.
func bisectNearest(coords []float64, x float64) int {
	n := len(coords)
	i := sort.SearchFloat64s(coords, x)
	if i == 0 {
		return 0
	}
	if i == n {
		return n - 1
	}
	if coords[i] == x {
		return i
	}
	lo, hi := i-1, i
	dl := x - coords[lo]
	dh := coords[hi] - x
	if dl <= dh {
		return lo
	}
	return hi
}

// FindIndexes returns the bracketing pair (i0, i1) in the axis's
// declared direction such that the coordinate at i0 is on one side of
// x and i1 on the other (x[i0] <= x <= x[i1] for ascending axes).
// Out-of-range yields (-1, -1) unless circular, in which case the
// bracket wraps: (n-1, 0).
func (a *Axis) FindIndexes(x float64) (int, int) {
	n := len(a.coords)
	if a.circular {
		xr := a.reduceCircular(x)
		i := sort.SearchFloat64s(a.coords, xr)
		var i0, i1 int
		switch {
		case i == 0:
			i0, i1 = n-1, 0
		case i == n:
			i0, i1 = n-1, 0
		default:
			i0, i1 = i-1, i
		}
		if a.coords[i0] == xr && i0 != n-1 {
			i1 = i0
		}
		return a.toDeclared(i0), a.toDeclared(i1)
	}

	if x < a.min || x > a.max {
		return -1, -1
	}
	i := sort.SearchFloat64s(a.coords, x)
	var i0, i1 int
	switch {
	case i == 0:
		i0, i1 = 0, 0
	case i == n:
		i0, i1 = n-1, n-1
	default:
		i0, i1 = i-1, i
	}
	return a.toDeclared(i0), a.toDeclared(i1)
}

// toDeclared maps an ascending-storage index to the axis's declared
// direction.
func (a *Axis) toDeclared(i int) int {
	if a.dir == Descending {
		return len(a.coords) - 1 - i
	}
	return i
}

// toStorage maps a declared-direction index back to ascending storage.
func (a *Axis) toStorage(i int) int {
	if a.dir == Descending {
		return len(a.coords) - 1 - i
	}
	return i
}

// Sentinel is the out-of-range marker produced by FindIndexesAround
// under the Undef boundary policy.
const Sentinel = -1

// FindIndexesAround returns a window of 2n indices (in the axis's
// declared direction) centered on x, honoring the given boundary
// policy for indices that fall outside [0, len-1] (spec §4.A).
func (a *Axis) FindIndexesAround(x float64, n int, boundary config.Boundary) []int {
	length := len(a.coords)
	i0, i1 := a.FindIndexes(x)
	if i0 == -1 && i1 == -1 {
		// Fully out of domain: still produce a window anchored at the
		// nearest bound so callers using Expand/Sym/Wrap get sensible
		// extrapolation; Undef reports every slot as sentinel.
		if boundary == config.Undef {
			out := make([]int, 2*n)
			for i := range out {
				out[i] = Sentinel
			}
			return out
		}
		if (x < a.min) == (a.dir == Ascending) {
			i0, i1 = 0, 0
		} else {
			i0, i1 = length-1, length-1
		}
	}
	i0s, i1s := a.toStorage(i0), a.toStorage(i1)
	lo, hi := i0s, i1s
	switch {
	case a.circular && i0s > i1s:
		// The bracket crosses the seam (i0s == length-1, i1s == 0):
		// keep lo, hi in seam order and let hi run past length so the
		// window below continues through the wrap instead of
		// collapsing to the whole axis.
		hi = i1s + length
	case lo > hi:
		lo, hi = hi, lo
	}

	out := make([]int, 2*n)
	// window spans [lo-(n-1) .. hi+(n-1)] in storage order, i.e. n
	// points on each side of the bracket.
	start := lo - (n - 1)
	for k := 0; k < 2*n; k++ {
		raw := start + k
		out[k] = a.resolveBoundary(raw, boundary)
	}
	// Present in the axis's declared direction.
	if a.dir == Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		for i, v := range out {
			if v != Sentinel {
				out[i] = length - 1 - v
			}
		}
	}
	return out
}

func (a *Axis) resolveBoundary(raw int, boundary config.Boundary) int {
	length := len(a.coords)
	if raw >= 0 && raw < length {
		return raw
	}
	switch boundary {
	case config.Expand:
		if raw < 0 {
			return 0
		}
		return length - 1
	case config.Wrap:
		if !a.circular {
			// Fall back to Expand semantics for non-circular axes;
			// Wrap is only meaningful when is_circle=true per spec §4.E.
			if raw < 0 {
				return 0
			}
			return length - 1
		}
		m := raw % length
		if m < 0 {
			m += length
		}
		return m
	case config.Sym:
		return mirrorIndex(raw, length)
	case config.Undef:
		return Sentinel
	default:
		return Sentinel
	}
}

// mirrorIndex reflects an out-of-range index back into [0, length-1].
func mirrorIndex(raw, length int) int {
	if length == 1 {
		return 0
	}
	period := 2 * (length - 1)
	m := raw % period
	if m < 0 {
		m += period
	}
	if m >= length {
		m = period - m
	}
	return m
}
