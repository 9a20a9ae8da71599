// Package config carries the cross-cutting knobs shared by every
// interpolation, binning, and indexing package: worker-count
// resolution, boundary policies, and the two collaborator interfaces
// the core expects from its caller (a warning sink and a hardware
// concurrency oracle, per spec §6).
package config

import (
	"runtime"

	"github.com/golang/glog"
)

// Boundary is the indexing rule applied past an axis endpoint.
type Boundary int

const (
	// Expand clamps to the nearest edge value.
	Expand Boundary = iota
	// Wrap indexes modulo the axis length; only valid on circular axes.
	Wrap
	// Sym mirrors the index back across the boundary.
	Sym
	// Undef reports out-of-range neighbors as a sentinel instead of a
	// coordinate.
	Undef
)

func (b Boundary) String() string {
	switch b {
	case Expand:
		return "Expand"
	case Wrap:
		return "Wrap"
	case Sym:
		return "Sym"
	case Undef:
		return "Undef"
	default:
		return "Boundary(?)"
	}
}

// WarnSink receives non-fatal diagnostics raised by the core. The only
// one the core raises is temporal-resolution truncation from
// axis.Temporal.SafeCast (spec §7). It is the "warning sink"
// collaborator interface of spec §6(ii).
type WarnSink interface {
	Warnf(format string, args ...interface{})
}

// glogSink backs the default WarnSink with leveled logging, matching
// reddaly-gogrib2's use of glog for diagnostics that shouldn't abort a
// call but are worth surfacing to an operator.
type glogSink struct{}

func (glogSink) Warnf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

// Warn is the package-level default sink. Callers that want core
// warnings routed to their own logger reassign it; it is read each
// time a warning fires, never cached.
var Warn WarnSink = glogSink{}

// NumCPU is the hardware-concurrency oracle of spec §6(iii). Tests
// reassign it to fake hardware concurrency; production code leaves it
// at runtime.NumCPU.
var NumCPU = runtime.NumCPU

// ResolveWorkers implements the num_threads contract of spec §5:
// 0 means "all logical CPUs", 1 means "no parallelism", and any other
// positive value is used as-is. Grounded on the teacher's
// `workers <= 0 → runtime.NumCPU()` rule in parallel.go, generalized
// to treat 1 explicitly as "sequential" rather than just "one worker".
func ResolveWorkers(numThreads int) int {
	if numThreads <= 0 {
		return NumCPU()
	}
	return numThreads
}

// Buffer describes a foreign contiguous array handed across the core
// boundary: a pointer abstraction (represented here as a Go slice,
// since this module never receives raw pointers from cgo), its shape,
// and whether it is stored row-major (C order) or column-major
// (Fortran order). It exists so the array-container library named as
// out of scope in spec §1 has a documented shape to hand values in.
type Buffer[T any] struct {
	Values []T
	Shape  []int
	// RowMajor is true when the first axis is outermost (C order),
	// matching the layout GridStore requires per spec §3.
	RowMajor bool
}

// Option is a functional option applied to a configuration struct T,
// grounded on the teacher's grib.ReadOption pattern in options.go.
type Option[T any] func(*T)
