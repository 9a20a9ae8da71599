// Package pyerr defines the tagged error kinds shared across every
// interpolation, binning, and indexing package in this module.
//
// Every exported operation that can fail returns a *pyerr.Error (or a
// plain wrapped error from the standard library when the failure
// originates outside this module). Callers that need to branch on the
// failure kind use errors.As and inspect Kind; callers that just want
// a human-readable message can call Error() directly.
package pyerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags the reason an operation failed. ResolutionTruncation from
// spec §7 is intentionally absent here: it is a warning, reported
// through config.WarnSink, never an error value.
type Kind int

const (
	// InvalidShape: axis length mismatches grid dimension, or x/y/z
	// sample slices have mismatched lengths.
	InvalidShape Kind = iota
	// InvalidArgument: non-monotonic (or, on a circular axis,
	// non-distinct) axis values, an unknown interpolation Method, a
	// window below the active spline's minimum, or an out-of-range
	// numeric parameter (quantile, relaxation factor, nx/ny).
	InvalidArgument
	// OutOfDomain: a query needs samples outside a non-circular axis
	// (under boundary policy Undef, or a Z/U value outside its axis),
	// or an rtree index holds no points.
	OutOfDomain
	// NotRegular: Increment() called on an irregular axis.
	NotRegular
	// SingularSystem: the RBF interpolation system has no unique
	// solution.
	SingularSystem
)

func (k Kind) String() string {
	switch k {
	case InvalidShape:
		return "InvalidShape"
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfDomain:
		return "OutOfDomain"
	case NotRegular:
		return "NotRegular"
	case SingularSystem:
		return "SingularSystem"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by every exported operation in this
// module that fails for a reason enumerated by Kind.
type Error struct {
	Kind Kind   // the tagged failure reason
	Op   string // the operation that failed, e.g. "axis.New"
	Msg  string // a human-readable description
	err  error  // wrapped cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap allows errors.Is and errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.err
}

// Cause returns the full pkg/errors stack trace of the wrapped cause,
// or nil when this Error has no underlying cause.
func (e *Error) Cause() error {
	return e.err
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, op, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(msg, args...)}
}

// Wrap constructs an Error that wraps cause with a pkg/errors stack
// trace, preserving errors.Is/errors.As compatibility through Unwrap.
func Wrap(kind Kind, op string, cause error, msg string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Msg:  fmt.Sprintf(msg, args...),
		err:  errors.Wrap(cause, op),
	}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
