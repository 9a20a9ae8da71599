// Package grid implements the immutable N-D regular-grid container
// (spec §4.C): a tuple of Axes plus a contiguous value buffer in a
// declared row-major order, with the first axis outermost.
package grid

import (
	"golang.org/x/exp/constraints"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// Float is the set of value types a grid may hold (spec §3: T in
// {float32, float64}), expressed with x/exp/constraints so the same
// engine serves either payload width.
type Float = constraints.Float

// MemoryOrder documents how the value buffer is laid out. This module
// only ever produces and consumes RowMajor buffers (first axis
// outermost, per spec §3); no constructor takes or checks a
// MemoryOrder value.
type MemoryOrder int

const (
	RowMajor MemoryOrder = iota
)

// Store2D is a read-only, immutable bivariate grid: two axes plus a
// contiguous buffer of length axisX.Len() * axisY.Len(), indexed
// value(i,j) with X outermost.
type Store2D[T Float] struct {
	x, y   *axis.Axis
	values []T
}

// X returns the grid's X axis.
func (g *Store2D[T]) X() *axis.Axis { return g.x }

// Y returns the grid's Y axis.
func (g *Store2D[T]) Y() *axis.Axis { return g.y }

// Value returns the value at grid indices (i, j).
func (g *Store2D[T]) Value(i, j int) T {
	return g.values[i*g.y.Len()+j]
}

// Values returns the raw contiguous buffer backing the grid. The
// grid does not copy this buffer at construction and holds only a
// reference; per spec §3 the owner must outlive every query.
func (g *Store2D[T]) Values() []T { return g.values }

// Shape returns [len(X), len(Y)].
func (g *Store2D[T]) Shape() [2]int { return [2]int{g.x.Len(), g.y.Len()} }

// BuildOption configures grid construction.
type BuildOption func(*buildOpts)

type buildOpts struct {
	increasingAxes bool
}

// IncreasingAxes requests that any descending axis be flipped to
// ascending, with the value buffer re-ordered along the matching
// dimension to match (spec §4.C).
func IncreasingAxes() BuildOption {
	return func(o *buildOpts) { o.increasingAxes = true }
}

// BuildStore2D validates (axes, buffer) shape and constructs an
// immutable Store2D. If IncreasingAxes is requested and an axis is
// descending, the returned grid has that axis flipped and the buffer
// reordered along the matching dimension.
func BuildStore2D[T Float](x, y *axis.Axis, values []T, opts ...BuildOption) (*Store2D[T], error) {
	const op = "grid.BuildStore2D"
	o := buildOpts{}
	for _, apply := range opts {
		apply(&o)
	}

	nx, ny := x.Len(), y.Len()
	if len(values) != nx*ny {
		return nil, pyerr.New(pyerr.InvalidShape, op, "value buffer length %d does not match shape %dx%d", len(values), nx, ny)
	}

	// The grid holds a reference to values, not a copy: per spec §3
	// the owner of values must outlive every query made against g.
	g := &Store2D[T]{x: x, y: y, values: values}

	if o.increasingAxes {
		if !x.IsAscending() {
			flipAxisDim2D(g, 0)
		}
		if !y.IsAscending() {
			flipAxisDim2D(g, 1)
		}
	}
	return g, nil
}

// flipAxisDim2D flips axis dim (0=X, 1=Y) in place and reorders the
// value buffer along that dimension to match.
func flipAxisDim2D[T Float](g *Store2D[T], dim int) {
	nx, ny := g.x.Len(), g.y.Len()
	out := make([]T, len(g.values))
	switch dim {
	case 0:
		for i := 0; i < nx; i++ {
			srcRow := (nx - 1 - i) * ny
			dstRow := i * ny
			copy(out[dstRow:dstRow+ny], g.values[srcRow:srcRow+ny])
		}
		g.x.Flip()
	case 1:
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				out[i*ny+j] = g.values[i*ny+(ny-1-j)]
			}
		}
		g.y.Flip()
	}
	g.values = out
}

// Store3D adds a Z axis to Store2D; indexing is (i, j, k) with X
// outermost and Z innermost.
type Store3D[T Float] struct {
	x, y, z *axis.Axis
	values  []T
}

func (g *Store3D[T]) X() *axis.Axis { return g.x }
func (g *Store3D[T]) Y() *axis.Axis { return g.y }
func (g *Store3D[T]) Z() *axis.Axis { return g.z }

func (g *Store3D[T]) Value(i, j, k int) T {
	ny, nz := g.y.Len(), g.z.Len()
	return g.values[(i*ny+j)*nz+k]
}

func (g *Store3D[T]) Values() []T { return g.values }

func (g *Store3D[T]) Shape() [3]int { return [3]int{g.x.Len(), g.y.Len(), g.z.Len()} }

// BuildStore3D validates (axes, buffer) shape and constructs an
// immutable Store3D.
func BuildStore3D[T Float](x, y, z *axis.Axis, values []T) (*Store3D[T], error) {
	const op = "grid.BuildStore3D"
	n := x.Len() * y.Len() * z.Len()
	if len(values) != n {
		return nil, pyerr.New(pyerr.InvalidShape, op, "value buffer length %d does not match shape %dx%dx%d", len(values), x.Len(), y.Len(), z.Len())
	}
	return &Store3D[T]{x: x, y: y, z: z, values: values}, nil
}

// Store4D adds a U axis to Store3D; indexing is (i, j, k, l) with X
// outermost and U innermost.
type Store4D[T Float] struct {
	x, y, z, u *axis.Axis
	values     []T
}

func (g *Store4D[T]) X() *axis.Axis { return g.x }
func (g *Store4D[T]) Y() *axis.Axis { return g.y }
func (g *Store4D[T]) Z() *axis.Axis { return g.z }
func (g *Store4D[T]) U() *axis.Axis { return g.u }

func (g *Store4D[T]) Value(i, j, k, l int) T {
	ny, nz, nu := g.y.Len(), g.z.Len(), g.u.Len()
	return g.values[((i*ny+j)*nz+k)*nu+l]
}

func (g *Store4D[T]) Values() []T { return g.values }

func (g *Store4D[T]) Shape() [4]int {
	return [4]int{g.x.Len(), g.y.Len(), g.z.Len(), g.u.Len()}
}

// BuildStore4D validates (axes, buffer) shape and constructs an
// immutable Store4D.
func BuildStore4D[T Float](x, y, z, u *axis.Axis, values []T) (*Store4D[T], error) {
	const op = "grid.BuildStore4D"
	n := x.Len() * y.Len() * z.Len() * u.Len()
	if len(values) != n {
		return nil, pyerr.New(pyerr.InvalidShape, op, "value buffer length %d does not match shape %dx%dx%dx%d", len(values), x.Len(), y.Len(), z.Len(), u.Len())
	}
	return &Store4D[T]{x: x, y: y, z: z, u: u, values: values}, nil
}
