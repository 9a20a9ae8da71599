package interp

import (
	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/internal/parallel"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// TrivariateOption configures Trivariate.
type TrivariateOption func(*bivariateOpts)

// TrivariatePower sets the IDW exponent for the underlying bivariate
// planes.
func TrivariatePower(p float64) TrivariateOption {
	return func(o *bivariateOpts) { o.power = p }
}

// TrivariateMethod selects the bivariate kernel applied within each Z
// plane.
func TrivariateMethod(m Method) TrivariateOption {
	return func(o *bivariateOpts) { o.method = m }
}

// TrivariateBoundary selects the out-of-range policy for the bivariate
// planes.
func TrivariateBoundary(b config.Boundary) TrivariateOption {
	return func(o *bivariateOpts) { o.boundary = b }
}

// TrivariateNumThreads sets the worker count used to spread evaluation
// across target points; 0 = all cores, 1 = sequential (spec §4.E/§5).
func TrivariateNumThreads(n int) TrivariateOption {
	return func(o *bivariateOpts) { o.numThreads = n }
}

// Trivariate evaluates the grid at every (xs[i], ys[i], zs[i]) triple:
// for each target it runs the bivariate kernel on the two Z planes
// bracketing z, then linearly interpolates between them (spec §4.E).
// When z's axis is a Temporal axis whose resolution loses precision
// relative to the caller's tick, the caller is responsible for the
// SafeCast warning (axis.Temporal already emits it); Trivariate itself
// only bisects the Z axis.
func Trivariate[T grid.Float](g *grid.Store3D[T], xs, ys, zs []float64, opts ...TrivariateOption) ([]float64, error) {
	const op = "interp.Trivariate"
	o := bivariateOpts{method: Bilinear, power: 2, boundary: config.Undef}
	for _, apply := range opts {
		apply(&o)
	}
	if len(xs) != len(ys) || len(xs) != len(zs) {
		return nil, pyerr.New(pyerr.InvalidShape, op, "xs, ys and zs have different lengths (%d, %d, %d)", len(xs), len(ys), len(zs))
	}

	out := make([]float64, len(xs))
	workers := config.ResolveWorkers(o.numThreads)
	err := parallel.Range(len(xs), workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			v, err := trivariateAt(g, xs[i], ys[i], zs[i], o)
			if err != nil {
				return err
			}
			out[i] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// trivariateAt is the scalar kernel behind Trivariate, reused directly
// by Quadrivariate to avoid a second layer of workers.
func trivariateAt[T grid.Float](g *grid.Store3D[T], x, y, z float64, o bivariateOpts) (float64, error) {
	const op = "interp.Trivariate"
	k0, k1 := g.Z().FindIndexes(z)
	if k0 == axis.Sentinel && k1 == axis.Sentinel {
		return 0, pyerr.New(pyerr.OutOfDomain, op, "z=%g outside grid Z range", z)
	}

	zCoords := g.Z().Coordinates()
	planeA := planeAt(g, k0)
	va, err := bivariateAt(planeA, x, y, o)
	if err != nil {
		return 0, err
	}
	if k0 == k1 {
		return va, nil
	}
	planeB := planeAt(g, k1)
	vb, err := bivariateAt(planeB, x, y, o)
	if err != nil {
		return 0, err
	}
	return linearZ(zCoords[k0], zCoords[k1], z, va, vb), nil
}

// planeAt extracts the 2-D (X, Y) slice of a Store3D at fixed Z index
// k as a standalone Store2D, so the bivariate kernel can be reused
// unchanged.
func planeAt[T grid.Float](g *grid.Store3D[T], k int) *grid.Store2D[T] {
	nx, ny, nz := g.X().Len(), g.Y().Len(), g.Z().Len()
	values := make([]T, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			values[i*ny+j] = g.Values()[(i*ny+j)*nz+k]
		}
	}
	plane, _ := grid.BuildStore2D(g.X(), g.Y(), values)
	return plane
}
