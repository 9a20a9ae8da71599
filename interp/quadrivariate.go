package interp

import (
	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/internal/parallel"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// QuadrivariateOption configures Quadrivariate.
type QuadrivariateOption func(*bivariateOpts)

// QuadrivariatePower sets the IDW exponent for the underlying
// bivariate planes.
func QuadrivariatePower(p float64) QuadrivariateOption {
	return func(o *bivariateOpts) { o.power = p }
}

// QuadrivariateMethod selects the bivariate kernel within each (Z, U)
// plane pair.
func QuadrivariateMethod(m Method) QuadrivariateOption {
	return func(o *bivariateOpts) { o.method = m }
}

// QuadrivariateBoundary selects the out-of-range policy for the
// bivariate planes.
func QuadrivariateBoundary(b config.Boundary) QuadrivariateOption {
	return func(o *bivariateOpts) { o.boundary = b }
}

// QuadrivariateNumThreads sets the worker count used to spread
// evaluation across target points; 0 = all cores, 1 = sequential
// (spec §4.E/§5).
func QuadrivariateNumThreads(n int) QuadrivariateOption {
	return func(o *bivariateOpts) { o.numThreads = n }
}

// Quadrivariate evaluates the grid at every (xs[i], ys[i], zs[i], us[i])
// quadruple: for each target, Trivariate runs at the two U planes
// bracketing u, then the result is linearly interpolated along U
// (spec §4.E).
func Quadrivariate[T grid.Float](g *grid.Store4D[T], xs, ys, zs, us []float64, opts ...QuadrivariateOption) ([]float64, error) {
	const op = "interp.Quadrivariate"
	o := bivariateOpts{method: Bilinear, power: 2, boundary: config.Undef}
	for _, apply := range opts {
		apply(&o)
	}
	if len(xs) != len(ys) || len(xs) != len(zs) || len(xs) != len(us) {
		return nil, pyerr.New(pyerr.InvalidShape, op, "xs, ys, zs and us have different lengths (%d, %d, %d, %d)", len(xs), len(ys), len(zs), len(us))
	}

	out := make([]float64, len(xs))
	workers := config.ResolveWorkers(o.numThreads)
	err := parallel.Range(len(xs), workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			v, err := quadrivariateAt(g, xs[i], ys[i], zs[i], us[i], o)
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

// quadrivariateAt is the scalar kernel behind Quadrivariate.
func quadrivariateAt[T grid.Float](g *grid.Store4D[T], x, y, z, u float64, o bivariateOpts) (float64, error) {
	const op = "interp.Quadrivariate"
	l0, l1 := g.U().FindIndexes(u)
	if l0 == axis.Sentinel && l1 == axis.Sentinel {
		return 0, pyerr.New(pyerr.OutOfDomain, op, "u=%g outside grid U range", u)
	}

	uCoords := g.U().Coordinates()
	cubeA := cubeAt(g, l0)
	va, err := trivariateAt(cubeA, x, y, z, o)
	if err != nil {
		return 0, err
	}
	if l0 == l1 {
		return va, nil
	}
	cubeB := cubeAt(g, l1)
	vb, err := trivariateAt(cubeB, x, y, z, o)
	if err != nil {
		return 0, err
	}
	return linearZ(uCoords[l0], uCoords[l1], u, va, vb), nil
}

// cubeAt extracts the 3-D (X, Y, Z) slice of a Store4D at fixed U
// index l as a standalone Store3D.
func cubeAt[T grid.Float](g *grid.Store4D[T], l int) *grid.Store3D[T] {
	nx, ny, nz, nu := g.X().Len(), g.Y().Len(), g.Z().Len(), g.U().Len()
	values := make([]T, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				values[(i*ny+j)*nz+k] = g.Values()[((i*ny+j)*nz+k)*nu+l]
			}
		}
	}
	cube, _ := grid.BuildStore3D(g.X(), g.Y(), g.Z(), values)
	return cube
}
