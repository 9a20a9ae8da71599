package interp

import (
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/fill1d"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/internal/parallel"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
	"github.com/readthedocs-assistant/pangeo-pyinterp/sampler"
)

// SplineOption configures Bicubic/Spline.
type SplineOption func(*splineOpts)

type splineOpts struct {
	model      fill1d.FittingModel
	nx, ny     int
	boundary   config.Boundary
	numThreads int
}

// WithModel selects the 1-D fitting family used along each axis;
// default fill1d.CSpline (bicubic).
func WithModel(m fill1d.FittingModel) SplineOption {
	return func(o *splineOpts) { o.model = m }
}

// WindowHalfWidth sets the number of grid points gathered on each
// side of the target along X and Y; default 3 (a 6x6 window), large
// enough for every supported FittingModel's MinPoints.
func WindowHalfWidth(nx, ny int) SplineOption {
	return func(o *splineOpts) { o.nx, o.ny = nx, ny }
}

// SplineBoundary selects the out-of-range policy used to gather the
// window; default config.Undef.
func SplineBoundary(b config.Boundary) SplineOption {
	return func(o *splineOpts) { o.boundary = b }
}

// SplineNumThreads sets the worker count used to spread evaluation
// across target points; 0 = all cores, 1 = sequential (spec §4.E/§5).
func SplineNumThreads(n int) SplineOption {
	return func(o *splineOpts) { o.numThreads = n }
}

// Spline evaluates a tensor-product 1-D spline interpolant at every
// (xs[i], ys[i]) pair: for each target it fits one spline per row of
// the gathered window along X, evaluates each at the target x, then
// fits a single spline through those results along Y and evaluates at
// y (spec §4.E/§4.K). With fill1d.CSpline this is the module's
// "Bicubic" kernel; any other fill1d.FittingModel is honored the same
// way.
func Spline[T grid.Float](g *grid.Store2D[T], xs, ys []float64, opts ...SplineOption) ([]float64, error) {
	const op = "interp.Spline"
	o := splineOpts{model: fill1d.CSpline, nx: 3, ny: 3, boundary: config.Undef}
	for _, apply := range opts {
		apply(&o)
	}
	if o.nx < 1 {
		o.nx = 1
	}
	if o.ny < 1 {
		o.ny = 1
	}
	if len(xs) != len(ys) {
		return nil, pyerr.New(pyerr.InvalidShape, op, "xs and ys have different lengths (%d vs %d)", len(xs), len(ys))
	}

	out := make([]float64, len(xs))
	workers := config.ResolveWorkers(o.numThreads)
	err := parallel.Range(len(xs), workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			v, err := splineAt(g, xs[i], ys[i], o)
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

// splineAt is the scalar kernel behind Spline.
func splineAt[T grid.Float](g *grid.Store2D[T], x, y float64, o splineOpts) (float64, error) {
	const op = "interp.Spline"
	frame, err := sampler.Window2D(g, x, y, o.nx, o.ny, o.boundary)
	if err != nil {
		return 0, pyerr.Wrap(pyerr.OutOfDomain, op, err, "gathering spline window")
	}
	if len(frame.X) < o.model.MinPoints() || len(frame.Y) < o.model.MinPoints() {
		return 0, pyerr.New(pyerr.InvalidArgument, op, "window size %dx%d below %v's minimum of %d points", len(frame.X), len(frame.Y), o.model, o.model.MinPoints())
	}

	colValues := make([]float64, len(frame.Y))
	for b := range frame.Y {
		row := make([]float64, len(frame.X))
		for a := range frame.X {
			row[a] = float64(frame.V[a][b])
		}
		rowSpline, err := fill1d.New(o.model, frame.X, row)
		if err != nil {
			return 0, pyerr.Wrap(pyerr.InvalidArgument, op, err, "fitting X spline")
		}
		colValues[b] = rowSpline.Eval(x)
	}

	colSpline, err := fill1d.New(o.model, frame.Y, colValues)
	if err != nil {
		return 0, pyerr.Wrap(pyerr.InvalidArgument, op, err, "fitting Y spline")
	}
	return colSpline.Eval(y), nil
}

// Bicubic is Spline fixed to fill1d.CSpline, the module's default
// bicubic kernel (spec §4.E).
func Bicubic[T grid.Float](g *grid.Store2D[T], xs, ys []float64, opts ...SplineOption) ([]float64, error) {
	opts = append([]SplineOption{WithModel(fill1d.CSpline)}, opts...)
	return Spline(g, xs, ys, opts...)
}
