// Package gapfill implements the two undefined-value-filling
// algorithms over a grid.Store2D (spec §4.F): a Jacobi-style
// successive-over-relaxation Poisson solver, and a LOESS (tri-cube
// weighted local regression) infill.
package gapfill

import (
	"math"

	"github.com/kelindar/bitmap"

	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/internal/parallel"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// FirstGuess selects how Poisson seeds undefined cells before
// iterating.
type FirstGuess int

const (
	// Zero seeds every undefined cell at 0.
	Zero FirstGuess = iota
	// ZonalAverage seeds each undefined cell with the mean of the
	// defined values in its row (its "zonal", i.e. constant-Y, band).
	ZonalAverage
)

// PoissonConfig configures the Poisson solver.
type PoissonConfig struct {
	FirstGuess      FirstGuess
	Relaxation      float64         // SOR factor omega, in (0, 2); 0 selects 1 (Gauss-Seidel-like Jacobi)
	MaxIterations   int             // 0 selects a default of 2000
	Epsilon         float64         // convergence threshold on max residual; 0 selects 1e-4
	BoundaryX       config.Boundary // X boundary policy for the 5-point stencil; only Wrap/Sym/Expand are meaningful
	NumThreads      int             // 0 selects config.ResolveWorkers(0)
}

// Poisson fills every NaN cell of g in place by relaxing the discrete
// Laplace equation (a 5-point stencil average of its neighbors) via
// Jacobi-style SOR, leaving defined cells untouched. It returns the
// number of iterations performed and the final max residual.
func Poisson[T grid.Float](g *grid.Store2D[T], cfg PoissonConfig) (iterations int, maxResidual float64, err error) {
	const op = "gapfill.Poisson"
	nx, ny := g.Shape()[0], g.Shape()[1]
	if nx < 3 || ny < 3 {
		return 0, 0, pyerr.New(pyerr.InvalidShape, op, "grid must be at least 3x3, got %dx%d", nx, ny)
	}

	omega := cfg.Relaxation
	if omega == 0 {
		omega = 1
	}
	if omega <= 0 || omega >= 2 {
		return 0, 0, pyerr.New(pyerr.InvalidArgument, op, "relaxation factor must lie in (0, 2), got %g", omega)
	}
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = 2000
	}
	eps := cfg.Epsilon
	if eps == 0 {
		eps = 1e-4
	}
	workers := config.ResolveWorkers(cfg.NumThreads)

	var undef bitmap.Bitmap
	undef.Grow(uint32(nx * ny))
	cur := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			v := float64(g.Value(i, j))
			idx := i*ny + j
			if math.IsNaN(v) {
				undef.Set(uint32(idx))
			} else {
				cur[idx] = v
			}
		}
	}
	seedFirstGuess(cur, undef, nx, ny, cfg.FirstGuess)

	circularX := g.X().IsCircle()
	next := make([]float64, nx*ny)
	copy(next, cur)

	for iterations = 1; iterations <= maxIter; iterations++ {
		err := parallel.Range(nx, workers, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				for j := 0; j < ny; j++ {
					idx := i*ny + j
					if !undef.Contains(uint32(idx)) {
						continue
					}
					left, right, ok := neighborsX(cur, i, j, nx, ny, circularX, cfg.BoundaryX)
					if !ok {
						continue
					}
					top := neighborY(cur, i, j-1, ny)
					bottom := neighborY(cur, i, j+1, ny)
					avg := (left + right + top + bottom) / 4
					next[idx] = cur[idx] + omega*(avg-cur[idx])
				}
			}
			return nil
		})
		if err != nil {
			return iterations, 0, err
		}
		maxResidual = maxResidualOf(cur, next, undef)
		cur, next = next, cur
		if maxResidual < eps {
			break
		}
	}

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			idx := i*ny + j
			if undef.Contains(uint32(idx)) {
				g.Values()[idx] = T(cur[idx])
			}
		}
	}
	return iterations, maxResidual, nil
}

func maxResidualOf(a, b []float64, undef bitmap.Bitmap) float64 {
	var m float64
	for i := range a {
		if !undef.Contains(uint32(i)) {
			continue
		}
		d := math.Abs(b[i] - a[i])
		if d > m {
			m = d
		}
	}
	return m
}

func seedFirstGuess(cur []float64, undef bitmap.Bitmap, nx, ny int, mode FirstGuess) {
	if mode == Zero {
		return
	}
	for i := 0; i < nx; i++ {
		var sum float64
		var count int
		for j := 0; j < ny; j++ {
			if !undef.Contains(uint32(i*ny + j)) {
				sum += cur[i*ny+j]
				count++
			}
		}
		if count == 0 {
			continue
		}
		mean := sum / float64(count)
		for j := 0; j < ny; j++ {
			if undef.Contains(uint32(i*ny + j)) {
				cur[i*ny+j] = mean
			}
		}
	}
}

// neighborsX resolves the left/right stencil values along X honoring
// the boundary policy (Wrap requires a circular axis; Sym mirrors;
// Expand/Undef clamp or skip). ok is false when the cell must be
// skipped this pass (Undef boundary at an edge).
func neighborsX(cur []float64, i, j, nx, ny int, circular bool, boundary config.Boundary) (left, right float64, ok bool) {
	li, ri := i-1, i+1
	if li < 0 || ri >= nx {
		switch boundary {
		case config.Wrap:
			if circular {
				li = (li + nx) % nx
				ri = ri % nx
			} else {
				li, ri = clampX(li, ri, nx)
			}
		case config.Sym:
			li, ri = mirrorX(li, ri, nx)
		case config.Undef:
			return 0, 0, false
		default: // Expand
			li, ri = clampX(li, ri, nx)
		}
	}
	return cur[li*ny+j], cur[ri*ny+j], true
}

func clampX(li, ri, nx int) (int, int) {
	if li < 0 {
		li = 0
	}
	if ri >= nx {
		ri = nx - 1
	}
	return li, ri
}

func mirrorX(li, ri, nx int) (int, int) {
	if li < 0 {
		li = -li
	}
	if ri >= nx {
		ri = 2*(nx-1) - ri
	}
	return li, ri
}

// neighborY clamps at the Y edges (Y is never circular in this
// module's data model, spec §3).
func neighborY(cur []float64, i, j, ny int) float64 {
	if j < 0 {
		j = 0
	}
	if j >= ny {
		j = ny - 1
	}
	return cur[i*ny+j]
}

// LOESS fills every NaN cell of g in place using a tri-cube weighted
// local regression over a (2*nx+1, 2*ny+1) neighborhood of defined
// samples (spec §4.F). Neighbors that fall outside the grid are
// gathered by mirroring the index back across the edge (boundary
// policy Sym), not skipped, so a gap near an edge still draws on a full
// window. Cells with no defined neighbor within the mirrored window
// are left untouched.
func LOESS[T grid.Float](g *grid.Store2D[T], nx, ny int) error {
	const op = "gapfill.LOESS"
	shape := g.Shape()
	gnx, gny := shape[0], shape[1]
	if nx < 1 || ny < 1 {
		return pyerr.New(pyerr.InvalidArgument, op, "nx, ny must be positive, got %d, %d", nx, ny)
	}

	values := g.Values()
	out := make([]T, len(values))
	copy(out, values)

	for i := 0; i < gnx; i++ {
		for j := 0; j < gny; j++ {
			v := float64(g.Value(i, j))
			if !math.IsNaN(v) {
				continue
			}
			var sumW, sumWV float64
			for di := -nx; di <= nx; di++ {
				ii, ok := mirrorIndex(i+di, gnx)
				if !ok {
					continue
				}
				for dj := -ny; dj <= ny; dj++ {
					jj, ok := mirrorIndex(j+dj, gny)
					if !ok {
						continue
					}
					nv := float64(g.Value(ii, jj))
					if math.IsNaN(nv) {
						continue
					}
					d := math.Hypot(float64(di)/float64(nx), float64(dj)/float64(ny))
					if d > 1 {
						continue
					}
					w := triCube(d)
					sumW += w
					sumWV += w * nv
				}
			}
			if sumW > 0 {
				out[i*gny+j] = T(sumWV / sumW)
			}
		}
	}
	copy(values, out)
	return nil
}

// mirrorIndex reflects an out-of-range index back across the nearest
// edge (Sym boundary). ok is false only when n is too small for a
// single reflection to land back in range.
func mirrorIndex(i, n int) (int, bool) {
	if n == 1 {
		return 0, i == 0
	}
	if i < 0 {
		i = -i
	}
	if i >= n {
		i = 2*(n-1) - i
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// triCube is the weight kernel w(d) = (1 - d^3)^3 for d in [0, 1].
func triCube(d float64) float64 {
	if d >= 1 {
		return 0
	}
	t := 1 - d*d*d
	return t * t * t
}
