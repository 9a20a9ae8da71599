// Package sampler implements GridSampler (spec §4.D): given a grid,
// target coordinates, and a requested half-window, it assembles a
// dense local "frame" ready for a kernel, honoring one of four
// boundary policies and normalizing circular-X targets so spline
// kernels see strictly monotone coordinates.
package sampler

import (
	"math"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/config"
	"github.com/readthedocs-assistant/pangeo-pyinterp/grid"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// Frame2D is a dense local window of size 2nx x 2ny taken from a
// Store2D, ready for a tensor-product kernel.
type Frame2D[T grid.Float] struct {
	X, Y []float64 // coordinates of the window, length 2nx and 2ny
	V    [][]T     // V[i][j], shape (2nx, 2ny)
}

// Window2D locates the base cell for (x, y) and expands it to a
// (2nx, 2ny) window under the given boundary policy. For a circular X
// axis, the window's X coordinates are normalized to a contiguous
// range around x (unwrapping the seam) so downstream spline kernels
// see strictly monotone coordinates (spec §4.D).
//
// Window2D reports an error when any required neighbor under policy
// Undef is out of range.
func Window2D[T grid.Float](g *grid.Store2D[T], x, y float64, nx, ny int, boundary config.Boundary) (Frame2D[T], error) {
	const op = "sampler.Window2D"

	ix := g.X().FindIndexesAround(x, nx, boundary)
	iy := g.Y().FindIndexesAround(y, ny, boundary)

	if err := checkUndef(op, ix); err != nil {
		return Frame2D[T]{}, err
	}
	if err := checkUndef(op, iy); err != nil {
		return Frame2D[T]{}, err
	}

	frame := Frame2D[T]{
		X: make([]float64, len(ix)),
		Y: make([]float64, len(iy)),
		V: make([][]T, len(ix)),
	}

	xCoords := g.X().Coordinates()
	yCoords := g.Y().Coordinates()

	for a, i := range ix {
		frame.X[a] = unwrapCircular(g.X(), xCoords, i, x)
		row := make([]T, len(iy))
		for b, j := range iy {
			if i == axis.Sentinel || j == axis.Sentinel {
				row[b] = T(math.NaN())
				continue
			}
			row[b] = g.Value(i, j)
		}
		frame.V[a] = row
	}
	for b, j := range iy {
		if j == axis.Sentinel {
			frame.Y[b] = math.NaN()
			continue
		}
		frame.Y[b] = yCoords[j]
	}
	return frame, nil
}

func checkUndef(op string, idx []int) error {
	for _, i := range idx {
		if i == axis.Sentinel {
			return pyerr.New(pyerr.OutOfDomain, op, "required neighbor outside [0, n-1] under boundary policy Undef")
		}
	}
	return nil
}

// unwrapCircular returns the coordinate for storage index i, shifted
// by whole periods so it lies in a contiguous neighborhood of target
// x when the axis is circular. Non-circular axes (or Sentinel
// indices) return the raw coordinate unchanged.
func unwrapCircular(ax *axis.Axis, coords []float64, i int, x float64) float64 {
	if i == axis.Sentinel {
		return math.NaN()
	}
	c := coords[i]
	if !ax.IsCircle() {
		return c
	}
	p := ax.Period()
	for c-x > p/2 {
		c -= p
	}
	for x-c > p/2 {
		c += p
	}
	return c
}
