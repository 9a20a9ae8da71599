package histogram

import (
	"math"

	"github.com/readthedocs-assistant/pangeo-pyinterp/axis"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// Histogram2D grids a Histogram per cell over an X/Y axis pair,
// mirroring binning.Binning2D's shape but trading exact moments for a
// bounded memory footprint per cell (spec §4.I).
type Histogram2D struct {
	x, y    *axis.Axis
	cells   []*Histogram
	maxBins int
}

// New2D builds an empty Histogram2D over the given bin-center axes.
func New2D(x, y *axis.Axis, maxBins int) *Histogram2D {
	h := &Histogram2D{x: x, y: y, maxBins: maxBins}
	h.cells = make([]*Histogram, x.Len()*y.Len())
	for i := range h.cells {
		h.cells[i] = New(maxBins)
	}
	return h
}

func (h *Histogram2D) X() *axis.Axis { return h.x }
func (h *Histogram2D) Y() *axis.Axis { return h.y }

func (h *Histogram2D) idx(i, j int) int { return i*h.y.Len() + j }

// Push folds (x, y, value, weight) into its nearest cell. NaN
// coordinates or values are skipped.
func (h *Histogram2D) Push(x, y, value, weight float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(value) {
		return
	}
	i := h.x.FindIndex(x, false)
	j := h.y.FindIndex(y, false)
	if i < 0 || j < 0 {
		return
	}
	h.cells[h.idx(i, j)].Push(value, weight)
}

// Mean returns cell (i, j)'s weighted mean.
func (h *Histogram2D) Mean(i, j int) float64 {
	return h.cells[h.idx(i, j)].Mean()
}

// Quantile returns cell (i, j)'s value at quantile q.
func (h *Histogram2D) Quantile(i, j int, q float64) (float64, error) {
	return h.cells[h.idx(i, j)].Quantile(q)
}

// Count returns cell (i, j)'s accumulated weight.
func (h *Histogram2D) Count(i, j int) float64 {
	return h.cells[h.idx(i, j)].Count()
}

// Merge folds other's cells into h; both must share identical axes.
func (h *Histogram2D) Merge(other *Histogram2D) error {
	const op = "histogram.Histogram2D.Merge"
	if h.x.Len() != other.x.Len() || h.y.Len() != other.y.Len() {
		return pyerr.New(pyerr.InvalidShape, op, "histogram grids have different shapes")
	}
	for idx := range h.cells {
		h.cells[idx].Merge(other.cells[idx])
	}
	return nil
}
