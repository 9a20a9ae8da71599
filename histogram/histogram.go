// Package histogram implements a streaming, bounded-size compressed
// histogram (spec §4.I) using the Ben-Haim/Tom-Tov online algorithm:
// each update inserts a new centroid and, once the bin budget is
// exceeded, merges the two centroids closest in value. Mean and
// quantile queries interpolate over the resulting centroid list.
package histogram

import (
	"math"
	"sort"

	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// DefaultMaxBins is the default centroid budget (spec §4.I default).
const DefaultMaxBins = 100

// Centroid is one compressed bin: a representative value and the
// total weight of samples folded into it.
type Centroid struct {
	Mean  float64
	Count float64
}

// Histogram is a bounded-size streaming compressed histogram over a
// single variable.
type Histogram struct {
	bins    []Centroid
	maxBins int
}

// New builds an empty Histogram with the given centroid budget (0
// selects DefaultMaxBins).
func New(maxBins int) *Histogram {
	if maxBins <= 0 {
		maxBins = DefaultMaxBins
	}
	return &Histogram{maxBins: maxBins}
}

// Push folds one (value, weight) sample into the histogram. NaN
// values are skipped.
func (h *Histogram) Push(value, weight float64) {
	if math.IsNaN(value) {
		return
	}
	if weight <= 0 {
		weight = 1
	}
	i := sort.Search(len(h.bins), func(i int) bool { return h.bins[i].Mean >= value })
	h.bins = append(h.bins, Centroid{})
	copy(h.bins[i+1:], h.bins[i:])
	h.bins[i] = Centroid{Mean: value, Count: weight}
	h.compress()
}

// compress merges the pair of adjacent centroids with the smallest
// mean gap until the centroid count is back within budget.
func (h *Histogram) compress() {
	for len(h.bins) > h.maxBins {
		best := 0
		bestGap := math.Inf(1)
		for i := 0; i < len(h.bins)-1; i++ {
			gap := h.bins[i+1].Mean - h.bins[i].Mean
			if gap < bestGap {
				bestGap = gap
				best = i
			}
		}
		a, b := h.bins[best], h.bins[best+1]
		total := a.Count + b.Count
		merged := Centroid{
			Mean:  (a.Mean*a.Count + b.Mean*b.Count) / total,
			Count: total,
		}
		h.bins = append(h.bins[:best], h.bins[best+1:]...)
		h.bins[best] = merged
	}
}

// Count returns the total accumulated weight.
func (h *Histogram) Count() float64 {
	var sum float64
	for _, c := range h.bins {
		sum += c.Count
	}
	return sum
}

// Mean returns the weighted mean of every sample folded in.
func (h *Histogram) Mean() float64 {
	total := h.Count()
	if total == 0 {
		return math.NaN()
	}
	var sum float64
	for _, c := range h.bins {
		sum += c.Mean * c.Count
	}
	return sum / total
}

// Quantile returns the value at quantile q in [0, 1], linearly
// interpolating the cumulative weight between the two centroids that
// bracket the target rank (spec §4.I).
func (h *Histogram) Quantile(q float64) (float64, error) {
	const op = "histogram.Quantile"
	if q < 0 || q > 1 {
		return 0, pyerr.New(pyerr.InvalidArgument, op, "quantile must lie in [0, 1], got %g", q)
	}
	if len(h.bins) == 0 {
		return math.NaN(), nil
	}
	if len(h.bins) == 1 {
		return h.bins[0].Mean, nil
	}

	total := h.Count()
	target := q * total
	var cum float64
	for i, c := range h.bins {
		next := cum + c.Count
		if target <= next || i == len(h.bins)-1 {
			if i == 0 {
				return c.Mean, nil
			}
			prev := h.bins[i-1]
			// Interpolate between the previous and current centroid
			// means, placed at their respective cumulative midpoints.
			prevMid := cum - prev.Count/2
			curMid := cum + c.Count/2
			if curMid == prevMid {
				return c.Mean, nil
			}
			t := (target - prevMid) / (curMid - prevMid)
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			return prev.Mean + t*(c.Mean-prev.Mean), nil
		}
		cum = next
	}
	return h.bins[len(h.bins)-1].Mean, nil
}

// Merge folds other's centroids into h, then recompresses to budget.
// The result approximates (but, being lossy-compressed, does not
// exactly equal) the histogram built by pushing every sample into a
// single instance — the bound this package optimizes for is memory,
// not associativity (unlike binning.Binning2D's exact moments).
func (h *Histogram) Merge(other *Histogram) {
	h.bins = append(h.bins, other.bins...)
	sort.Slice(h.bins, func(i, j int) bool { return h.bins[i].Mean < h.bins[j].Mean })
	h.compress()
}
