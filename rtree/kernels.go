package rtree

import (
	"math"

	"github.com/readthedocs-assistant/pangeo-pyinterp/geodetic"
	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// IDW evaluates inverse-distance weighting over the k nearest
// neighbors of every (lons[i], lats[i]) target (spec §4.G). An exact
// hit (distance 0) short-circuits to that neighbor's value. With
// within=true, a target outside the ECEF bounding box of its k
// neighbors (EnvelopeReject) is reported as NaN with a neighbor count
// of 0 instead of being extrapolated. It returns the interpolated
// values alongside the neighbor count actually used per target.
func IDW[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lons, lats []float64, k int, power float64, within bool) ([]float64, []int, error) {
	const op = "rtree.IDW"
	if len(lons) != len(lats) {
		return nil, nil, pyerr.New(pyerr.InvalidShape, op, "lons/lats length mismatch: %d/%d", len(lons), len(lats))
	}
	if idx.Len() == 0 {
		return nil, nil, pyerr.New(pyerr.OutOfDomain, op, "index has no points")
	}

	values := make([]float64, len(lons))
	counts := make([]int, len(lons))
	for i := range lons {
		v, n := idwAt(idx, strategy, lons[i], lats[i], k, power, within)
		values[i] = v
		counts[i] = n
	}
	return values, counts, nil
}

func idwAt[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lon, lat float64, k int, power float64, within bool) (float64, int) {
	neighbors := idx.Query(strategy, lon, lat, k, within)
	if len(neighbors) == 0 {
		return math.NaN(), 0
	}

	var sumW, sumWV float64
	for _, e := range neighbors {
		d := geodetic.Distance(idx.sys, strategy, lon, lat, e.Lon, e.Lat)
		if d == 0 {
			return float64(e.Value), len(neighbors)
		}
		w := 1 / math.Pow(d, power)
		sumW += w
		sumWV += w * float64(e.Value)
	}
	return sumWV / sumW, len(neighbors)
}

// RBFKernel selects the radial basis function used by RBF.
type RBFKernel int

const (
	Linear RBFKernel = iota
	Cubic
	ThinPlate
	Gaussian
	Multiquadric
	InverseMultiquadric
)

func (k RBFKernel) apply(r, epsilon float64) float64 {
	switch k {
	case Linear:
		return r
	case Cubic:
		return r * r * r
	case ThinPlate:
		if r == 0 {
			return 0
		}
		return r * r * math.Log(r)
	case Gaussian:
		return math.Exp(-(r * r) / (epsilon * epsilon))
	case Multiquadric:
		return math.Sqrt(r*r + epsilon*epsilon)
	case InverseMultiquadric:
		return 1 / math.Sqrt(r*r+epsilon*epsilon)
	default:
		return r
	}
}

// RBF evaluates a radial basis function interpolant fitted to the k
// nearest neighbors of every (lons[i], lats[i]) target: it solves the
// NxN system Phi*w = values (Phi_ij = kernel(dist(p_i, p_j))) by
// Gaussian elimination with partial pivoting, then evaluates
// sum_i w_i * kernel(dist(target, p_i)) (spec §4.G). With within=true,
// a target outside the ECEF bounding box of its k neighbors bails out
// with NaN and a neighbor count of 0 instead of fitting an
// extrapolated surface. Returns SingularSystem if a fitted neighbor
// set is degenerate (e.g. duplicate points collapsing Phi's rank).
func RBF[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lons, lats []float64, k int, kernel RBFKernel, epsilon float64, within bool) ([]float64, []int, error) {
	const op = "rtree.RBF"
	if len(lons) != len(lats) {
		return nil, nil, pyerr.New(pyerr.InvalidShape, op, "lons/lats length mismatch: %d/%d", len(lons), len(lats))
	}
	if idx.Len() == 0 {
		return nil, nil, pyerr.New(pyerr.OutOfDomain, op, "index has no points")
	}
	if epsilon == 0 {
		epsilon = 1
	}

	values := make([]float64, len(lons))
	counts := make([]int, len(lons))
	for i := range lons {
		v, n, err := rbfAt(idx, strategy, lons[i], lats[i], k, kernel, epsilon, within)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
		counts[i] = n
	}
	return values, counts, nil
}

func rbfAt[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lon, lat float64, k int, kernel RBFKernel, epsilon float64, within bool) (float64, int, error) {
	const op = "rtree.RBF"
	neighbors := idx.Query(strategy, lon, lat, k, within)
	n := len(neighbors)
	if n == 0 {
		return math.NaN(), 0, nil
	}

	phi := make([][]float64, n)
	rhs := make([]float64, n)
	for i := 0; i < n; i++ {
		phi[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := geodetic.Distance(idx.sys, strategy, neighbors[i].Lon, neighbors[i].Lat, neighbors[j].Lon, neighbors[j].Lat)
			phi[i][j] = kernel.apply(d, epsilon)
		}
		rhs[i] = float64(neighbors[i].Value)
	}

	weights, err := solveLinearSystem(phi, rhs)
	if err != nil {
		return 0, n, pyerr.Wrap(pyerr.SingularSystem, op, err, "fitting radial basis weights")
	}

	var result float64
	for i, e := range neighbors {
		d := geodetic.Distance(idx.sys, strategy, lon, lat, e.Lon, e.Lat)
		result += weights[i] * kernel.apply(d, epsilon)
	}
	return result, n, nil
}

// solveLinearSystem solves A*x = b via Gaussian elimination with
// partial pivoting. No third-party linear algebra library appears
// anywhere in this module's source corpus, so this small dense solver
// (bounded by the neighbor count k, typically well under 100) is
// implemented directly rather than reaching outside the corpus for a
// dependency with no other footing here.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
	}
	x := append([]float64(nil), b...)

	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(m[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(m[r][col]); v > best {
				best, pivot = v, r
			}
		}
		if best < 1e-12 {
			return nil, pyerr.New(pyerr.SingularSystem, "rtree.solveLinearSystem", "matrix is singular or near-singular")
		}
		if pivot != col {
			m[col], m[pivot] = m[pivot], m[col]
			x[col], x[pivot] = x[pivot], x[col]
		}
		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c < n; c++ {
				m[r][c] -= factor * m[col][c]
			}
			x[r] -= factor * x[col]
		}
	}

	result := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := x[i]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * result[j]
		}
		result[i] = sum / m[i][i]
	}
	return result, nil
}

// WindowKernel selects the weighting function used by Window.
type WindowKernel int

const (
	Blackman WindowKernel = iota
	BlackmanHarris
	Boxcar
	FlatTop
	Lanczos
	WindowGaussian
	Hamming
	Hann
	Nuttall
	Parzen
	Welch
)

// apply evaluates the window function at normalized distance u in
// [0, 1]; values above 1 are outside the window's support.
func (k WindowKernel) apply(u float64) float64 {
	if u > 1 {
		return 0
	}
	switch k {
	case Boxcar:
		return 1
	case Hann:
		return 0.5 * (1 + math.Cos(math.Pi*u))
	case Hamming:
		return 0.54 + 0.46*math.Cos(math.Pi*u)
	case Blackman:
		return 0.42 + 0.5*math.Cos(math.Pi*u) + 0.08*math.Cos(2*math.Pi*u)
	case BlackmanHarris:
		return 0.35875 + 0.48829*math.Cos(math.Pi*u) + 0.14128*math.Cos(2*math.Pi*u) + 0.01168*math.Cos(3*math.Pi*u)
	case Nuttall:
		return 0.355768 + 0.487396*math.Cos(math.Pi*u) + 0.144232*math.Cos(2*math.Pi*u) + 0.012604*math.Cos(3*math.Pi*u)
	case FlatTop:
		return 0.21557895 + 0.41663158*math.Cos(math.Pi*u) + 0.277263158*math.Cos(2*math.Pi*u) +
			0.083578947*math.Cos(3*math.Pi*u) + 0.006947368*math.Cos(4*math.Pi*u)
	case Parzen:
		if u <= 0.5 {
			return 1 - 6*u*u*(1-u)
		}
		return 2 * math.Pow(1-u, 3)
	case Welch:
		return 1 - u*u
	case Lanczos:
		if u == 0 {
			return 1
		}
		return math.Sin(math.Pi*u) / (math.Pi * u)
	case WindowGaussian:
		const sigma = 0.4
		return math.Exp(-0.5 * (u / sigma) * (u / sigma))
	default:
		return 1
	}
}

// Window evaluates a window-function-weighted average over every
// point within radiusMeters of each (lons[i], lats[i]) target,
// normalizing distance to [0, 1] by radiusMeters before applying the
// kernel (spec §4.G). A target with no points in radius (or whose
// weights sum to zero) reports NaN with a neighbor count of 0.
func Window[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lons, lats []float64, radiusMeters float64, kernel WindowKernel) ([]float64, []int, error) {
	const op = "rtree.Window"
	if len(lons) != len(lats) {
		return nil, nil, pyerr.New(pyerr.InvalidShape, op, "lons/lats length mismatch: %d/%d", len(lons), len(lats))
	}

	values := make([]float64, len(lons))
	counts := make([]int, len(lons))
	for i := range lons {
		values[i], counts[i] = windowAt(idx, strategy, lons[i], lats[i], radiusMeters, kernel)
	}
	return values, counts, nil
}

func windowAt[T ~float32 | ~float64](idx *Index[T], strategy geodetic.DistanceStrategy, lon, lat, radiusMeters float64, kernel WindowKernel) (float64, int) {
	points := idx.QueryBall(strategy, lon, lat, radiusMeters)
	if len(points) == 0 {
		return math.NaN(), 0
	}
	var sumW, sumWV float64
	for _, e := range points {
		d := geodetic.Distance(idx.sys, strategy, lon, lat, e.Lon, e.Lat)
		u := d / radiusMeters
		w := kernel.apply(u)
		sumW += w
		sumWV += w * float64(e.Value)
	}
	if sumW == 0 {
		return math.NaN(), 0
	}
	return sumWV / sumW, len(points)
}
