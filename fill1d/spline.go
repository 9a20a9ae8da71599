// Package fill1d provides the univariate spline backends used by
// interp's bicubic/spline 2-D base (spec §4.E, §4.K). Each FittingModel
// is evaluated by a freshly constructed Spline value; per the "scoped
// GSL workspace" design note (spec §9), a Spline is never shared
// across goroutines — callers construct one per worker range.
package fill1d

import (
	"math"
	"sort"

	"github.com/readthedocs-assistant/pangeo-pyinterp/pyerr"
)

// FittingModel selects the 1-D interpolation family.
type FittingModel int

const (
	Linear FittingModel = iota
	Polynomial
	CSpline
	CSplinePeriodic
	Akima
	AkimaPeriodic
	Steffen
)

// MinPoints returns the minimum number of samples the fitting model
// requires (spec §7's InvalidArgument: "nx/ny below the spline's
// minimum").
func (m FittingModel) MinPoints() int {
	switch m {
	case Linear:
		return 2
	case Polynomial:
		return 3
	case CSpline, CSplinePeriodic:
		return 3
	case Akima, AkimaPeriodic, Steffen:
		return 5
	default:
		return 2
	}
}

// Spline is a fitted 1-D interpolant over non-decreasing x.
// Construct one fresh per evaluation range; it owns no shared state.
type Spline struct {
	model FittingModel
	x, y  []float64
	// cubic spline second derivatives, computed lazily for CSpline family.
	m []float64
}

// New fits a Spline of the given model to (x, y), x sorted in
// non-decreasing order. Returns InvalidArgument if len(x) is below the
// model's MinPoints or x is not sorted; repeated x values are accepted.
func New(model FittingModel, x, y []float64) (*Spline, error) {
	const op = "fill1d.New"
	if len(x) != len(y) {
		return nil, pyerr.New(pyerr.InvalidShape, op, "x and y length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < model.MinPoints() {
		return nil, pyerr.New(pyerr.InvalidArgument, op, "model requires at least %d points, got %d", model.MinPoints(), len(x))
	}
	if !sort.Float64sAreSorted(x) {
		return nil, pyerr.New(pyerr.InvalidArgument, op, "x must be sorted in non-decreasing order")
	}

	s := &Spline{model: model, x: x, y: y}
	switch model {
	case CSpline, CSplinePeriodic:
		s.m = naturalCubicSecondDerivatives(x, y, model == CSplinePeriodic)
	}
	return s, nil
}

// Eval evaluates the spline at x0, which must lie in [x[0], x[n-1]];
// callers are responsible for clamping/extrapolation policy (the
// boundary policy lives in sampler, not here).
func (s *Spline) Eval(x0 float64) float64 {
	switch s.model {
	case Linear:
		return s.evalLinear(x0)
	case Polynomial:
		return s.evalPolynomial(x0)
	case CSpline, CSplinePeriodic:
		return s.evalCubic(x0)
	case Akima, AkimaPeriodic:
		return s.evalAkima(x0)
	case Steffen:
		return s.evalSteffen(x0)
	default:
		return math.NaN()
	}
}

// bracket returns the index i such that x[i] <= x0 <= x[i+1], clamped
// to the interior.
func (s *Spline) bracket(x0 float64) int {
	n := len(s.x)
	i := sort.SearchFloat64s(s.x, x0)
	if i == 0 {
		return 0
	}
	if i >= n {
		return n - 2
	}
	return i - 1
}

// evalLinear implements the textbook t*y0 + u*y1 linear form (spec
// §9's authoritative form: t = (x1-x)/delta, u = (x-x0)/delta), not
// the alternate (t+u) divisor form flagged as a divergence to avoid.
func (s *Spline) evalLinear(x0 float64) float64 {
	i := s.bracket(x0)
	x0v, x1v := s.x[i], s.x[i+1]
	y0v, y1v := s.y[i], s.y[i+1]
	delta := x1v - x0v
	if delta == 0 {
		return y0v
	}
	t := (x1v - x0) / delta
	u := (x0 - x0v) / delta
	return t*y0v + u*y1v
}

// evalPolynomial fits a Lagrange polynomial through the full sample
// set. Intended for small windows (the bicubic frame is typically
// 2nx points), so the O(n^2) evaluation cost is acceptable.
func (s *Spline) evalPolynomial(x0 float64) float64 {
	n := len(s.x)
	result := 0.0
	for i := 0; i < n; i++ {
		term := s.y[i]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			term *= (x0 - s.x[j]) / (s.x[i] - s.x[j])
		}
		result += term
	}
	return result
}

// naturalCubicSecondDerivatives dispatches to the cyclic tridiagonal
// solve for CSplinePeriodic (the period closes the curve so its first
// and second derivatives agree at the two endpoints, the point of
// choosing a periodic model for circular-longitude data) or the
// natural boundary solve otherwise. The cyclic solve needs at least
// three independent intervals (n >= 4); smaller periodic inputs fall
// back to the natural solve, which is the best available fit at that
// size anyway.
func naturalCubicSecondDerivatives(x, y []float64, periodic bool) []float64 {
	if periodic && len(x) >= 4 {
		return cyclicCubicSecondDerivatives(x, y)
	}
	return naturalCubicSecondDerivativesNatural(x, y)
}

// cyclicCubicSecondDerivatives solves for second derivatives under the
// periodic boundary condition m[0] == m[n-1] (the caller is expected
// to have supplied y[0] == y[n-1], one full period). This reduces to a
// cyclic tridiagonal system of size n-1, solved via the
// Sherman-Morrison reduction to two ordinary tridiagonal solves
// (Press et al., "cyclic").
func cyclicCubicSecondDerivatives(x, y []float64) []float64 {
	n := len(x)
	N := n - 1
	h := make([]float64, N)
	for i := 0; i < N; i++ {
		h[i] = x[i+1] - x[i]
	}

	a := make([]float64, N)
	b := make([]float64, N)
	c := make([]float64, N)
	r := make([]float64, N)
	for i := 0; i < N; i++ {
		li := (i - 1 + N) % N
		ri := (i + 1) % N
		a[i] = h[li]
		c[i] = h[i]
		b[i] = 2 * (h[li] + h[i])
		r[i] = 6 * ((y[i+1]-y[i])/h[i] - (y[i]-y[li])/h[li])
		_ = ri
	}
	alpha := c[N-1]
	beta := a[0]

	mCyclic := solveCyclicTridiagonal(a, b, c, r, alpha, beta)
	m := make([]float64, n)
	copy(m, mCyclic)
	m[n-1] = m[0]
	return m
}

// solveTridiagonal runs the Thomas algorithm over a[1:], b, c[:n-1]
// (a[0] and c[n-1] are unused, matching the standard convention for
// the corner-stripped matrix cyclic reduction operates on).
func solveTridiagonal(a, b, c, r []float64) []float64 {
	n := len(b)
	cp := make([]float64, n)
	dp := make([]float64, n)
	cp[0] = c[0] / b[0]
	dp[0] = r[0] / b[0]
	for i := 1; i < n; i++ {
		m := b[i] - a[i]*cp[i-1]
		if i < n-1 {
			cp[i] = c[i] / m
		}
		dp[i] = (r[i] - a[i]*dp[i-1]) / m
	}
	x := make([]float64, n)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x
}

// solveCyclicTridiagonal solves a tridiagonal system whose corners wrap
// (alpha couples the last row to x[0], beta couples the first row to
// x[n-1]) via the Sherman-Morrison perturbation: strip the corners into
// a rank-1 update, solve the resulting plain tridiagonal system twice,
// and correct.
func solveCyclicTridiagonal(a, b, c, r []float64, alpha, beta float64) []float64 {
	n := len(b)
	if n == 1 {
		return []float64{r[0] / (b[0] + alpha + beta)}
	}

	gamma := -b[0]
	bb := append([]float64(nil), b...)
	bb[0] = b[0] - gamma
	bb[n-1] = b[n-1] - alpha*beta/gamma

	x := solveTridiagonal(a, bb, c, r)

	u := make([]float64, n)
	u[0] = gamma
	u[n-1] = alpha
	z := solveTridiagonal(a, bb, c, u)

	fact := (x[0] + beta*x[n-1]/gamma) / (1 + z[0] + beta*z[n-1]/gamma)
	for i := range x {
		x[i] -= fact * z[i]
	}
	return x
}

func naturalCubicSecondDerivativesNatural(x, y []float64) []float64 {
	n := len(x)
	alpha := make([]float64, n)
	l := make([]float64, n)
	mu := make([]float64, n)
	z := make([]float64, n)
	h := make([]float64, n-1)

	for i := 0; i < n-1; i++ {
		h[i] = x[i+1] - x[i]
	}
	for i := 1; i < n-1; i++ {
		alpha[i] = 3*(y[i+1]-y[i])/h[i] - 3*(y[i]-y[i-1])/h[i-1]
	}

	l[0] = 1
	mu[0] = 0
	z[0] = 0
	for i := 1; i < n-1; i++ {
		l[i] = 2*(x[i+1]-x[i-1]) - h[i-1]*mu[i-1]
		if l[i] == 0 {
			l[i] = 1e-12
		}
		mu[i] = h[i] / l[i]
		z[i] = (alpha[i] - h[i-1]*z[i-1]) / l[i]
	}
	l[n-1] = 1
	z[n-1] = 0

	c := make([]float64, n)
	for j := n - 2; j >= 0; j-- {
		c[j] = z[j] - mu[j]*c[j+1]
	}
	// c holds S''/2 at each node; evalCubic expects S'' itself.
	for j := range c {
		c[j] *= 2
	}
	return c
}

func (s *Spline) evalCubic(x0 float64) float64 {
	i := s.bracket(x0)
	h := s.x[i+1] - s.x[i]
	if h == 0 {
		return s.y[i]
	}
	a := (s.x[i+1] - x0) / h
	b := (x0 - s.x[i]) / h
	return a*s.y[i] + b*s.y[i+1] +
		((a*a*a-a)*s.m[i]+(b*b*b-b)*s.m[i+1])*(h*h)/6
}

// evalAkima implements Akima's 1970 piecewise cubic using local slope
// estimates that resist overshoot near outliers. AkimaPeriodic uses the
// same evaluator but wraps slope lookups at the boundary (y[0] == y[n-1]
// is assumed for one full period) instead of clamping to the edge
// segment, so the fitted tangent at each end reflects the curve closing
// on itself rather than a one-sided estimate.
func (s *Spline) evalAkima(x0 float64) float64 {
	n := len(s.x)
	slopes := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		slopes[i] = (s.y[i+1] - s.y[i]) / (s.x[i+1] - s.x[i])
	}
	periodic := s.model == AkimaPeriodic
	t := make([]float64, n)
	for i := range t {
		t[i] = akimaTangent(slopes, i, periodic)
	}

	i := s.bracket(x0)
	h := s.x[i+1] - s.x[i]
	dx := x0 - s.x[i]
	p0 := s.y[i]
	p1 := t[i]
	p2 := (3*slopes[i] - 2*t[i] - t[i+1]) / h
	p3 := (t[i] + t[i+1] - 2*slopes[i]) / (h * h)
	return p0 + p1*dx + p2*dx*dx + p3*dx*dx*dx
}

// akimaTangent estimates the tangent at node i from the four
// surrounding segment slopes. Under periodic, slope lookups wrap mod
// len(slopes) (segment n-2, the last one, is adjacent to segment 0
// since node n-1 coincides with node 0); otherwise out-of-range lookups
// clamp to the nearest edge segment.
func akimaTangent(slopes []float64, i int, periodic bool) float64 {
	n := len(slopes)
	get := func(k int) float64 {
		if periodic {
			k = ((k % n) + n) % n
			return slopes[k]
		}
		if k < 0 {
			k = 0
		}
		if k > n-1 {
			k = n - 1
		}
		return slopes[k]
	}
	if n < 2 {
		return 0
	}
	m1, m2 := get(i-2), get(i-1)
	m3, m4 := get(i), get(i+1)
	w1 := math.Abs(m4 - m3)
	w2 := math.Abs(m2 - m1)
	if w1+w2 == 0 {
		return (m2 + m3) / 2
	}
	return (w1*m2 + w2*m3) / (w1 + w2)
}

// evalSteffen implements Steffen's monotonicity-preserving cubic
// Hermite spline: each segment's tangents are clipped so the curve
// never overshoots the data, guaranteeing no spurious extrema between
// samples.
func (s *Spline) evalSteffen(x0 float64) float64 {
	n := len(s.x)
	h := make([]float64, n-1)
	slope := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = s.x[i+1] - s.x[i]
		slope[i] = (s.y[i+1] - s.y[i]) / h[i]
	}

	tangent := func(i int) float64 {
		switch {
		case i == 0:
			return slope[0]
		case i == n-1:
			return slope[n-2]
		default:
			sL, sR := slope[i-1], slope[i]
			if sL*sR <= 0 {
				return 0
			}
			pSlope := (h[i-1]*sR + h[i]*sL) / (h[i-1] + h[i])
			bound := 2 * math.Min(math.Abs(sL), math.Abs(sR))
			if math.Abs(pSlope) > bound {
				if pSlope > 0 {
					return bound
				}
				return -bound
			}
			return pSlope
		}
	}

	i := s.bracket(x0)
	t0, t1 := tangent(i), tangent(i+1)
	dx := x0 - s.x[i]
	hi := h[i]
	a := (t0 + t1 - 2*slope[i]) / (hi * hi)
	b := (3*slope[i] - 2*t0 - t1) / hi
	c := t0
	d := s.y[i]
	return a*dx*dx*dx + b*dx*dx + c*dx + d
}
