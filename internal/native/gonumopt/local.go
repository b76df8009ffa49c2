package gonumopt

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/manakau-com/node-nlopt/internal/native"
)

const (
	maxOuterIterations = 50
	initialRho         = 10
	maxRho             = 1e12

	// gradientThreshold ends a gradient based minimization at a stationary
	// point, as gonum does when Settings is nil.
	gradientThreshold = 1e-12
	// stationaryTol is the infinity norm below which a failed line search is
	// taken as convergence rather than roundoff.
	stationaryTol = 1e-8
)

// local runs the gonum method from x0. Constrained problems go through an
// augmented Lagrangian loop around it.
func (r *run) local(x0 []float64) native.Result {
	x := r.clamped(x0)
	if r.outputs == 0 {
		code, _ := r.minimize(x, nil)
		return r.result(code)
	}

	pen := &penalty{lambda: make([]float64, r.outputs), rho: initialRho}
	prevViol := math.Inf(1)
	code := native.Failure
	converged := false
	for outer := 0; outer < maxOuterIterations; outer++ {
		var next []float64
		code, next = r.minimize(x, pen)
		if r.stop != 0 {
			break
		}

		// Constraint values at the inner solution drive the update.
		r.merit(next, nil, nil)
		if r.stop != 0 {
			break
		}
		viol := r.violation()
		k := 0
		for _, c := range r.h.constraints {
			for range c.tols {
				pen.lambda[k] += pen.rho * r.cval[k]
				if !c.equality && pen.lambda[k] < 0 {
					pen.lambda[k] = 0
				}
				k++
			}
		}

		moved := !r.outerConverged(x, next)
		x = next
		if viol == 0 && !moved {
			converged = true
			break
		}
		if viol > 0.25*prevViol {
			pen.rho = math.Min(pen.rho*10, maxRho)
		}
		prevViol = viol
	}

	if r.stop != 0 {
		return r.stop
	}
	switch {
	case !r.hasBest || r.best.violation > 0:
		return native.Failure
	case converged && r.h.stop.xtol():
		return native.XtolReached
	case converged, code.OK():
		return native.Success
	}
	return native.RoundoffLimited
}

func (r *run) outerConverged(prev, next []float64) bool {
	if r.h.stop.xtol() {
		return r.xClose(prev, next)
	}
	for i := range prev {
		if math.Abs(prev[i]-next[i]) > 1e-8*(1+math.Abs(next[i])) {
			return false
		}
	}
	return true
}

// evalCache lets a derivative based method read f and its gradient from a
// single host call.
type evalCache struct {
	x     []float64
	f     float64
	g     []float64
	valid bool
}

func (c *evalCache) fill(r *run, x []float64, pen *penalty) {
	if len(c.g) != len(x) {
		c.g = make([]float64, len(x))
	}
	c.f = r.merit(x, c.g, pen)
	c.x = append(c.x[:0], x...)
	c.valid = true
}

// minimize runs one gonum minimization of the merit function from x and
// returns its outcome and the final point.
func (r *run) minimize(x []float64, pen *penalty) (native.Result, []float64) {
	method := r.h.profile.method()
	if nm, ok := method.(*optimize.NelderMead); ok {
		nm.SimplexSize = r.initialStep(x)
	}

	cache := &evalCache{}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !r.h.profile.gradient {
				return r.merit(x, nil, pen)
			}
			cache.fill(r, x, pen)
			return cache.f
		},
		Status: func() (optimize.Status, error) {
			if r.stopped() {
				return optimize.Failure, errStop
			}
			return optimize.NotTerminated, nil
		},
	}
	if r.h.profile.gradient {
		problem.Grad = func(grad, x []float64) {
			if !cache.valid || !floats.Equal(cache.x, x) {
				cache.fill(r, x, pen)
			}
			copy(grad, cache.g)
		}
	}

	rec := &xtolRecorder{r: r}
	settings := &optimize.Settings{
		Converger:  r.converger(),
		Recorder:   rec,
		Concurrent: 1,
	}
	if r.h.profile.gradient {
		settings.GradientThreshold = gradientThreshold
	}
	res, err := optimize.Minimize(problem, x, settings, method)

	next := x
	if res != nil && len(res.X) == len(x) {
		next = r.clamped(res.X)
	}
	return r.code(res, err, rec.converged), next
}

func (r *run) converger() optimize.Converger {
	s := r.h.stop
	if s.ftol() {
		return &optimize.FunctionConverge{
			Absolute:   s.ftolAbs,
			Relative:   s.ftolRel,
			Iterations: 2*r.h.n + 10,
		}
	}
	return &optimize.FunctionConverge{
		Absolute:   1e-10,
		Iterations: 100,
	}
}

// code maps the outcome of a gonum minimization to a result code.
func (r *run) code(res *optimize.Result, err error, xtol bool) native.Result {
	switch {
	case r.stop != 0:
		return r.stop
	case xtol:
		return native.XtolReached
	case err != nil:
		if errors.Is(err, optimize.ErrLinesearcherFailure) ||
			errors.Is(err, optimize.ErrNoProgress) ||
			errors.Is(err, optimize.ErrNonDescentDirection) {
			if stationary(res) {
				return native.Success
			}
			return native.RoundoffLimited
		}
		return native.Failure
	case res == nil:
		return native.Failure
	}

	switch res.Status {
	case optimize.FunctionConvergence:
		if r.h.stop.ftol() {
			return native.FtolReached
		}
		return native.Success
	case optimize.GradientThreshold:
		return native.Success
	case optimize.RuntimeLimit:
		return native.MaxtimeReached
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit:
		return native.MaxevalReached
	case optimize.Failure:
		return native.Failure
	}
	return native.Success
}

// stationary reports whether the gradient at the final point of res is
// numerically zero.
func stationary(res *optimize.Result) bool {
	if res == nil || len(res.Gradient) == 0 {
		return false
	}
	return floats.Norm(res.Gradient, math.Inf(1)) <= stationaryTol
}

// initialStep sizes the Nelder-Mead simplex the way nlopt picks its default
// initial step: a quarter of the bound box, else a tenth of |x|, else 1.
func (r *run) initialStep(x []float64) float64 {
	var step float64
	for i, xi := range x {
		lo, hi := r.h.lower[i], r.h.upper[i]
		s := 1.0
		switch {
		case !math.IsInf(lo, 0) && !math.IsInf(hi, 0) && hi > lo:
			s = 0.25 * (hi - lo)
		case xi != 0:
			s = 0.1 * math.Abs(xi)
		}
		step = math.Max(step, s)
	}
	return step
}

// xtolRecorder ends a minimization when consecutive major iterates agree
// within the x tolerances. It also stops the minimization as soon as the run
// is stopping.
type xtolRecorder struct {
	r         *run
	prev      []float64
	converged bool
}

func (rec *xtolRecorder) Init() error {
	rec.prev = nil
	rec.converged = false
	return nil
}

func (rec *xtolRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if rec.r.stopped() {
		return errStop
	}
	if op != optimize.MajorIteration || !rec.r.h.stop.xtol() {
		return nil
	}
	// Nelder-Mead may report the same vertex again; only moves count.
	if rec.prev != nil && !floats.Equal(rec.prev, loc.X) {
		if rec.r.xClose(rec.prev, loc.X) {
			rec.converged = true
			return errStop
		}
	}
	rec.prev = append(rec.prev[:0], loc.X...)
	return nil
}
