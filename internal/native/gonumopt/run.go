package gonumopt

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// errStop aborts a gonum minimization from a Status or Recorder hook.
var errStop = errors.New("gonumopt: stop requested")

// point is an evaluated location.
type point struct {
	x []float64
	// f is the objective value in the caller's direction.
	f float64
	// violation is the largest constraint violation beyond its tolerance.
	violation float64
}

// run is the state of one Optimize call. Every evaluation goes through
// merit, which counts it, enforces the stopping criteria and keeps the best
// point seen so far.
type run struct {
	h     *handle
	start time.Time
	// sign turns maximization into minimization.
	sign  float64
	evals int
	// stop is the reason the run must end, zero while it may continue.
	stop native.Result

	best    point
	hasBest bool

	outputs int
	cval    []float64
	cgrad   []float64
	fgrad   []float64
	xc      []float64
}

func newRun(h *handle) *run {
	r := &run{h: h, start: time.Now(), sign: 1}
	if h.dir == native.Maximize {
		r.sign = -1
	}
	for _, c := range h.constraints {
		r.outputs += len(c.tols)
	}
	r.cval = make([]float64, r.outputs)
	r.cgrad = make([]float64, r.outputs*h.n)
	r.fgrad = make([]float64, h.n)
	r.xc = make([]float64, h.n)
	return r
}

// stopped reports whether the run must end, latching the first reason.
func (r *run) stopped() bool {
	if r.stop != 0 {
		return true
	}
	s := r.h.stop
	switch {
	case r.h.forced.Load():
		r.stop = native.ForcedStop
	case s.maxEval > 0 && r.evals >= s.maxEval:
		r.stop = native.MaxevalReached
	case s.maxTime > 0 && time.Since(r.start) >= s.maxTime:
		r.stop = native.MaxtimeReached
	}
	return r.stop != 0
}

// result prefers the stop reason over code.
func (r *run) result(code native.Result) native.Result {
	if r.stop != 0 {
		return r.stop
	}
	return code
}

// penalty holds augmented Lagrangian multipliers, one per constraint output.
type penalty struct {
	lambda []float64
	rho    float64
}

// merit evaluates the minimized function at x: the objective, negated for
// maximization, plus the augmented Lagrangian terms of pen. grad, when not
// nil, receives its gradient. Points are projected onto the bound box before
// evaluation. Once the run is stopping no callback is made and +Inf is
// returned.
func (r *run) merit(x, grad []float64, pen *penalty) float64 {
	if r.stopped() {
		zero(grad)
		return math.Inf(1)
	}

	n := r.h.n
	xc := r.xc
	for i := range xc {
		xc[i] = math.Max(r.h.lower[i], math.Min(x[i], r.h.upper[i]))
	}

	var fg, cg []float64
	if grad != nil {
		fg, cg = r.fgrad, r.cgrad
		zero(fg)
	}
	r.evals++
	f := r.h.objective(xc, fg)
	if r.h.forced.Load() {
		r.stop = native.ForcedStop
		zero(grad)
		return math.Inf(1)
	}
	if !r.evalConstraints(xc, cg) {
		zero(grad)
		return math.Inf(1)
	}

	viol := r.violation()
	r.record(xc, f, viol)
	if s := r.h.stop; s.hasStopValue && viol == 0 && r.sign*f <= r.sign*s.stopValue {
		r.stop = native.StopvalReached
	}

	val := r.sign * f
	if grad != nil {
		for i := range grad {
			grad[i] = r.sign * fg[i]
		}
	}
	if pen != nil {
		k := 0
		for _, c := range r.h.constraints {
			for range c.tols {
				t := r.cval[k] + pen.lambda[k]/pen.rho
				if !c.equality && t < 0 {
					t = 0
				}
				val += 0.5 * pen.rho * t * t
				if grad != nil && t != 0 {
					floats.AddScaled(grad, pen.rho*t, r.cgrad[k*n:(k+1)*n])
				}
				k++
			}
		}
	}
	if grad != nil {
		// The projection is flat outside the box.
		for i := range grad {
			if x[i] < r.h.lower[i] || x[i] > r.h.upper[i] {
				grad[i] = 0
			}
		}
	}
	return val
}

// evalConstraints fills cval, and grad row by row when not nil. It returns
// false when a callback forced the run to stop.
func (r *run) evalConstraints(x, grad []float64) bool {
	n, k := r.h.n, 0
	for _, c := range r.h.constraints {
		m := len(c.tols)
		var g []float64
		if grad != nil {
			g = grad[k*n : (k+m)*n]
			zero(g)
		}
		c.eval(r.cval[k:k+m], x, g)
		if r.h.forced.Load() {
			r.stop = native.ForcedStop
			return false
		}
		k += m
	}
	return true
}

// violation is the largest amount by which cval breaks a constraint beyond
// its tolerance, zero when feasible.
func (r *run) violation() float64 {
	var worst float64
	k := 0
	for _, c := range r.h.constraints {
		for _, tol := range c.tols {
			v := r.cval[k]
			if c.equality {
				v = math.Abs(v)
			}
			switch {
			case math.IsNaN(v):
				worst = math.Inf(1)
			case v-tol > worst:
				worst = v - tol
			}
			k++
		}
	}
	return worst
}

func (r *run) record(x []float64, f, viol float64) {
	if math.IsNaN(f) {
		return
	}
	if r.hasBest && !r.better(f, viol) {
		return
	}
	r.best.x = append(r.best.x[:0], x...)
	r.best.f = f
	r.best.violation = viol
	r.hasBest = true
}

// better orders points: feasible before infeasible, then by objective for
// feasible points and by violation for infeasible ones.
func (r *run) better(f, viol float64) bool {
	b := r.best
	switch {
	case viol == 0 && b.violation > 0:
		return true
	case viol > 0 && b.violation == 0:
		return false
	case viol > 0:
		return viol < b.violation
	}
	return r.sign*f < r.sign*b.f
}

// clamped returns a copy of x projected onto the bound box.
func (r *run) clamped(x []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = math.Max(r.h.lower[i], math.Min(x[i], r.h.upper[i]))
	}
	return out
}

// xClose reports whether a and b agree within the x tolerances.
func (r *run) xClose(a, b []float64) bool {
	s := r.h.stop
	for i := range a {
		if math.Abs(a[i]-b[i]) > math.Max(s.xtolAbs, s.xtolRel*math.Abs(b[i])) {
			return false
		}
	}
	return true
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
