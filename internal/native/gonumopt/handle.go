package gonumopt

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/atomic"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// stopping holds the termination criteria. Zero means unset.
type stopping struct {
	stopValue    float64
	hasStopValue bool
	ftolRel      float64
	ftolAbs      float64
	xtolRel      float64
	xtolAbs      float64
	maxEval      int
	maxTime      time.Duration
}

func (s stopping) ftol() bool { return s.ftolRel > 0 || s.ftolAbs > 0 }
func (s stopping) xtol() bool { return s.xtolRel > 0 || s.xtolAbs > 0 }

// constraint is a group of m constraint outputs sharing one callback. A
// scalar constraint is a group of one.
type constraint struct {
	equality bool
	tols     []float64
	eval     native.MFunc
}

// handle implements native.Handle.
type handle struct {
	algorithm native.Algorithm
	profile   profile
	n         int
	rng       *rand.Rand

	dir         native.Direction
	objective   native.Func
	lower       []float64
	upper       []float64
	stop        stopping
	constraints []constraint

	forced *atomic.Bool
}

func newHandle(algorithm native.Algorithm, p profile, n int, rng *rand.Rand) *handle {
	h := &handle{
		algorithm: algorithm,
		profile:   p,
		n:         n,
		rng:       rng,
		lower:     make([]float64, n),
		upper:     make([]float64, n),
		forced:    atomic.NewBool(false),
	}
	for i := range h.lower {
		h.lower[i] = math.Inf(-1)
		h.upper[i] = math.Inf(1)
	}
	return h
}

func (h *handle) Dimension() uint { return uint(h.n) }

func (h *handle) SetObjective(dir native.Direction, f native.Func) native.Result {
	if f == nil {
		return native.InvalidArgs
	}
	h.dir = dir
	h.objective = f
	return native.Success
}

func (h *handle) SetBound(b native.Bound, values []float64) native.Result {
	if len(values) != h.n {
		return native.InvalidArgs
	}
	for _, v := range values {
		if math.IsNaN(v) {
			return native.InvalidArgs
		}
	}
	if b == native.UpperBound {
		copy(h.upper, values)
	} else {
		copy(h.lower, values)
	}
	return native.Success
}

func (h *handle) SetTolerance(t native.Tolerance, value float64) native.Result {
	if math.IsNaN(value) {
		return native.InvalidArgs
	}
	switch t {
	case native.StopValue:
		h.stop.stopValue, h.stop.hasStopValue = value, true
	case native.FTolRel:
		h.stop.ftolRel = value
	case native.FTolAbs:
		h.stop.ftolAbs = value
	case native.XTolRel:
		h.stop.xtolRel = value
	case native.XTolAbs:
		h.stop.xtolAbs = value
	case native.MaxEval:
		h.stop.maxEval = int(math.Max(0, math.Min(value, math.MaxInt32)))
	case native.MaxTime:
		h.stop.maxTime = time.Duration(math.Max(0, value) * float64(time.Second))
	default:
		return native.InvalidArgs
	}
	return native.Success
}

func (h *handle) AddConstraint(kind native.ConstraintKind, f native.Func, tol float64) native.Result {
	if f == nil {
		return native.InvalidArgs
	}
	return h.add(kind, []float64{tol}, func(result, x, grad []float64) {
		result[0] = f(x, grad)
	})
}

func (h *handle) AddMConstraint(kind native.ConstraintKind, f native.MFunc, tols []float64) native.Result {
	if f == nil || len(tols) == 0 {
		return native.InvalidArgs
	}
	return h.add(kind, append([]float64(nil), tols...), f)
}

func (h *handle) add(kind native.ConstraintKind, tols []float64, f native.MFunc) native.Result {
	equality := kind == native.Equality
	if equality && !h.profile.equality || !equality && !h.profile.inequality {
		return native.InvalidArgs
	}
	for _, tol := range tols {
		if tol < 0 || math.IsNaN(tol) {
			return native.InvalidArgs
		}
	}
	if equality && h.equalities()+len(tols) > h.n {
		// More equalities than unknowns.
		return native.InvalidArgs
	}
	h.constraints = append(h.constraints, constraint{equality: equality, tols: tols, eval: f})
	return native.Success
}

func (h *handle) equalities() int {
	var k int
	for _, c := range h.constraints {
		if c.equality {
			k += len(c.tols)
		}
	}
	return k
}

// ForceStop may be called from a callback while Optimize is running.
func (h *handle) ForceStop() {
	h.forced.Store(true)
}

func (h *handle) Destroy() {
	h.objective = nil
	h.constraints = nil
}

// Optimize runs the algorithm from x and leaves the best point found in x.
// x is left untouched when no evaluation succeeded.
func (h *handle) Optimize(x []float64) (native.Result, float64) {
	if h.objective == nil || len(x) != h.n {
		return native.InvalidArgs, math.NaN()
	}
	for i := range h.lower {
		if h.lower[i] > h.upper[i] {
			return native.InvalidArgs, math.NaN()
		}
	}
	if h.profile.global && !finite(h.lower, h.upper) {
		return native.InvalidArgs, math.NaN()
	}
	h.forced.Store(false)

	r := newRun(h)
	var code native.Result
	switch {
	case h.n == 0:
		r.merit(x, nil, nil)
		code = r.result(native.Success)
	case h.profile.global:
		code = r.global(x)
	default:
		code = r.local(x)
	}

	if !r.hasBest {
		return code, math.NaN()
	}
	copy(x, r.best.x)
	return code, r.best.f
}

func finite(lower, upper []float64) bool {
	for i := range lower {
		if math.IsInf(lower[i], 0) || math.IsInf(upper[i], 0) {
			return false
		}
	}
	return true
}
