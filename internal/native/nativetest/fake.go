// Package nativetest provides a recording native.Library for tests of code
// that drives optimizer handles.
package nativetest

import (
	"math"
	"sync"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// Call is one recorded operation on a handle.
type Call struct {
	Op    string
	Value float64
	Slice []float64
	Kind  string
}

// Constraint is a registered scalar constraint.
type Constraint struct {
	Kind native.ConstraintKind
	Func native.Func
	Tol  float64
}

// MConstraint is a registered vector constraint.
type MConstraint struct {
	Kind native.ConstraintKind
	Func native.MFunc
	Tols []float64
}

// RunFunc replaces the default Optimize behaviour.
type RunFunc func(h *Handle, x []float64) (native.Result, float64)

// Library is a fake backend. The zero value is not usable; use New.
type Library struct {
	mu sync.Mutex

	// CreateResult, when not Success, makes Create fail with that code.
	CreateResult native.Result
	// Results overrides the code returned by an operation, keyed by the
	// operation name recorded in Call.Op.
	Results map[string]native.Result
	// Run overrides Optimize.
	Run RunFunc

	handles []*Handle
}

// New returns a fake library whose operations all succeed.
func New() *Library {
	return &Library{
		CreateResult: native.Success,
		Results:      make(map[string]native.Result),
	}
}

// Name implements native.Library.
func (l *Library) Name() string { return "fake" }

// Create implements native.Library.
func (l *Library) Create(algorithm native.Algorithm, n uint) (native.Handle, native.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.CreateResult != native.Success {
		return nil, l.CreateResult
	}
	if !algorithm.Valid() {
		return nil, native.InvalidArgs
	}
	h := &Handle{lib: l, Algorithm: algorithm, N: n}
	l.handles = append(l.handles, h)
	return h, native.Success
}

// Handles returns every handle created so far.
func (l *Library) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Handle(nil), l.handles...)
}

// Last returns the most recently created handle, or nil.
func (l *Library) Last() *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.handles) == 0 {
		return nil
	}
	return l.handles[len(l.handles)-1]
}

func (l *Library) result(op string) native.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.Results[op]; ok {
		return r
	}
	return native.Success
}

// Handle is a fake optimizer handle.
type Handle struct {
	lib *Library

	Algorithm native.Algorithm
	N         uint

	Direction    native.Direction
	Objective    native.Func
	Bounds       map[native.Bound][]float64
	Tolerances   map[native.Tolerance]float64
	Constraints  []Constraint
	MConstraints []MConstraint

	Calls        []Call
	Optimized    int
	Destroyed    int
	ForceStopped bool
}

func (h *Handle) record(c Call) native.Result {
	h.Calls = append(h.Calls, c)
	return h.lib.result(c.Op)
}

// Ops returns the recorded operation names in order.
func (h *Handle) Ops() []string {
	ops := make([]string, len(h.Calls))
	for i, c := range h.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Dimension implements native.Handle.
func (h *Handle) Dimension() uint { return h.N }

// SetObjective implements native.Handle.
func (h *Handle) SetObjective(dir native.Direction, f native.Func) native.Result {
	r := h.record(Call{Op: "objective", Kind: dir.String()})
	if r == native.Success {
		h.Direction = dir
		h.Objective = f
	}
	return r
}

// SetBound implements native.Handle.
func (h *Handle) SetBound(b native.Bound, values []float64) native.Result {
	r := h.record(Call{Op: "bound", Kind: b.String(), Slice: append([]float64(nil), values...)})
	if uint(len(values)) != h.N {
		return native.InvalidArgs
	}
	if r == native.Success {
		if h.Bounds == nil {
			h.Bounds = make(map[native.Bound][]float64)
		}
		h.Bounds[b] = append([]float64(nil), values...)
	}
	return r
}

// SetTolerance implements native.Handle.
func (h *Handle) SetTolerance(t native.Tolerance, value float64) native.Result {
	r := h.record(Call{Op: t.String(), Value: value})
	if r == native.Success {
		if h.Tolerances == nil {
			h.Tolerances = make(map[native.Tolerance]float64)
		}
		h.Tolerances[t] = value
	}
	return r
}

// AddConstraint implements native.Handle.
func (h *Handle) AddConstraint(kind native.ConstraintKind, f native.Func, tol float64) native.Result {
	r := h.record(Call{Op: "constraint", Kind: kind.String(), Value: tol})
	if r == native.Success {
		h.Constraints = append(h.Constraints, Constraint{Kind: kind, Func: f, Tol: tol})
	}
	return r
}

// AddMConstraint implements native.Handle.
func (h *Handle) AddMConstraint(kind native.ConstraintKind, f native.MFunc, tols []float64) native.Result {
	r := h.record(Call{Op: "mconstraint", Kind: kind.String(), Slice: append([]float64(nil), tols...)})
	if r == native.Success {
		h.MConstraints = append(h.MConstraints, MConstraint{Kind: kind, Func: f, Tols: append([]float64(nil), tols...)})
	}
	return r
}

// Optimize implements native.Handle. Without a Run override it evaluates the
// objective and every constraint once at x.
func (h *Handle) Optimize(x []float64) (native.Result, float64) {
	h.record(Call{Op: "optimize", Slice: append([]float64(nil), x...)})
	h.Optimized++
	if h.lib.Run != nil {
		return h.lib.Run(h, x)
	}
	return DefaultRun(h, x)
}

// DefaultRun evaluates every registered function once at x, requesting
// gradients when the algorithm is derivative based.
func DefaultRun(h *Handle, x []float64) (native.Result, float64) {
	if h.Objective == nil {
		return native.InvalidArgs, math.NaN()
	}
	var grad []float64
	if h.Algorithm.NeedsGradient() {
		grad = make([]float64, len(x))
	}
	f := h.Objective(x, grad)
	if h.ForceStopped {
		return native.ForcedStop, f
	}
	for _, c := range h.Constraints {
		var g []float64
		if grad != nil {
			g = make([]float64, len(x))
		}
		c.Func(x, g)
		if h.ForceStopped {
			return native.ForcedStop, f
		}
	}
	for _, c := range h.MConstraints {
		result := make([]float64, len(c.Tols))
		var g []float64
		if grad != nil {
			g = make([]float64, len(c.Tols)*len(x))
		}
		c.Func(result, x, g)
		if h.ForceStopped {
			return native.ForcedStop, f
		}
	}
	return h.lib.result("optimize"), f
}

// ForceStop implements native.Handle.
func (h *Handle) ForceStop() {
	h.ForceStopped = true
}

// Destroy implements native.Handle.
func (h *Handle) Destroy() {
	h.Destroyed++
}
