// Package native describes the optimization library the bridge drives. The
// library is opaque: it owns the algorithms and numerics, exposes a handle per
// run, and reports every operation through a Result code.
//
// Backends register themselves by name (see Register) much like database/sql
// drivers: gonumopt is always available, cnlopt when built with the nlopt tag.
package native

// Func is a scalar function evaluated by the library: an objective or a scalar
// constraint. grad is nil unless the algorithm wants the gradient, in which
// case it has len(x) elements to be filled in place.
type Func func(x, grad []float64) float64

// MFunc is a vector-valued constraint. result has one element per constraint
// dimension; grad is nil or holds len(result)*len(x) elements, row i being the
// gradient of constraint i.
type MFunc func(result, x, grad []float64)

// Direction selects minimization or maximization of the objective.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "max"
	}
	return "min"
}

// Bound selects the lower or upper box bound.
type Bound int

const (
	LowerBound Bound = iota
	UpperBound
)

func (b Bound) String() string {
	if b == UpperBound {
		return "upper"
	}
	return "lower"
}

// Tolerance names a scalar stopping criterion.
type Tolerance int

const (
	StopValue Tolerance = iota
	FTolRel
	FTolAbs
	XTolRel
	XTolAbs
	MaxEval
	MaxTime
)

var toleranceNames = [...]string{"stopval", "ftol_rel", "ftol_abs", "xtol_rel", "xtol_abs", "maxeval", "maxtime"}

func (t Tolerance) String() string {
	if t < 0 || int(t) >= len(toleranceNames) {
		return "unknown"
	}
	return toleranceNames[t]
}

// ConstraintKind distinguishes inequality (fc(x) <= 0) from equality
// (h(x) == 0) constraints.
type ConstraintKind int

const (
	Inequality ConstraintKind = iota
	Equality
)

func (k ConstraintKind) String() string {
	if k == Equality {
		return "equality"
	}
	return "inequality"
}

// Library creates optimizer handles.
type Library interface {
	// Name identifies the backend.
	Name() string

	// Create allocates a handle for algorithm over n parameters. On failure
	// the handle is nil and the code says why.
	Create(algorithm Algorithm, n uint) (Handle, Result)
}

// Handle is one optimizer instance. A handle is used by a single goroutine for
// one run and must be destroyed exactly once.
type Handle interface {
	Dimension() uint
	SetObjective(dir Direction, f Func) Result
	SetBound(b Bound, values []float64) Result
	SetTolerance(t Tolerance, value float64) Result
	AddConstraint(kind ConstraintKind, f Func, tol float64) Result
	AddMConstraint(kind ConstraintKind, f MFunc, tols []float64) Result

	// Optimize runs the algorithm starting from x and leaves the final point
	// in x. It returns the final code and the objective value reached.
	Optimize(x []float64) (Result, float64)

	// ForceStop asks a running Optimize to return FORCED_STOP as soon as
	// possible. It is safe to call from inside a callback.
	ForceStop()

	// Destroy releases the handle and everything registered on it.
	Destroy()
}
