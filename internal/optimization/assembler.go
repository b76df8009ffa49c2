package optimization

import (
	"context"
	"math"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native"
)

// Configuration keys read from the host object.
const (
	keyConfiguration      = "configuration"
	keyAlgorithm          = "algorithm"
	keyNumberOfParameters = "numberOfParameters"
	keyObjective          = "objective"
	keyMinObjective       = "minObjectiveFunction"
	keyMaxObjective       = "maxObjectiveFunction"
	keyLowerBounds        = "lowerBounds"
	keyUpperBounds        = "upperBounds"
	keyInequality         = "inequalityConstraints"
	keyEquality           = "equalityConstraints"
	keyInequalityM        = "inequalityMConstraints"
	keyEqualityM          = "equalityMConstraints"
	keyInitialGuess       = "initialGuess"
	keyInitialGuessAlias  = "initalGuess"
	keyStatus             = "status"
)

var knobs = []struct {
	key      string
	tol      native.Tolerance
	integral bool
}{
	{"stopValue", native.StopValue, false},
	{"fToleranceRelative", native.FTolRel, false},
	{"fToleranceAbsolute", native.FTolAbs, false},
	{"xToleranceRelative", native.XTolRel, false},
	{"xToleranceAbsolute", native.XTolAbs, false},
	{"maxEval", native.MaxEval, true},
	{"maxTime", native.MaxTime, false},
}

// session is an assembled handle ready to run.
type session struct {
	handle    native.Handle
	state     *runState
	algorithm native.Algorithm
	n         int
	// x is the in/out parameter buffer, zero-filled until the initial guess
	// is applied.
	x []float64

	released *atomic.Bool
}

// release destroys the handle. Only the first call has an effect.
func (s *session) release() {
	if s.released.Swap(true) {
		return
	}
	s.handle.Destroy()
}

// assembler applies one configuration object to a fresh handle.
type assembler struct {
	cfg     *host.Object
	report  *StatusReport
	logger  *zap.Logger
	session *session
}

// assemble creates a handle and applies cfg to it in a fixed order:
// algorithm and size, objective, bounds, stopping criteria, constraints,
// initial guess. Problems with a single field are recorded in report and
// assembly continues. A non-nil error is fatal; the returned session, when
// not nil, still owns a handle that the caller must release.
func (o *Optimizer) assemble(ctx context.Context, cfg *host.Object, report *StatusReport, logger *zap.Logger) (*session, error) {
	a := &assembler{cfg: cfg, report: report, logger: logger}

	algorithm, err := parseAlgorithm(cfg.Get(keyAlgorithm))
	if err != nil {
		a.recordError(keyAlgorithm, err)
		return nil, err
	}
	n, ok := asCount(cfg.Get(keyNumberOfParameters))
	if !ok {
		err := NewErrorf(KindConfiguration, "must be a non-negative integer, got %s",
			host.Describe(cfg.Get(keyNumberOfParameters))).WithOperation(keyNumberOfParameters)
		a.recordError(keyNumberOfParameters, err)
		return nil, err
	}
	if n > maxParameters {
		err := NewErrorf(KindConfiguration, "must not exceed %d, got %d",
			maxParameters, n).WithOperation(keyNumberOfParameters)
		a.recordError(keyNumberOfParameters, err)
		return nil, err
	}

	handle, code := o.lib.Create(algorithm, uint(n))
	if !code.OK() || handle == nil {
		a.record(keyAlgorithm, code)
		return nil, NewErrorf(KindConfiguration, "cannot create %s over %d parameters: %s",
			algorithm, n, code).WithOperation(keyAlgorithm)
	}

	a.session = &session{
		handle:    handle,
		state:     newRunState(ctx, handle, logger, o.metrics),
		algorithm: algorithm,
		n:         n,
		x:         make([]float64, n),
		released:  atomic.NewBool(false),
	}

	if err := a.objective(); err != nil {
		return a.session, err
	}
	a.bounds()
	a.tolerances()
	a.scalarConstraints(keyInequality, native.Inequality)
	a.scalarConstraints(keyEquality, native.Equality)
	a.vectorConstraints(keyInequalityM, native.Inequality)
	a.vectorConstraints(keyEqualityM, native.Equality)
	a.initialGuess()

	return a.session, nil
}

func (a *assembler) record(op string, code native.Result) {
	a.report.Record(op, code)
	if !code.OK() {
		a.logger.Warn("configuration rejected by backend",
			zap.String("operation", op), zap.Stringer("result", code))
		return
	}
	a.logger.Debug("configured", zap.String("operation", op))
}

func (a *assembler) recordError(op string, err error) {
	a.report.RecordError(op, err)
	a.logger.Warn("invalid configuration value", zap.String("operation", op), zap.Error(err))
}

func (a *assembler) newCallback(op, kind string, fn host.Function) *callback {
	return &callback{op: op, kind: kind, fn: fn, state: a.session.state}
}

func (a *assembler) objective() error {
	minFn, maxFn := a.cfg.Get(keyMinObjective), a.cfg.Get(keyMaxObjective)

	var (
		key string
		dir native.Direction
		v   host.Value
	)
	switch {
	case host.IsPresent(minFn) && host.IsPresent(maxFn):
		err := WrapError(ErrAmbiguousObjective, KindConfiguration, "invalid objective").WithOperation(keyObjective)
		a.recordError(keyObjective, err)
		return err
	case host.IsPresent(minFn):
		key, dir, v = keyMinObjective, native.Minimize, minFn
	case host.IsPresent(maxFn):
		key, dir, v = keyMaxObjective, native.Maximize, maxFn
	default:
		err := WrapError(ErrMissingObjective, KindConfiguration, "invalid objective").WithOperation(keyObjective)
		a.recordError(keyObjective, err)
		return err
	}

	fn, ok := host.AsFunction(v)
	if !ok {
		err := WrapErrorf(ErrNotCallable, KindConfiguration, "objective is %s", host.Describe(v)).WithOperation(key)
		a.recordError(key, err)
		return err
	}
	cb := a.newCallback(key, "objective", fn)
	a.record(key, a.session.handle.SetObjective(dir, cb.scalar()))
	return nil
}

func (a *assembler) bounds() {
	for _, b := range []struct {
		key   string
		bound native.Bound
	}{
		{keyLowerBounds, native.LowerBound},
		{keyUpperBounds, native.UpperBound},
	} {
		v := a.cfg.Get(b.key)
		if !host.IsPresent(v) {
			continue
		}
		buf, err := ToNativeBufferN(v, a.session.n)
		if err != nil {
			a.recordError(b.key, err)
			continue
		}
		a.record(b.key, a.session.handle.SetBound(b.bound, buf))
	}
}

func (a *assembler) tolerances() {
	for _, k := range knobs {
		v := a.cfg.Get(k.key)
		if !host.IsPresent(v) {
			continue
		}
		f, ok := host.AsNumber(v)
		if !ok {
			a.recordError(k.key, WrapErrorf(ErrNotNumeric, KindConfiguration, "got %s", host.Describe(v)).WithOperation(k.key))
			continue
		}
		if k.integral && f != math.Trunc(f) {
			a.recordError(k.key, NewErrorf(KindConfiguration, "must be an integer, got %s", host.Describe(v)).WithOperation(k.key))
			continue
		}
		a.record(k.key, a.session.handle.SetTolerance(k.tol, f))
	}
}

// entries returns the array stored under key, recording a failure when the
// value is present but not an array.
func (a *assembler) entries(key string) ([]host.Value, bool) {
	v := a.cfg.Get(key)
	if !host.IsPresent(v) {
		return nil, false
	}
	arr, ok := v.(*host.Array)
	if !ok {
		a.recordError(key, WrapErrorf(ErrNotArray, KindConfiguration, "got %s", host.Describe(v)).WithOperation(key))
		return nil, false
	}
	return arr.Values(), true
}

func entryCallback(entry host.Value) (host.Function, *Error) {
	obj, ok := entry.(*host.Object)
	if !ok {
		return nil, NewErrorf(KindConfiguration, "constraint must be an object with a callback, got %s", host.Describe(entry))
	}
	fn, ok := host.AsFunction(obj.Get("callback"))
	if !ok {
		return nil, WrapErrorf(ErrNotCallable, KindConfiguration, "callback is %s", host.Describe(obj.Get("callback")))
	}
	return fn, nil
}

func (a *assembler) scalarConstraints(key string, kind native.ConstraintKind) {
	values, ok := a.entries(key)
	if !ok {
		return
	}
	for i, entry := range values {
		op := IndexedOperation(key, i)
		fn, err := entryCallback(entry)
		if err != nil {
			a.recordIndexedError(key, i, err.WithOperation(op))
			continue
		}
		tol := 0.0
		if t := entry.(*host.Object).Get("tolerance"); host.IsPresent(t) {
			if tol, ok = host.AsNumber(t); !ok {
				a.recordIndexedError(key, i, WrapErrorf(ErrNotNumeric, KindConfiguration,
					"tolerance is %s", host.Describe(t)).WithOperation(op))
				continue
			}
		}
		cb := a.newCallback(op, "constraint", fn)
		a.recordIndexed(key, i, a.session.handle.AddConstraint(kind, cb.scalar(), tol))
	}
}

func (a *assembler) vectorConstraints(key string, kind native.ConstraintKind) {
	values, ok := a.entries(key)
	if !ok {
		return
	}
	for i, entry := range values {
		op := IndexedOperation(key, i)
		fn, err := entryCallback(entry)
		if err != nil {
			a.recordIndexedError(key, i, err.WithOperation(op))
			continue
		}
		tols, convErr := ToNativeBuffer(entry.(*host.Object).Get("tolerances"))
		if convErr != nil {
			a.recordIndexedError(key, i, WrapError(convErr, KindConfiguration, "invalid tolerances").WithOperation(op))
			continue
		}
		if len(tols) == 0 {
			a.recordIndexedError(key, i, NewError(KindConfiguration, "tolerances must not be empty").WithOperation(op))
			continue
		}
		cb := a.newCallback(op, "mconstraint", fn)
		a.recordIndexed(key, i, a.session.handle.AddMConstraint(kind, cb.vector(), tols))
	}
}

func (a *assembler) recordIndexed(category string, i int, code native.Result) {
	a.report.RecordIndexed(category, i, code)
	if !code.OK() {
		a.logger.Warn("constraint rejected by backend",
			zap.String("operation", IndexedOperation(category, i)), zap.Stringer("result", code))
	}
}

func (a *assembler) recordIndexedError(category string, i int, err error) {
	a.report.RecordIndexedError(category, i, err)
	a.logger.Warn("invalid constraint", zap.String("operation", IndexedOperation(category, i)), zap.Error(err))
}

// initialGuess copies the supplied guess over the zero-filled buffer. A guess
// shorter than n leaves the tail at zero; extra entries are ignored.
func (a *assembler) initialGuess() {
	key := keyInitialGuess
	v := a.cfg.Get(key)
	if !host.IsPresent(v) {
		key = keyInitialGuessAlias
		if v = a.cfg.Get(key); !host.IsPresent(v) {
			return
		}
	}

	arr, ok := v.(*host.Array)
	if !ok {
		a.recordError(key, WrapErrorf(ErrNotArray, KindConversion, "got %s", host.Describe(v)).WithOperation(key))
		return
	}
	k := min(arr.Len(), a.session.n)
	if err := copyFromHost(a.session.x[:k], host.ArrayOf(arr.Values()[:k]...)); err != nil {
		a.recordError(key, err)
		return
	}
	a.report.RecordSuccess(key)
}

func parseAlgorithm(v host.Value) (native.Algorithm, *Error) {
	switch t := v.(type) {
	case host.Number:
		f := float64(t)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, NewErrorf(KindConfiguration, "algorithm id must be an integer, got %s", host.Describe(v)).WithOperation(keyAlgorithm)
		}
		// Out of range ids are left for the backend to reject.
		return native.Algorithm(int(f)), nil
	case host.String:
		a, err := native.ParseAlgorithm(string(t))
		if err != nil {
			return 0, WrapError(err, KindConfiguration, "unknown algorithm").WithOperation(keyAlgorithm)
		}
		return a, nil
	default:
		return 0, NewErrorf(KindConfiguration, "algorithm must be an id or a name, got %s", host.Describe(v)).WithOperation(keyAlgorithm)
	}
}

// maxParameters bounds numberOfParameters so every per-parameter buffer
// stays allocatable.
const maxParameters = 1 << 20

// asCount returns v as a non-negative integer.
func asCount(v host.Value) (int, bool) {
	f, ok := host.AsNumber(v)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
