package optimization

import (
	"context"
	"math"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	apperrors "github.com/manakau-com/node-nlopt/internal/errors"
	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native"
)

// runState is shared by every callback registered on one handle. Once a
// fault is stored the run is poisoned: the handle has been asked to stop and
// later callbacks return NaN without calling into the host.
type runState struct {
	ctx     context.Context
	handle  native.Handle
	logger  *zap.Logger
	metrics *Metrics

	fault       *atomic.Error
	evaluations *atomic.Int64
}

func newRunState(ctx context.Context, handle native.Handle, logger *zap.Logger, metrics *Metrics) *runState {
	return &runState{
		ctx:         ctx,
		handle:      handle,
		logger:      logger,
		metrics:     metrics,
		fault:       atomic.NewError(nil),
		evaluations: atomic.NewInt64(0),
	}
}

// halt records the first fault of the run and forces the handle to stop.
func (s *runState) halt(err *Error) {
	if s.fault.Load() != nil {
		return
	}
	s.fault.Store(err)
	s.metrics.observeFault(err.Kind)
	s.logger.Warn("halting optimization",
		zap.String("operation", err.Op),
		zap.String("kind", string(err.Kind)),
		zap.Error(err),
	)
	s.handle.ForceStop()
}

// halted reports whether the run must not evaluate anything more.
func (s *runState) halted() bool {
	if s.fault.Load() != nil {
		return true
	}
	if err := s.ctx.Err(); err != nil {
		s.halt(WrapError(err, KindCanceled, "run canceled").WithOperation("status"))
		return true
	}
	return false
}

// faultError returns the stored fault, if any.
func (s *runState) faultError() *Error {
	err := s.fault.Load()
	if err == nil {
		return nil
	}
	e, _ := IsOptimizationError(err)
	return e
}

// callback adapts one host function to the native calling convention.
type callback struct {
	// op is the status key the callback was registered under.
	op    string
	kind  string
	fn    host.Function
	state *runState
}

func (c *callback) violation(format string, args ...interface{}) *Error {
	return NewErrorf(KindCallbackContract, format, args...).WithOperation(c.op)
}

func (c *callback) invoke(args ...host.Value) (host.Value, *Error) {
	count := c.state.evaluations.Inc()
	c.state.metrics.observeEvaluation(c.kind)
	if ce := c.state.logger.Check(zap.DebugLevel, "invoking callback"); ce != nil {
		ce.Write(zap.String("operation", c.op), zap.Int64("evaluation", count))
	}

	var ret host.Value
	err := apperrors.Capture(c.op, func() error {
		var callErr error
		ret, callErr = c.fn.Call(args...)
		return callErr
	})
	if err != nil {
		return nil, WrapError(err, KindHostException, "callback raised an error").WithOperation(c.op)
	}
	return ret, nil
}

// gradientArg returns the host view of grad, or null when no gradient was
// requested.
func gradientArg(grad []float64) (host.Value, *host.Array) {
	if grad == nil {
		return host.Null, nil
	}
	arr := ToHostArray(grad)
	return arr, arr
}

func (c *callback) checkGradient(arr *host.Array, want int) *Error {
	if arr.Len() != want {
		return c.violation("length of gradient array must be %d, got %d", want, arr.Len())
	}
	if i := firstNonNumber(arr); i >= 0 {
		return c.violation("gradient element %d is %s, not a number", i, host.Describe(arr.Get(i)))
	}
	return nil
}

// scalar returns the native view of an objective or scalar constraint. The
// host function is called as fn(n, x, grad) and must return a number; when
// grad is not null it is filled in place.
func (c *callback) scalar() native.Func {
	return func(x, grad []float64) float64 {
		if c.state.halted() {
			return math.NaN()
		}

		gradValue, gradArr := gradientArg(grad)
		ret, err := c.invoke(host.NumberOf(len(x)), ToHostArray(x), gradValue)
		if err != nil {
			c.state.halt(err)
			return math.NaN()
		}

		v, ok := host.AsNumber(ret)
		if !ok {
			c.state.halt(c.violation("objective or constraint function must return a number, got %s", host.Describe(ret)))
			return math.NaN()
		}
		if gradArr != nil {
			if err := c.checkGradient(gradArr, len(grad)); err != nil {
				c.state.halt(err)
				return math.NaN()
			}
			// checkGradient validated gradArr, so the copy cannot fail.
			_ = copyFromHost(grad, gradArr)
		}
		return v
	}
}

// vector returns the native view of a vector constraint. The host function
// is called as fn(m, n, x, grad) and must return an array of m numbers; grad,
// when not null, holds m*n entries with row i the gradient of constraint i.
func (c *callback) vector() native.MFunc {
	return func(result, x, grad []float64) {
		if c.state.halted() {
			return
		}

		m := len(result)
		gradValue, gradArr := gradientArg(grad)
		ret, err := c.invoke(host.NumberOf(m), host.NumberOf(len(x)), ToHostArray(x), gradValue)
		if err != nil {
			c.state.halt(err)
			return
		}

		arr, ok := ret.(*host.Array)
		if !ok {
			c.state.halt(c.violation("constraint function must return an array of %d numbers, got %s", m, host.Describe(ret)))
			return
		}
		if arr.Len() != m {
			c.state.halt(c.violation("length of result array must be the m parameter %d, got %d", m, arr.Len()))
			return
		}
		if i := firstNonNumber(arr); i >= 0 {
			c.state.halt(c.violation("result element %d is %s, not a number", i, host.Describe(arr.Get(i))))
			return
		}
		if gradArr != nil {
			if err := c.checkGradient(gradArr, len(grad)); err != nil {
				c.state.halt(err)
				return
			}
		}

		// Both arrays were validated above; the copies cannot fail.
		_ = copyFromHost(result, arr)
		if gradArr != nil {
			_ = copyFromHost(grad, gradArr)
		}
	}
}
