// Package optimization bridges host configuration objects and host callbacks
// to a native optimization library. It converts numeric arrays in both
// directions, translates native result codes into status messages, adapts
// host functions to the native calling convention and drives one optimizer
// handle per Optimize call.
package optimization

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native"
)

// Optimizer runs optimizations against one native library.
// An Optimizer holds no per-run state and may be shared; each Optimize call
// owns its handle exclusively.
type Optimizer struct {
	lib     native.Library
	logger  *zap.Logger
	metrics *Metrics
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the collectors updated by each run.
func WithMetrics(m *Metrics) Option {
	return func(o *Optimizer) {
		o.metrics = m
	}
}

// New creates an Optimizer backed by lib.
func New(lib native.Library, opts ...Option) *Optimizer {
	o := &Optimizer{
		lib:    lib,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("optimizer")
	return o
}

// Optimize runs one optimization described by cfg, a host object.
//
// The returned Result is never nil and always carries the status of every
// configuration operation. A non-nil error means the run was rejected before
// the native run started (missing or ambiguous objective, unusable algorithm
// or size) or was halted by a callback fault or by ctx; in that case the
// output value is NaN and the parameter values are the last buffer the
// backend wrote, or zeros.
func (o *Optimizer) Optimize(ctx context.Context, cfg host.Value) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID), zap.String("backend", o.lib.Name()))

	report := NewStatusReport()
	res := &Result{
		Status:          report,
		ParameterValues: []float64{},
		OutputValue:     math.NaN(),
		Stats:           RunStats{RunID: runID},
	}

	obj, ok := cfg.(*host.Object)
	if !ok {
		err := NewErrorf(KindConfiguration, "configuration must be an object, got %s", host.Describe(cfg)).
			WithOperation(keyConfiguration)
		report.RecordError(keyConfiguration, err)
		o.finish(logger, res, start, "rejected")
		return res, err
	}

	s, err := o.assemble(ctx, obj, report, logger)
	if s != nil {
		defer s.release()
		res.ParameterValues = s.x
	}
	if err != nil {
		o.finish(logger, res, start, "rejected")
		return res, err
	}

	logger.Info("optimization started",
		zap.Stringer("algorithm", s.algorithm),
		zap.Int("parameters", s.n),
	)
	code, value := s.handle.Optimize(s.x)
	res.Stats.Evaluations = s.state.evaluations.Load()

	if fault := s.state.faultError(); fault != nil {
		report.put(StatusEntry{Operation: keyStatus, Success: false, Message: faultStatus(fault)})
		o.finish(logger, res, start, "halted")
		return res, fault
	}

	report.Record(keyStatus, code)
	res.OutputValue = value
	outcome := "failure"
	if code.OK() {
		outcome = "success"
	}
	o.finish(logger, res, start, outcome)
	return res, nil
}

func (o *Optimizer) finish(logger *zap.Logger, res *Result, start time.Time, outcome string) {
	res.Stats.Duration = time.Since(start)
	o.metrics.observeRun(outcome, res.Stats.Duration)

	status, _ := res.Status.Get(keyStatus)
	logger.Info("optimization finished",
		zap.String("outcome", outcome),
		zap.String("status", status.Message),
		zap.Float64("value", res.OutputValue),
		zap.Int64("evaluations", res.Stats.Evaluations),
		zap.Duration("elapsed", res.Stats.Duration),
	)
}

// faultStatus renders the run status of a halted run.
func faultStatus(err *Error) string {
	switch err.Kind {
	case KindCanceled:
		return statusMessages[native.ForcedStop] + ": " + err.Err.Error()
	case KindHostException:
		return "Failure: Halted because a callback raised an error: " + err.Op + ": " + err.Err.Error()
	default:
		return "Failure: Halted because a callback violated its contract: " + err.Op + ": " + err.Message
	}
}

// Optimize runs cfg against lib with a default Optimizer.
func Optimize(ctx context.Context, lib native.Library, cfg host.Value) (*Result, error) {
	return New(lib).Optimize(ctx, cfg)
}
