package optimization

import (
	"math"
	"time"

	"github.com/manakau-com/node-nlopt/internal/host"
)

// Result is the outcome of one Optimize call.
type Result struct {
	// Status holds one entry per configuration operation plus the run
	// status under "status".
	Status *StatusReport
	// ParameterValues has numberOfParameters entries.
	ParameterValues []float64
	// OutputValue is the objective value reached, NaN when the run did not
	// complete.
	OutputValue float64
	Stats       RunStats
}

// RunStats describes a run for logs and reports.
type RunStats struct {
	RunID       string
	Evaluations int64
	Duration    time.Duration
}

// ToHost renders the result as {status, parameterValues, outputValue}.
func (r *Result) ToHost() *host.Object {
	return host.NewObject().
		Set("status", r.Status.ToHost()).
		Set("parameterValues", ToHostArray(r.ParameterValues)).
		Set("outputValue", host.Number(r.OutputValue))
}

// Report is the encodable form of a Result.
type Report struct {
	RunID           string            `json:"runId" yaml:"runId"`
	Status          map[string]string `json:"status" yaml:"status"`
	ParameterValues []float64         `json:"parameterValues" yaml:"parameterValues"`
	// OutputValue is nil when the run produced no value.
	OutputValue *float64 `json:"outputValue" yaml:"outputValue"`
	Evaluations int64    `json:"evaluations" yaml:"evaluations"`
	Elapsed     string   `json:"elapsed" yaml:"elapsed"`
}

// Report returns the result in a form encoding/json and yaml can marshal.
func (r *Result) Report() Report {
	rep := Report{
		RunID:           r.Stats.RunID,
		Status:          r.Status.Map(),
		ParameterValues: r.ParameterValues,
		Evaluations:     r.Stats.Evaluations,
		Elapsed:         r.Stats.Duration.String(),
	}
	if !math.IsNaN(r.OutputValue) && !math.IsInf(r.OutputValue, 0) {
		v := r.OutputValue
		rep.OutputValue = &v
	}
	return rep
}
