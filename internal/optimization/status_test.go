package optimization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code    native.Result
		success bool
		message string
	}{
		{native.Success, true, "Success"},
		{native.StopvalReached, true, "Success: Optimization stopped because stopValue was reached"},
		{native.FtolReached, true, "Success: Optimization stopped because fToleranceRelative or fToleranceAbsolute was reached"},
		{native.XtolReached, true, "Success: Optimization stopped because xToleranceRelative or xToleranceAbsolute was reached"},
		{native.MaxevalReached, true, "Success: Optimization stopped because maxEval was reached"},
		{native.MaxtimeReached, true, "Success: Optimization stopped because maxTime was reached"},
		{native.Failure, false, "Failure"},
		{native.InvalidArgs, false, "Failure: Invalid arguments"},
		{native.OutOfMemory, false, "Failure: Ran out of memory"},
		{native.RoundoffLimited, false, "Failure: Halted because roundoff errors limited progress"},
		{native.ForcedStop, false, "Failure: Halted because of a forced termination"},
		{native.Result(0), false, "Failure: Unknown Error Code"},
		{native.Result(42), false, "Failure: Unknown Error Code"},
		{native.Result(-99), false, "Failure: Unknown Error Code"},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			ok, msg := Classify(tt.code)
			assert.Equal(t, tt.success, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestStatusReport(t *testing.T) {
	r := NewStatusReport()
	r.Record("lowerBounds", native.Success)
	r.RecordError("maxEval", errors.New("bad"))
	r.RecordSuccess("initialGuess")
	r.Record("lowerBounds", native.InvalidArgs)

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "lowerBounds", entries[0].Operation, "re-recording keeps the original position")
	assert.Equal(t, "Failure: Invalid arguments", entries[0].Message)
	assert.Equal(t, "Failure: bad", entries[1].Message)
	assert.True(t, entries[2].Success)

	assert.False(t, r.OK())
	assert.Len(t, r.Failures(), 2)
	assert.Equal(t, map[string]string{
		"lowerBounds":  "Failure: Invalid arguments",
		"maxEval":      "Failure: bad",
		"initialGuess": "Success",
	}, r.Map())
}

func TestStatusReportIndexedCategories(t *testing.T) {
	t.Run("summary is last success", func(t *testing.T) {
		r := NewStatusReport()
		r.RecordIndexed(keyInequality, 0, native.Success)
		r.RecordIndexed(keyInequality, 1, native.FtolReached)

		summary, ok := r.Get(keyInequality)
		require.True(t, ok)
		assert.True(t, summary.Success)
		assert.Equal(t, "Success: Optimization stopped because fToleranceRelative or fToleranceAbsolute was reached", summary.Message)
	})

	t.Run("first failure sticks", func(t *testing.T) {
		r := NewStatusReport()
		r.RecordIndexed(keyInequality, 0, native.Success)
		r.RecordIndexed(keyInequality, 1, native.InvalidArgs)
		r.RecordIndexedError(keyInequality, 2, errors.New("second failure"))
		r.RecordIndexed(keyInequality, 3, native.Success)

		summary, _ := r.Get(keyInequality)
		assert.False(t, summary.Success)
		assert.Equal(t, "Failure: Invalid arguments", summary.Message)

		m := r.Map()
		assert.Equal(t, "Success", m["inequalityConstraints[0]"])
		assert.Equal(t, "Failure: Invalid arguments", m["inequalityConstraints[1]"])
		assert.Equal(t, "Failure: second failure", m["inequalityConstraints[2]"])
		assert.Equal(t, "Success", m["inequalityConstraints[3]"])
	})
}

func TestStatusReportToHost(t *testing.T) {
	r := NewStatusReport()
	r.Record("maxEval", native.Success)
	r.Record("status", native.XtolReached)

	obj := r.ToHost()
	assert.Equal(t, []string{"maxEval", "status"}, obj.Keys())
	assert.Equal(t, host.String("Success"), obj.Get("maxEval"))
}
