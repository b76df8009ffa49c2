package optimization

import (
	"fmt"

	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/native"
)

var statusMessages = map[native.Result]string{
	native.Success:        "Success",
	native.StopvalReached: "Success: Optimization stopped because stopValue was reached",
	native.FtolReached:    "Success: Optimization stopped because fToleranceRelative or fToleranceAbsolute was reached",
	native.XtolReached:    "Success: Optimization stopped because xToleranceRelative or xToleranceAbsolute was reached",
	native.MaxevalReached: "Success: Optimization stopped because maxEval was reached",
	native.MaxtimeReached: "Success: Optimization stopped because maxTime was reached",

	native.Failure:         "Failure",
	native.InvalidArgs:     "Failure: Invalid arguments",
	native.OutOfMemory:     "Failure: Ran out of memory",
	native.RoundoffLimited: "Failure: Halted because roundoff errors limited progress",
	native.ForcedStop:      "Failure: Halted because of a forced termination",
}

const unknownStatus = "Failure: Unknown Error Code"

// Classify maps a native result code to its success flag and message.
func Classify(code native.Result) (bool, string) {
	msg, ok := statusMessages[code]
	if !ok {
		return false, unknownStatus
	}
	return code.OK(), msg
}

// StatusEntry is the outcome of one configuration operation or of the run.
type StatusEntry struct {
	Operation string
	Success   bool
	Message   string
}

// StatusReport collects status entries in the order they were first recorded.
//
// Constraints registered under a shared category are stored once per index
// ("inequalityConstraints[0]", "inequalityConstraints[1]", ...). The bare
// category key holds a summary: the first failure in the category, or the
// last success when nothing failed.
type StatusReport struct {
	entries []StatusEntry
	index   map[string]int
}

// NewStatusReport returns an empty report.
func NewStatusReport() *StatusReport {
	return &StatusReport{index: make(map[string]int)}
}

func (r *StatusReport) put(e StatusEntry) {
	if i, ok := r.index[e.Operation]; ok {
		r.entries[i] = e
		return
	}
	r.index[e.Operation] = len(r.entries)
	r.entries = append(r.entries, e)
}

// Record classifies code and stores it under op.
func (r *StatusReport) Record(op string, code native.Result) {
	ok, msg := Classify(code)
	r.put(StatusEntry{Operation: op, Success: ok, Message: msg})
}

// RecordError stores err as a failure under op.
func (r *StatusReport) RecordError(op string, err error) {
	r.put(StatusEntry{Operation: op, Success: false, Message: "Failure: " + err.Error()})
}

// RecordSuccess stores a plain success under op.
func (r *StatusReport) RecordSuccess(op string) {
	r.put(StatusEntry{Operation: op, Success: true, Message: statusMessages[native.Success]})
}

// RecordIndexed records code for entry i of category and updates the
// category summary.
func (r *StatusReport) RecordIndexed(category string, i int, code native.Result) {
	op := IndexedOperation(category, i)
	r.Record(op, code)
	r.summarize(category, op)
}

// RecordIndexedError records err for entry i of category and updates the
// category summary.
func (r *StatusReport) RecordIndexedError(category string, i int, err error) {
	op := IndexedOperation(category, i)
	r.RecordError(op, err)
	r.summarize(category, op)
}

func (r *StatusReport) summarize(category, op string) {
	latest := r.entries[r.index[op]]
	if cur, ok := r.Get(category); ok && !cur.Success {
		return
	}
	latest.Operation = category
	r.put(latest)
}

// IndexedOperation is the status key of entry i in a constraint category.
func IndexedOperation(category string, i int) string {
	return fmt.Sprintf("%s[%d]", category, i)
}

// Get returns the entry recorded under op.
func (r *StatusReport) Get(op string) (StatusEntry, bool) {
	if r == nil {
		return StatusEntry{}, false
	}
	i, ok := r.index[op]
	if !ok {
		return StatusEntry{}, false
	}
	return r.entries[i], true
}

// Entries returns a copy of all entries in recording order.
func (r *StatusReport) Entries() []StatusEntry {
	if r == nil {
		return nil
	}
	out := make([]StatusEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Map returns the report as operation -> message.
func (r *StatusReport) Map() map[string]string {
	out := make(map[string]string, len(r.Entries()))
	for _, e := range r.Entries() {
		out[e.Operation] = e.Message
	}
	return out
}

// Failures returns the failed entries in recording order.
func (r *StatusReport) Failures() []StatusEntry {
	var out []StatusEntry
	for _, e := range r.Entries() {
		if !e.Success {
			out = append(out, e)
		}
	}
	return out
}

// OK reports whether every recorded entry is a success.
func (r *StatusReport) OK() bool {
	return len(r.Failures()) == 0
}

// ToHost renders the report as a host object of operation -> message.
func (r *StatusReport) ToHost() *host.Object {
	obj := host.NewObject()
	for _, e := range r.Entries() {
		obj.Set(e.Operation, host.String(e.Message))
	}
	return obj
}
