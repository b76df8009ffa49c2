package native

import "strconv"

// Result is a status code returned by every native entry point. Positive
// values are successes, negative values failures, mirroring nlopt_result.
type Result int

const (
	Failure         Result = -1
	InvalidArgs     Result = -2
	OutOfMemory     Result = -3
	RoundoffLimited Result = -4
	ForcedStop      Result = -5
	Success         Result = 1
	StopvalReached  Result = 2
	FtolReached     Result = 3
	XtolReached     Result = 4
	MaxevalReached  Result = 5
	MaxtimeReached  Result = 6
)

var resultNames = map[Result]string{
	Failure:         "FAILURE",
	InvalidArgs:     "INVALID_ARGS",
	OutOfMemory:     "OUT_OF_MEMORY",
	RoundoffLimited: "ROUNDOFF_LIMITED",
	ForcedStop:      "FORCED_STOP",
	Success:         "SUCCESS",
	StopvalReached:  "STOPVAL_REACHED",
	FtolReached:     "FTOL_REACHED",
	XtolReached:     "XTOL_REACHED",
	MaxevalReached:  "MAXEVAL_REACHED",
	MaxtimeReached:  "MAXTIME_REACHED",
}

// String returns the nlopt name of the code.
func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return "RESULT(" + strconv.Itoa(int(r)) + ")"
}

// OK reports whether r is a success code.
func (r Result) OK() bool {
	return r > 0
}

// Results returns every known code, failures first.
func Results() []Result {
	return []Result{
		Failure, InvalidArgs, OutOfMemory, RoundoffLimited, ForcedStop,
		Success, StopvalReached, FtolReached, XtolReached, MaxevalReached, MaxtimeReached,
	}
}
