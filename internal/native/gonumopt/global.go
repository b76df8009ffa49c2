package gonumopt

import (
	"github.com/cwbudde/mayfly"

	"github.com/manakau-com/node-nlopt/internal/native"
)

const (
	// globalRho is the static penalty weight of the swarm search.
	globalRho = 1e6
	// globalIterations bounds the swarm when no evaluation budget is set.
	globalIterations = 200
)

// global runs the mayfly swarm over the bound box, which must be finite. The
// swarm works on the unit cube so the scalar bounds of the library fit any
// box. Profiles with polish then refine the best point locally.
func (r *run) global(x0 []float64) native.Result {
	n := r.h.n
	lo, hi := r.h.lower, r.h.upper

	var pen *penalty
	if r.outputs > 0 {
		pen = &penalty{lambda: make([]float64, r.outputs), rho: globalRho}
	}

	// The initial guess competes with the swarm.
	r.merit(r.clamped(x0), nil, pen)

	scaled := make([]float64, n)
	cfg := mayfly.NewDefaultConfig()
	cfg.ObjectiveFunc = func(u []float64) float64 {
		for i := range scaled {
			scaled[i] = lo[i] + u[i]*(hi[i]-lo[i])
		}
		return r.merit(scaled, nil, pen)
	}
	cfg.ProblemSize = n
	cfg.NPop = max(20, 4*n)
	cfg.MaxIterations = r.swarmIterations(cfg.NPop)
	cfg.LowerBound = 0
	cfg.UpperBound = 1
	cfg.Rand = r.h.rng

	if _, err := mayfly.Optimize(cfg); err != nil && r.stop == 0 {
		return native.Failure
	}
	if r.stop != 0 {
		return r.stop
	}
	if r.h.profile.polish && r.hasBest {
		code, _ := r.minimize(r.clamped(r.best.x), nil)
		return r.result(code)
	}
	return native.Success
}

func (r *run) swarmIterations(pop int) int {
	if m := r.h.stop.maxEval; m > 0 {
		// The budget ends the run through merit; this only has to be enough.
		return m/pop + 2
	}
	return globalIterations
}
