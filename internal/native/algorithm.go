package native

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm identifies a native optimization algorithm. The numbering follows
// the nlopt_algorithm enumeration so ids can be passed straight through to the
// C library.
type Algorithm int

const (
	GN_DIRECT Algorithm = iota
	GN_DIRECT_L
	GN_DIRECT_L_RAND
	GN_DIRECT_NOSCAL
	GN_DIRECT_L_NOSCAL
	GN_DIRECT_L_RAND_NOSCAL
	GN_ORIG_DIRECT
	GN_ORIG_DIRECT_L
	GD_STOGO
	GD_STOGO_RAND
	LD_LBFGS_NOCEDAL
	LD_LBFGS
	LN_PRAXIS
	LD_VAR1
	LD_VAR2
	LD_TNEWTON
	LD_TNEWTON_RESTART
	LD_TNEWTON_PRECOND
	LD_TNEWTON_PRECOND_RESTART
	GN_CRS2_LM
	GN_MLSL
	GD_MLSL
	GN_MLSL_LDS
	GD_MLSL_LDS
	LD_MMA
	LN_COBYLA
	LN_NEWUOA
	LN_NEWUOA_BOUND
	LN_NELDERMEAD
	LN_SBPLX
	LN_AUGLAG
	LD_AUGLAG
	LN_AUGLAG_EQ
	LD_AUGLAG_EQ
	LN_BOBYQA
	GN_ISRES
	AUGLAG
	AUGLAG_EQ
	G_MLSL
	G_MLSL_LDS
	LD_SLSQP
	LD_CCSAQ
	GN_ESCH
	NUM_ALGORITHMS
)

var algorithmNames = [...]string{
	"GN_DIRECT", "GN_DIRECT_L", "GN_DIRECT_L_RAND", "GN_DIRECT_NOSCAL",
	"GN_DIRECT_L_NOSCAL", "GN_DIRECT_L_RAND_NOSCAL", "GN_ORIG_DIRECT", "GN_ORIG_DIRECT_L",
	"GD_STOGO", "GD_STOGO_RAND", "LD_LBFGS_NOCEDAL", "LD_LBFGS",
	"LN_PRAXIS", "LD_VAR1", "LD_VAR2", "LD_TNEWTON",
	"LD_TNEWTON_RESTART", "LD_TNEWTON_PRECOND", "LD_TNEWTON_PRECOND_RESTART", "GN_CRS2_LM",
	"GN_MLSL", "GD_MLSL", "GN_MLSL_LDS", "GD_MLSL_LDS",
	"LD_MMA", "LN_COBYLA", "LN_NEWUOA", "LN_NEWUOA_BOUND",
	"LN_NELDERMEAD", "LN_SBPLX", "LN_AUGLAG", "LD_AUGLAG",
	"LN_AUGLAG_EQ", "LD_AUGLAG_EQ", "LN_BOBYQA", "GN_ISRES",
	"AUGLAG", "AUGLAG_EQ", "G_MLSL", "G_MLSL_LDS",
	"LD_SLSQP", "LD_CCSAQ", "GN_ESCH",
}

// Valid reports whether a is a known algorithm id.
func (a Algorithm) Valid() bool {
	return a >= 0 && a < NUM_ALGORITHMS
}

// String returns the short algorithm name, e.g. "LN_COBYLA".
func (a Algorithm) String() string {
	if !a.Valid() {
		return "ALGORITHM(" + strconv.Itoa(int(a)) + ")"
	}
	return algorithmNames[a]
}

// NeedsGradient reports whether the algorithm evaluates gradients.
func (a Algorithm) NeedsGradient() bool {
	name := a.String()
	return strings.HasPrefix(name, "LD_") || strings.HasPrefix(name, "GD_")
}

// Global reports whether the algorithm performs a global search.
func (a Algorithm) Global() bool {
	name := a.String()
	return strings.HasPrefix(name, "GN_") || strings.HasPrefix(name, "GD_") || strings.HasPrefix(name, "G_")
}

// ParseAlgorithm resolves an algorithm name. The "NLOPT_" prefix is optional
// and matching is case insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "NLOPT_")
	for i, n := range algorithmNames {
		if n == key {
			return Algorithm(i), nil
		}
	}
	return -1, fmt.Errorf("unknown algorithm %q", name)
}

// Algorithms returns every algorithm id in enumeration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, NUM_ALGORITHMS)
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}
