// Package gonumopt is the pure Go optimization backend. Local algorithms run
// on gonum/optimize, global ones on the mayfly swarm optimizer, and nonlinear
// constraints through an augmented Lagrangian outer loop. Algorithm ids keep
// their nlopt meaning as far as the constraint support and gradient
// requirements go; the numerics underneath are gonum's.
//
// Importing the package registers it under the name "gonum".
package gonumopt

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// Name is the registry name of the backend.
const Name = "gonum"

func init() {
	native.Register(New())
}

// Library creates gonum backed handles.
type Library struct {
	// Seed fixes the random source of the global algorithms. Zero seeds
	// each handle from the clock.
	Seed int64
}

// New returns a Library seeded from the clock.
func New() *Library {
	return &Library{}
}

// Name implements native.Library.
func (*Library) Name() string { return Name }

// Create implements native.Library.
func (l *Library) Create(algorithm native.Algorithm, n uint) (native.Handle, native.Result) {
	p, ok := profiles[algorithm]
	if !ok {
		return nil, native.InvalidArgs
	}
	seed := l.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return newHandle(algorithm, p, int(n), rand.New(rand.NewSource(seed))), native.Success
}

// profile describes how an algorithm id is served.
type profile struct {
	// method builds the gonum local method. Nil for pure global searches.
	method func() optimize.Method
	// gradient is set for derivative based algorithms.
	gradient bool
	// global runs the mayfly search over the bound box first.
	global bool
	// polish runs method from the global best.
	polish     bool
	inequality bool
	equality   bool
}

func nelderMead() optimize.Method { return &optimize.NelderMead{} }
func lbfgs() optimize.Method      { return &optimize.LBFGS{} }
func bfgs() optimize.Method       { return &optimize.BFGS{} }
func cg() optimize.Method         { return &optimize.CG{} }

// profiles lists the supported algorithms. GD_STOGO, GD_STOGO_RAND and
// LD_LBFGS_NOCEDAL are missing on purpose: nlopt builds without them too.
var profiles = map[native.Algorithm]profile{
	native.LN_PRAXIS:       {method: nelderMead},
	native.LN_NEWUOA:       {method: nelderMead},
	native.LN_NEWUOA_BOUND: {method: nelderMead},
	native.LN_NELDERMEAD:   {method: nelderMead},
	native.LN_SBPLX:        {method: nelderMead},
	native.LN_BOBYQA:       {method: nelderMead},
	native.LN_COBYLA:       {method: nelderMead, inequality: true, equality: true},
	native.LN_AUGLAG:       {method: nelderMead, inequality: true, equality: true},
	native.LN_AUGLAG_EQ:    {method: nelderMead, inequality: true, equality: true},
	native.AUGLAG:          {method: nelderMead, inequality: true, equality: true},
	native.AUGLAG_EQ:       {method: nelderMead, inequality: true, equality: true},

	native.LD_LBFGS:                   {method: lbfgs, gradient: true},
	native.LD_VAR1:                    {method: bfgs, gradient: true},
	native.LD_VAR2:                    {method: bfgs, gradient: true},
	native.LD_TNEWTON:                 {method: cg, gradient: true},
	native.LD_TNEWTON_RESTART:         {method: cg, gradient: true},
	native.LD_TNEWTON_PRECOND:         {method: cg, gradient: true},
	native.LD_TNEWTON_PRECOND_RESTART: {method: cg, gradient: true},
	native.LD_MMA:                     {method: lbfgs, gradient: true, inequality: true},
	native.LD_CCSAQ:                   {method: lbfgs, gradient: true, inequality: true},
	native.LD_SLSQP:                   {method: bfgs, gradient: true, inequality: true, equality: true},
	native.LD_AUGLAG:                  {method: lbfgs, gradient: true, inequality: true, equality: true},
	native.LD_AUGLAG_EQ:               {method: lbfgs, gradient: true, inequality: true, equality: true},

	native.GN_DIRECT:               {global: true},
	native.GN_DIRECT_L:             {global: true},
	native.GN_DIRECT_L_RAND:        {global: true},
	native.GN_DIRECT_NOSCAL:        {global: true},
	native.GN_DIRECT_L_NOSCAL:      {global: true},
	native.GN_DIRECT_L_RAND_NOSCAL: {global: true},
	native.GN_CRS2_LM:              {global: true},
	native.GN_ESCH:                 {global: true},
	native.GN_ORIG_DIRECT:          {global: true, inequality: true},
	native.GN_ORIG_DIRECT_L:        {global: true, inequality: true},
	native.GN_ISRES:                {global: true, inequality: true, equality: true},
	native.GN_MLSL:                 {global: true, polish: true, method: nelderMead},
	native.GN_MLSL_LDS:             {global: true, polish: true, method: nelderMead},
	native.G_MLSL:                  {global: true, polish: true, method: nelderMead},
	native.G_MLSL_LDS:              {global: true, polish: true, method: nelderMead},
	native.GD_MLSL:                 {global: true, polish: true, method: lbfgs, gradient: true},
	native.GD_MLSL_LDS:             {global: true, polish: true, method: lbfgs, gradient: true},
}

// Supported reports whether the backend can create a handle for algorithm.
func Supported(algorithm native.Algorithm) bool {
	_, ok := profiles[algorithm]
	return ok
}
