//go:build nlopt && cgo

package cnlopt

/*
#cgo pkg-config: nlopt
#include <stdint.h>
#include <stdlib.h>
#include <nlopt.h>

extern double goFunc(unsigned n, double *x, double *grad, void *data);
extern void goMFunc(unsigned m, double *result, unsigned n, double *x, double *grad, void *data);

static double func_trampoline(unsigned n, const double *x, double *grad, void *data) {
	return goFunc(n, (double *)x, grad, data);
}

static void mfunc_trampoline(unsigned m, double *result, unsigned n, const double *x, double *grad, void *data) {
	goMFunc(m, result, n, (double *)x, grad, data);
}

static nlopt_func func_ptr(void) { return func_trampoline; }
static nlopt_mfunc mfunc_ptr(void) { return mfunc_trampoline; }

// The callback handle lives in C memory so nlopt may keep the pointer.
static void *new_userdata(uintptr_t h) {
	uintptr_t *p = malloc(sizeof *p);
	if (p != NULL) {
		*p = h;
	}
	return p;
}
*/
import "C"

import (
	"math"
	"runtime/cgo"
	"unsafe"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// Name is the registry name of the backend.
const Name = "nlopt"

func init() {
	native.Register(Library{})
}

// Library creates nlopt handles.
type Library struct{}

func (Library) Name() string { return Name }

func (Library) Create(algorithm native.Algorithm, n uint) (native.Handle, native.Result) {
	opt := C.nlopt_create(C.nlopt_algorithm(algorithm), C.uint(n))
	if opt == nil {
		// nlopt returns NULL for unknown algorithms and when out of memory.
		return nil, native.Failure
	}
	return &handle{opt: opt, n: int(n)}, native.Success
}

// Version returns the linked nlopt version.
func Version() (major, minor, bugfix int) {
	var a, b, c C.int
	C.nlopt_version(&a, &b, &c)
	return int(a), int(b), int(c)
}

type handle struct {
	opt C.nlopt_opt
	n   int

	handles  []cgo.Handle
	userdata []unsafe.Pointer
}

// register keeps cb reachable from C for the lifetime of the handle.
func (h *handle) register(cb *callback) unsafe.Pointer {
	ch := cgo.NewHandle(cb)
	p := C.new_userdata(C.uintptr_t(ch))
	if p == nil {
		ch.Delete()
		return nil
	}
	h.handles = append(h.handles, ch)
	h.userdata = append(h.userdata, p)
	return p
}

func (h *handle) Dimension() uint { return uint(h.n) }

func (h *handle) SetObjective(dir native.Direction, f native.Func) native.Result {
	if f == nil {
		return native.InvalidArgs
	}
	data := h.register(&callback{f: f})
	if data == nil {
		return native.OutOfMemory
	}
	if dir == native.Maximize {
		return native.Result(C.nlopt_set_max_objective(h.opt, C.func_ptr(), data))
	}
	return native.Result(C.nlopt_set_min_objective(h.opt, C.func_ptr(), data))
}

func (h *handle) SetBound(b native.Bound, values []float64) native.Result {
	if len(values) != h.n {
		return native.InvalidArgs
	}
	if b == native.UpperBound {
		return native.Result(C.nlopt_set_upper_bounds(h.opt, doubles(values)))
	}
	return native.Result(C.nlopt_set_lower_bounds(h.opt, doubles(values)))
}

func (h *handle) SetTolerance(t native.Tolerance, value float64) native.Result {
	v := C.double(value)
	switch t {
	case native.StopValue:
		return native.Result(C.nlopt_set_stopval(h.opt, v))
	case native.FTolRel:
		return native.Result(C.nlopt_set_ftol_rel(h.opt, v))
	case native.FTolAbs:
		return native.Result(C.nlopt_set_ftol_abs(h.opt, v))
	case native.XTolRel:
		return native.Result(C.nlopt_set_xtol_rel(h.opt, v))
	case native.XTolAbs:
		return native.Result(C.nlopt_set_xtol_abs1(h.opt, v))
	case native.MaxEval:
		return native.Result(C.nlopt_set_maxeval(h.opt, C.int(math.Min(value, math.MaxInt32))))
	case native.MaxTime:
		return native.Result(C.nlopt_set_maxtime(h.opt, v))
	}
	return native.InvalidArgs
}

func (h *handle) AddConstraint(kind native.ConstraintKind, f native.Func, tol float64) native.Result {
	if f == nil {
		return native.InvalidArgs
	}
	data := h.register(&callback{f: f})
	if data == nil {
		return native.OutOfMemory
	}
	if kind == native.Equality {
		return native.Result(C.nlopt_add_equality_constraint(h.opt, C.func_ptr(), data, C.double(tol)))
	}
	return native.Result(C.nlopt_add_inequality_constraint(h.opt, C.func_ptr(), data, C.double(tol)))
}

func (h *handle) AddMConstraint(kind native.ConstraintKind, f native.MFunc, tols []float64) native.Result {
	if f == nil || len(tols) == 0 {
		return native.InvalidArgs
	}
	data := h.register(&callback{mf: f})
	if data == nil {
		return native.OutOfMemory
	}
	m := C.uint(len(tols))
	if kind == native.Equality {
		return native.Result(C.nlopt_add_equality_mconstraint(h.opt, m, C.mfunc_ptr(), data, doubles(tols)))
	}
	return native.Result(C.nlopt_add_inequality_mconstraint(h.opt, m, C.mfunc_ptr(), data, doubles(tols)))
}

func (h *handle) Optimize(x []float64) (native.Result, float64) {
	if len(x) != h.n {
		return native.InvalidArgs, math.NaN()
	}
	var f C.double
	code := C.nlopt_optimize(h.opt, doubles(x), &f)
	return native.Result(code), float64(f)
}

func (h *handle) ForceStop() {
	C.nlopt_force_stop(h.opt)
}

func (h *handle) Destroy() {
	if h.opt == nil {
		return
	}
	C.nlopt_destroy(h.opt)
	h.opt = nil
	for _, ch := range h.handles {
		ch.Delete()
	}
	for _, p := range h.userdata {
		C.free(p)
	}
	h.handles, h.userdata = nil, nil
}

// doubles passes s to C for the duration of one call.
func doubles(s []float64) *C.double {
	if len(s) == 0 {
		return nil
	}
	return (*C.double)(unsafe.Pointer(&s[0]))
}
