//go:build nlopt && cgo

package cnlopt

// #include <stdint.h>
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/manakau-com/node-nlopt/internal/native"
)

// callback is what the userdata of a registered C callback resolves to.
type callback struct {
	f  native.Func
	mf native.MFunc
}

func lookup(data unsafe.Pointer) *callback {
	return cgo.Handle(*(*C.uintptr_t)(data)).Value().(*callback)
}

func floats(p *C.double, n int) []float64 {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(p)), n)
}

//export goFunc
func goFunc(n C.uint, x, grad *C.double, data unsafe.Pointer) C.double {
	cb := lookup(data)
	return C.double(cb.f(floats(x, int(n)), floats(grad, int(n))))
}

//export goMFunc
func goMFunc(m C.uint, result *C.double, n C.uint, x, grad *C.double, data unsafe.Pointer) {
	cb := lookup(data)
	cb.mf(floats(result, int(m)), floats(x, int(n)), floats(grad, int(m)*int(n)))
}
