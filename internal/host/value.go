// Package host models the values exchanged with the scripting environment that
// drives an optimization: numbers, strings, arrays, objects and callables.
//
// The optimization bridge never sees a concrete scripting runtime. Anything that
// can present its data as host values (a Go caller, the expression host in
// host/expr, a problem file) can configure a run and supply callbacks.
package host

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
)

// Kind identifies the dynamic type of a host value.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindFunction
)

var kindNames = map[Kind]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindArray:     "array",
	KindObject:    "object",
	KindFunction:  "function",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is any value living on the host side of the bridge.
type Value interface {
	Kind() Kind
}

// Number is a host number. Host numbers are IEEE-754 doubles.
type Number float64

// Kind implements Value.
func (Number) Kind() Kind { return KindNumber }

// Float returns the number as a float64.
func (n Number) Float() float64 { return float64(n) }

// NumberOf converts any Go integer or float into a host number.
func NumberOf[T constraints.Integer | constraints.Float](v T) Number {
	return Number(float64(v))
}

// String is a host string.
type String string

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Bool is a host boolean.
type Bool bool

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

type nullValue struct{}

func (nullValue) Kind() Kind { return KindNull }

type undefinedValue struct{}

func (undefinedValue) Kind() Kind { return KindUndefined }

var (
	// Null is the host null value.
	Null Value = nullValue{}
	// Undefined is the host undefined value. A nil Value is treated the same way.
	Undefined Value = undefinedValue{}
)

// KindOf returns the kind of v, mapping a nil Value to KindUndefined.
func KindOf(v Value) Kind {
	if v == nil {
		return KindUndefined
	}
	return v.Kind()
}

// IsPresent reports whether v carries a value, i.e. it is neither nil,
// undefined nor null.
func IsPresent(v Value) bool {
	switch KindOf(v) {
	case KindUndefined, KindNull:
		return false
	}
	return true
}

// AsNumber returns v as a float64 when it is a host number.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	if !ok {
		return 0, false
	}
	return float64(n), true
}

// Describe renders v for diagnostics.
func Describe(v Value) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case Number:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case String:
		return strconv.Quote(string(t))
	case Bool:
		return strconv.FormatBool(bool(t))
	case *Array:
		return fmt.Sprintf("array(%d)", t.Len())
	case *Object:
		return fmt.Sprintf("object(%d keys)", t.Len())
	default:
		return t.Kind().String()
	}
}
