package host

// Array is a mutable, ordered host array. Callbacks receive arrays by
// reference, so writes made by the host (for example into a gradient array)
// are visible to the caller after the call returns.
type Array struct {
	elems []Value
}

// NewArray returns an array of n undefined elements.
func NewArray(n int) *Array {
	elems := make([]Value, n)
	for i := range elems {
		elems[i] = Undefined
	}
	return &Array{elems: elems}
}

// ArrayOf returns an array holding the given values.
func ArrayOf(values ...Value) *Array {
	return &Array{elems: append([]Value(nil), values...)}
}

// NumbersOf returns an array of host numbers.
func NumbersOf(values ...float64) *Array {
	elems := make([]Value, len(values))
	for i, v := range values {
		elems[i] = Number(v)
	}
	return &Array{elems: elems}
}

// Kind implements Value.
func (*Array) Kind() Kind { return KindArray }

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.elems)
}

// Get returns element i, or Undefined when i is out of range.
func (a *Array) Get(i int) Value {
	if a == nil || i < 0 || i >= len(a.elems) {
		return Undefined
	}
	return a.elems[i]
}

// Set stores v at index i, growing the array with undefined elements when i
// is past the end.
func (a *Array) Set(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.elems) <= i {
		a.elems = append(a.elems, Undefined)
	}
	a.elems[i] = v
}

// Push appends v.
func (a *Array) Push(v Value) {
	a.elems = append(a.elems, v)
}

// Values returns a copy of the elements.
func (a *Array) Values() []Value {
	if a == nil {
		return nil
	}
	return append([]Value(nil), a.elems...)
}
