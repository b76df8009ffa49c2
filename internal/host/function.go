package host

// Function is a host callable. Call runs synchronously on the calling
// goroutine; a non-nil error plays the role of an exception thrown by the host.
type Function interface {
	Value
	Call(args ...Value) (Value, error)
}

// FuncOf adapts an ordinary Go function to the Function interface.
type FuncOf func(args ...Value) (Value, error)

// Kind implements Value.
func (FuncOf) Kind() Kind { return KindFunction }

// Call implements Function.
func (f FuncOf) Call(args ...Value) (Value, error) {
	return f(args...)
}

// AsFunction returns v as a Function when it is callable.
func AsFunction(v Value) (Function, bool) {
	f, ok := v.(Function)
	if !ok || f == nil {
		return nil, false
	}
	return f, true
}
