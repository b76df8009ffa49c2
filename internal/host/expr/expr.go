// Package expr is a small scripting host: objective and constraint callbacks
// written as arithmetic expressions over the parameters x0, x1, ... .
//
// A scalar callback has a Value expression and is called as (n, x, grad). A
// vector callback has one expression per constraint in Values and is called
// as (m, n, x, grad). When the caller passes a gradient array it is filled
// from the Gradient expressions, or by finite differences when none are
// given. Vector gradients are flattened row by row: entry i*n+j is the
// derivative of constraint i with respect to x_j.
package expr

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/manakau-com/node-nlopt/internal/errors"
	"github.com/manakau-com/node-nlopt/internal/host"
)

// Spec is the source of one callback.
type Spec struct {
	Value    string   `yaml:"value,omitempty" json:"value,omitempty" validate:"required_without=Values,excluded_with=Values"`
	Values   []string `yaml:"values,omitempty" json:"values,omitempty" validate:"required_without=Value,omitempty,dive,required"`
	Gradient []string `yaml:"gradient,omitempty" json:"gradient,omitempty" validate:"omitempty,dive,required"`
}

var (
	validate = validator.New()
	paramRe  = regexp.MustCompile(`^x(0|[1-9][0-9]*)$`)
)

// Function is a compiled Spec. It implements host.Function.
type Function struct {
	spec     Spec
	value    *expression
	values   []*expression
	gradient []*expression
}

// expression is a parsed expression with its source.
type expression struct {
	src string
	e   *govaluate.EvaluableExpression
}

var _ host.Function = (*Function)(nil)

// Compile validates and parses spec.
func Compile(spec Spec) (*Function, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, apperrors.Wrap(err, "invalid callback").WithComponent("expr")
	}

	f := &Function{spec: spec}
	var err error
	if spec.Value != "" {
		if f.value, err = compile(spec.Value); err != nil {
			return nil, err
		}
	}
	for _, src := range spec.Values {
		e, err := compile(src)
		if err != nil {
			return nil, err
		}
		f.values = append(f.values, e)
	}
	for _, src := range spec.Gradient {
		e, err := compile(src)
		if err != nil {
			return nil, err
		}
		f.gradient = append(f.gradient, e)
	}
	if f.value == nil && f.values == nil {
		return nil, apperrors.New("callback has no expressions").WithComponent("expr")
	}
	return f, nil
}

func compile(src string) (*expression, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(src, functions)
	if err != nil {
		return nil, apperrors.Wrapf(err, "compile %q", src).WithComponent("expr")
	}
	for _, tok := range e.Tokens() {
		if tok.Kind != govaluate.VARIABLE {
			continue
		}
		v, _ := tok.Value.(string)
		if _, ok := constants[v]; ok || v == "n" || v == "m" || paramRe.MatchString(v) {
			continue
		}
		return nil, apperrors.Errorf("compile %q: unknown variable %q", src, v).WithComponent("expr")
	}
	return &expression{src: src, e: e}, nil
}

// Kind implements host.Value.
func (*Function) Kind() host.Kind { return host.KindFunction }

// Spec returns the source the function was compiled from.
func (f *Function) Spec() Spec { return f.spec }

// Vector reports whether f is a vector-valued callback.
func (f *Function) Vector() bool { return f.values != nil }

func (f *Function) String() string {
	if f.Vector() {
		return fmt.Sprintf("%q", f.spec.Values)
	}
	return f.spec.Value
}

// Call implements host.Function.
func (f *Function) Call(args ...host.Value) (host.Value, error) {
	if f.Vector() {
		if len(args) < 3 {
			return nil, fmt.Errorf("vector callback expects (m, n, x, grad), got %d arguments", len(args))
		}
		return f.callVector(args[2], arg(args, 3))
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("callback expects (n, x, grad), got %d arguments", len(args))
	}
	return f.callScalar(args[1], arg(args, 2))
}

func arg(args []host.Value, i int) host.Value {
	if i < len(args) {
		return args[i]
	}
	return host.Undefined
}

func (f *Function) callScalar(xv, gv host.Value) (host.Value, error) {
	x, err := numbers(xv)
	if err != nil {
		return nil, err
	}
	env := newEnv(x, 0)

	v, err := env.eval(f.value)
	if err != nil {
		return nil, err
	}

	grad, ok := gv.(*host.Array)
	if !ok {
		return host.Number(v), nil
	}
	g := make([]float64, len(x))
	if f.gradient != nil {
		if len(f.gradient) != len(x) {
			return nil, fmt.Errorf("gradient has %d expressions for %d parameters", len(f.gradient), len(x))
		}
		for i, e := range f.gradient {
			if g[i], err = env.eval(e); err != nil {
				return nil, err
			}
		}
	} else {
		for j := range x {
			d, err := env.partial(j, v, func() ([]float64, error) {
				fx, err := env.eval(f.value)
				return []float64{fx}, err
			})
			if err != nil {
				return nil, err
			}
			g[j] = d[0]
		}
	}
	for i, gi := range g {
		grad.Set(i, host.Number(gi))
	}
	return host.Number(v), nil
}

func (f *Function) callVector(xv, gv host.Value) (host.Value, error) {
	x, err := numbers(xv)
	if err != nil {
		return nil, err
	}
	m, n := len(f.values), len(x)
	env := newEnv(x, m)

	eval := func() ([]float64, error) {
		out := make([]float64, m)
		for i, e := range f.values {
			if out[i], err = env.eval(e); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	vals, err := eval()
	if err != nil {
		return nil, err
	}

	if grad, ok := gv.(*host.Array); ok {
		g := make([]float64, m*n)
		if f.gradient != nil {
			if len(f.gradient) != m*n {
				return nil, fmt.Errorf("gradient has %d expressions for %d constraints over %d parameters", len(f.gradient), m, n)
			}
			for k, e := range f.gradient {
				if g[k], err = env.eval(e); err != nil {
					return nil, err
				}
			}
		} else {
			for j := 0; j < n; j++ {
				col, err := env.partials(j, vals, eval)
				if err != nil {
					return nil, err
				}
				for i := range col {
					g[i*n+j] = col[i]
				}
			}
		}
		for k, gk := range g {
			grad.Set(k, host.Number(gk))
		}
	}
	return host.NumbersOf(vals...), nil
}

// env is the parameter map of one evaluation.
type env struct {
	x      []float64
	params map[string]interface{}
}

func newEnv(x []float64, m int) *env {
	params := make(map[string]interface{}, len(x)+len(constants)+2)
	for k, v := range constants {
		params[k] = v
	}
	params["n"] = float64(len(x))
	params["m"] = float64(m)
	for i, xi := range x {
		params[paramName(i)] = xi
	}
	return &env{x: x, params: params}
}

func paramName(i int) string {
	return "x" + strconv.Itoa(i)
}

func (e *env) eval(x *expression) (float64, error) {
	out, err := x.e.Evaluate(e.params)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", x.src, err)
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("evaluate %q: result is %T, not a number", x.src, out)
	}
}

// partial returns the forward difference of fn along x_j from base.
func (e *env) partial(j int, base float64, fn func() ([]float64, error)) ([]float64, error) {
	return e.partials(j, []float64{base}, fn)
}

func (e *env) partials(j int, base []float64, fn func() ([]float64, error)) ([]float64, error) {
	xj := e.x[j]
	h := math.Sqrt(epsilon) * math.Max(1, math.Abs(xj))
	name := paramName(j)

	e.params[name] = xj + h
	shifted, err := fn()
	e.params[name] = xj
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(base))
	for i := range base {
		out[i] = (shifted[i] - base[i]) / h
	}
	return out, nil
}

const epsilon = 2.220446049250313e-16

func numbers(v host.Value) ([]float64, error) {
	arr, ok := v.(*host.Array)
	if !ok {
		return nil, fmt.Errorf("x must be an array, got %s", host.Describe(v))
	}
	out := make([]float64, arr.Len())
	for i := range out {
		f, ok := host.AsNumber(arr.Get(i))
		if !ok {
			return nil, fmt.Errorf("x[%d] is %s, not a number", i, host.Describe(arr.Get(i)))
		}
		out[i] = f
	}
	return out, nil
}
