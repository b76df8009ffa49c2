package expr

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// constants are available in every expression.
var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"phi": math.Phi,
	"inf": math.Inf(1),
}

func unary(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		xs, err := floats(name, args, 1)
		if err != nil {
			return nil, err
		}
		return fn(xs[0]), nil
	}
}

func binary(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		xs, err := floats(name, args, 2)
		if err != nil {
			return nil, err
		}
		return fn(xs[0], xs[1]), nil
	}
}

func variadic(name string, fn func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		xs, err := floats(name, args, -1)
		if err != nil {
			return nil, err
		}
		if len(xs) == 0 {
			return nil, fmt.Errorf("%s: needs at least one argument", name)
		}
		acc := xs[0]
		for _, x := range xs[1:] {
			acc = fn(acc, x)
		}
		return acc, nil
	}
}

// floats converts govaluate arguments to float64. want < 0 accepts any count.
func floats(name string, args []interface{}, want int) ([]float64, error) {
	if want >= 0 && len(args) != want {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", name, want, len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is %T, not a number", name, i, a)
		}
		out[i] = f
	}
	return out, nil
}

var functions = map[string]govaluate.ExpressionFunction{
	"sqrt":  unary("sqrt", math.Sqrt),
	"cbrt":  unary("cbrt", math.Cbrt),
	"exp":   unary("exp", math.Exp),
	"log":   unary("log", math.Log),
	"log2":  unary("log2", math.Log2),
	"log10": unary("log10", math.Log10),
	"abs":   unary("abs", math.Abs),
	"sin":   unary("sin", math.Sin),
	"cos":   unary("cos", math.Cos),
	"tan":   unary("tan", math.Tan),
	"asin":  unary("asin", math.Asin),
	"acos":  unary("acos", math.Acos),
	"atan":  unary("atan", math.Atan),
	"sinh":  unary("sinh", math.Sinh),
	"cosh":  unary("cosh", math.Cosh),
	"tanh":  unary("tanh", math.Tanh),
	"floor": unary("floor", math.Floor),
	"ceil":  unary("ceil", math.Ceil),
	"erf":   unary("erf", math.Erf),
	"erfc":  unary("erfc", math.Erfc),
	"sign": unary("sign", func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	}),
	"pow":   binary("pow", math.Pow),
	"atan2": binary("atan2", math.Atan2),
	"hypot": binary("hypot", math.Hypot),
	"mod":   binary("mod", math.Mod),
	"min":   variadic("min", math.Min),
	"max":   variadic("max", math.Max),
}
