// Package problem loads optimization problems from YAML documents. A problem
// document has the shape of the optimizer configuration object; callbacks are
// written as expressions (see package expr) and compiled while loading:
//
//	algorithm: LD_MMA
//	numberOfParameters: 2
//	minObjectiveFunction:
//	  value: sqrt(x1)
//	  gradient: ["0", "0.5 / sqrt(x1)"]
//	inequalityConstraints:
//	  - callback: pow(2 * x0, 3) - x1
//	    tolerance: 1e-8
//	initialGuess: [1.234, 5.678]
//
// A callback is either a mapping with value, values and gradient keys or a
// bare string, which is shorthand for a scalar value without gradient. Any
// other key is passed through untouched, so the optimizer reports mistakes in
// them the same way it does for configuration built in code.
package problem

import (
	"bytes"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/manakau-com/node-nlopt/internal/errors"
	"github.com/manakau-com/node-nlopt/internal/host"
	"github.com/manakau-com/node-nlopt/internal/host/expr"
)

var (
	objectiveKeys  = []string{"minObjectiveFunction", "maxObjectiveFunction"}
	constraintKeys = []string{
		"inequalityConstraints",
		"equalityConstraints",
		"inequalityMConstraints",
		"equalityMConstraints",
	}

	validate = validator.New()
)

// header is the part of a document checked before anything is compiled.
type header struct {
	Algorithm          interface{} `yaml:"algorithm" validate:"required"`
	NumberOfParameters *float64    `yaml:"numberOfParameters" validate:"required,gte=0"`
}

// Load reads and parses the problem file at path.
func Load(path string) (*host.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "read problem %s", path).WithComponent("problem")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, "load %s", path).WithComponent("problem")
	}
	return cfg, nil
}

// Parse turns a problem document into an optimizer configuration object.
func Parse(data []byte) (*host.Object, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(err, "parse problem").WithComponent("problem")
	}
	if doc == nil {
		return nil, apperrors.New("empty problem document").WithComponent("problem")
	}

	var h header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, apperrors.Wrap(err, "parse problem header").WithComponent("problem")
	}
	if err := validate.Struct(h); err != nil {
		return nil, apperrors.Wrap(err, "invalid problem").WithComponent("problem")
	}

	for _, key := range objectiveKeys {
		v, ok := doc[key]
		if !ok {
			continue
		}
		fn, err := compileCallback(v)
		if err != nil {
			return nil, apperrors.Wrap(err, key).WithComponent("problem")
		}
		doc[key] = fn
	}

	for _, key := range constraintKeys {
		list, ok := doc[key].([]interface{})
		if !ok {
			continue
		}
		for i, item := range list {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			cb, ok := m["callback"]
			if !ok {
				continue
			}
			fn, err := compileCallback(cb)
			if err != nil {
				return nil, apperrors.Wrapf(err, "%s[%d]", key, i).WithComponent("problem")
			}
			m["callback"] = fn
		}
	}

	v, err := host.FromGo(doc)
	if err != nil {
		return nil, apperrors.Wrap(err, "convert problem").WithComponent("problem")
	}
	return v.(*host.Object), nil
}

func compileCallback(v interface{}) (*expr.Function, error) {
	switch t := v.(type) {
	case string:
		return expr.Compile(expr.Spec{Value: t})
	case map[string]interface{}:
		raw, err := yaml.Marshal(t)
		if err != nil {
			return nil, err
		}
		var spec expr.Spec
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return nil, apperrors.Wrap(err, "invalid callback")
		}
		return expr.Compile(spec)
	}
	return nil, apperrors.Errorf("callback must be an expression or a mapping, got %T", v)
}
