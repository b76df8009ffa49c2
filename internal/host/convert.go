package host

import (
	"fmt"
	"sort"
)

// FromGo converts a decoded document tree (as produced by encoding/json or
// yaml.v3 when decoding into interface{}) into host values. Host values found
// in the tree are kept as they are. Map keys are inserted in sorted order.
func FromGo(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return NumberOf(t), nil
	case int8:
		return NumberOf(t), nil
	case int16:
		return NumberOf(t), nil
	case int32:
		return NumberOf(t), nil
	case int64:
		return NumberOf(t), nil
	case uint:
		return NumberOf(t), nil
	case uint8:
		return NumberOf(t), nil
	case uint16:
		return NumberOf(t), nil
	case uint32:
		return NumberOf(t), nil
	case uint64:
		return NumberOf(t), nil
	case float32:
		return NumberOf(t), nil
	case float64:
		return Number(t), nil
	case []float64:
		return NumbersOf(t...), nil
	case []interface{}:
		arr := &Array{elems: make([]Value, 0, len(t))}
		for i, e := range t {
			hv, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.Push(hv)
		}
		return arr, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			hv, err := FromGo(t[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj.Set(k, hv)
		}
		return obj, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported object key %v (%T)", k, k)
			}
			m[ks] = e
		}
		return FromGo(m)
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// ToGo converts a host value back into plain Go data suitable for encoding.
// Functions become the string "[function]"; undefined becomes nil.
func ToGo(v Value) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case Number:
		return float64(t)
	case String:
		return string(t)
	case Bool:
		return bool(t)
	case *Array:
		out := make([]interface{}, t.Len())
		for i := range out {
			out[i] = ToGo(t.Get(i))
		}
		return out
	case *Object:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.Keys() {
			out[k] = ToGo(t.Get(k))
		}
		return out
	case Function:
		return "[function]"
	default:
		return nil
	}
}
