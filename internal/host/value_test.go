package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPresent(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, false},
		{"undefined", Undefined, false},
		{"null", Null, false},
		{"zero", Number(0), true},
		{"empty string", String(""), true},
		{"false", Bool(false), true},
		{"empty array", NewArray(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPresent(tt.v))
		})
	}
}

func TestNumberOf(t *testing.T) {
	assert.Equal(t, Number(3), NumberOf(3))
	assert.Equal(t, Number(3), NumberOf(uint8(3)))
	assert.Equal(t, Number(0.5), NumberOf(float32(0.5)))
}

func TestArraySetGrows(t *testing.T) {
	a := NewArray(1)
	a.Set(3, Number(2))

	require.Equal(t, 4, a.Len())
	assert.Equal(t, KindUndefined, KindOf(a.Get(1)))
	assert.Equal(t, Number(2), a.Get(3))
	assert.Equal(t, KindUndefined, KindOf(a.Get(10)))
	assert.Equal(t, KindUndefined, KindOf(a.Get(-1)))
}

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := NewObject().
		Set("b", Number(1)).
		Set("a", Number(2)).
		Set("b", Number(3))

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	assert.Equal(t, Number(3), o.Get("b"))

	o.Delete("b")
	assert.Equal(t, []string{"a"}, o.Keys())
	assert.False(t, o.Has("b"))
	assert.Equal(t, KindUndefined, KindOf(o.Get("b")))
}

func TestFuncOf(t *testing.T) {
	boom := errors.New("boom")
	f := FuncOf(func(args ...Value) (Value, error) {
		if len(args) == 0 {
			return nil, boom
		}
		return args[0], nil
	})

	fn, ok := AsFunction(f)
	require.True(t, ok)

	v, err := fn.Call(Number(4))
	require.NoError(t, err)
	assert.Equal(t, Number(4), v)

	_, err = fn.Call()
	assert.ErrorIs(t, err, boom)

	_, ok = AsFunction(Number(1))
	assert.False(t, ok)
}

func TestFromGo(t *testing.T) {
	doc := map[string]interface{}{
		"numberOfParameters": 2,
		"lowerBounds":        []interface{}{0.0, -5},
		"algorithm":          "LN_COBYLA",
		"nested":             map[interface{}]interface{}{"ok": true},
		"missing":            nil,
	}

	v, err := FromGo(doc)
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"algorithm", "lowerBounds", "missing", "nested", "numberOfParameters"}, obj.Keys())
	assert.Equal(t, Number(2), obj.Get("numberOfParameters"))
	assert.Equal(t, String("LN_COBYLA"), obj.Get("algorithm"))
	assert.Equal(t, KindNull, KindOf(obj.Get("missing")))

	lb := obj.Get("lowerBounds").(*Array)
	assert.Equal(t, []Value{Number(0), Number(-5)}, lb.Values())

	nested := obj.Get("nested").(*Object)
	assert.Equal(t, Bool(true), nested.Get("ok"))

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestToGo(t *testing.T) {
	obj := NewObject().
		Set("x", NumbersOf(1, 2)).
		Set("f", FuncOf(func(...Value) (Value, error) { return nil, nil })).
		Set("s", String("ok"))

	got := ToGo(obj)
	assert.Equal(t, map[string]interface{}{
		"x": []interface{}{1.0, 2.0},
		"f": "[function]",
		"s": "ok",
	}, got)
}
