package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectOf(pairs ...interface{}) *Object {
	o := NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		key := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Node:
			o.Set(key, v)
		default:
			o.Set(key, Scalar{Value: v})
		}
	}
	return o
}

func TestMultiMapAppendMergesByKey(t *testing.T) {
	m := NewMultiMap("id", false)
	m.Append(objectOf("id", "1", "a", "first", "b", "kept"))
	m.Append(objectOf("name", "no id"))
	m.Append(objectOf("id", "2", "a", "second"))
	m.Append(objectOf("id", "1", "a", "overwritten", "c", "added"))

	items := m.Items()
	require.Len(t, items, 3)

	assert.Equal(t, []string{"id", "a", "b", "c"}, items[0].Keys())
	a, _ := items[0].Scalar("a")
	assert.Equal(t, "overwritten", a)
	c, _ := items[0].Scalar("c")
	assert.Equal(t, "added", c)

	id, _ := items[1].Scalar("id")
	assert.Equal(t, "2", id)

	name, _ := items[2].Scalar("name")
	assert.Equal(t, "no id", name)
}

func TestMultiMapKeysMatchAcrossTypes(t *testing.T) {
	m := NewMultiMap("id", false)
	m.Append(objectOf("id", int64(7), "a", "x"))
	m.Append(objectOf("id", "7", "b", "y"))

	require.Equal(t, 1, m.Len())
	obj, ok := m.Lookup(KeyOf(7.0))
	require.True(t, ok)
	assert.Equal(t, []string{"id", "a", "b"}, obj.Keys())
}

func TestMultiMapAbsentKeyIsOrderedWithKeyedEntries(t *testing.T) {
	m := NewMultiMap("id", true)
	m.Append(objectOf("name", "keyless"))
	m.Insert(AbsentKey, objectOf("name", "positional"))
	m.Append(objectOf("id", "x"))

	items := m.Items()
	require.Len(t, items, 3)
	first, _ := items[0].Scalar("name")
	assert.Equal(t, "positional", first)
	last, _ := items[2].Scalar("name")
	assert.Equal(t, "keyless", last)

	_, ok := m.Lookup(AbsentKey)
	assert.True(t, ok)
	assert.True(t, m.TopSheet)
}

func TestKeyText(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected string
	}{
		{"abc", "abc"},
		{int64(12), "12"},
		{12, "12"},
		{12.0, "12"},
		{1.5, "1.5"},
		{true, "true"},
		{decimal.RequireFromString("3.10"), "3.1"},
		{nil, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, KeyText(tt.input), "KeyText(%#v)", tt.input)
	}
}

func TestEqual(t *testing.T) {
	left := objectOf("a", "1", "b", decimal.RequireFromString("1.50"))
	right := objectOf("b", decimal.RequireFromString("1.5"), "a", "1")
	assert.True(t, Equal(left, right), "field order is ignored")

	assert.False(t, Equal(left, objectOf("a", "1")))
	assert.False(t, Equal(Scalar{Value: "1"}, Scalar{Value: int64(1)}))

	pending := NewMultiMap("id", false)
	pending.Append(objectOf("id", "x"))
	assert.True(t, Equal(pending, Array{objectOf("id", "x")}))
	assert.False(t, Equal(pending, Array{}))
	assert.False(t, Equal(left, nil))
	assert.True(t, Equal(nil, nil))
}

func TestRowIsEmpty(t *testing.T) {
	assert.True(t, RowOf("a", "", "b", nil).IsEmpty())
	assert.False(t, RowOf("a", "", "b", int64(0)).IsEmpty())
	assert.True(t, NewRow().IsEmpty())

	r := RowOf("a", "1", "b", "2", "a", "3")
	assert.Equal(t, []string{"a", "b"}, r.Columns())
	v, _ := r.Get("a")
	assert.Equal(t, "3", v)
}
