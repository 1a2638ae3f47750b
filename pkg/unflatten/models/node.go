// Package models defines the record tree and row structures used while
// unflattening spreadsheets.
package models

// Node is an element of a record tree. It is one of Scalar, *Object,
// *MultiMap (a repeating group still being built) or Array (a finalized
// repeating group).
type Node interface {
	node()
}

// Scalar is a typed leaf value: string, int64, bool, decimal.Decimal,
// []string or [][]string.
type Scalar struct {
	Value interface{}
}

// Array is a finalized repeating group.
type Array []Node

func (Scalar) node()    {}
func (*Object) node()   {}
func (*MultiMap) node() {}
func (Array) node()     {}

// Object is an insertion-ordered string keyed map of nodes.
type Object struct {
	keys   []string
	fields map[string]Node
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Node)}
}

// Get returns the node stored under key.
func (o *Object) Get(key string) (Node, bool) {
	n, ok := o.fields[key]
	return n, ok
}

// Set stores n under key. Replacing an existing key keeps its position.
func (o *Object) Set(key string, n Node) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = n
}

// Keys returns the field names in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Update copies every top-level field of other into o, later values winning.
func (o *Object) Update(other *Object) {
	for _, k := range other.keys {
		o.Set(k, other.fields[k])
	}
}

// Scalar returns the scalar value stored under key, if any.
func (o *Object) Scalar(key string) (interface{}, bool) {
	n, ok := o.fields[key]
	if !ok {
		return nil, false
	}
	s, ok := n.(Scalar)
	if !ok {
		return nil, false
	}
	return s.Value, true
}
