package models

import (
	"reflect"

	"github.com/shopspring/decimal"
)

// Equal reports whether two trees hold the same data. Object field order is
// ignored; the order of repeating group elements is not. A pending MultiMap
// compares equal to an Array holding the same items.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Scalar:
		y, ok := b.(Scalar)
		return ok && scalarEqual(x.Value, y.Value)
	case *Object:
		y, ok := b.(*Object)
		if !ok || x == nil || y == nil {
			return ok && x == y
		}
		if x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			other, found := y.fields[k]
			if !found || !Equal(x.fields[k], other) {
				return false
			}
		}
		return true
	case *MultiMap, Array:
		left, ok := elements(a)
		if !ok {
			return false
		}
		right, ok := elements(b)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !Equal(left[i], right[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func elements(n Node) ([]Node, bool) {
	switch x := n.(type) {
	case Array:
		return x, true
	case *MultiMap:
		items := x.Items()
		out := make([]Node, len(items))
		for i, o := range items {
			out[i] = o
		}
		return out, true
	}
	return nil, false
}

func scalarEqual(a, b interface{}) bool {
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}
