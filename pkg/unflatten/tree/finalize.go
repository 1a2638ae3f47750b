package tree

import (
	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// Finalize replaces every MultiMap below obj with the Array it materializes
// to, elements first. Running it on an already finalized tree changes
// nothing.
func Finalize(obj *models.Object) {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		if n := FinalizeNode(v); n != nil {
			obj.Set(k, n)
		}
	}
}

// FinalizeNode finalizes n and returns its replacement, or nil when n is a
// scalar that needs no replacement.
func FinalizeNode(n models.Node) models.Node {
	switch x := n.(type) {
	case *models.Object:
		Finalize(x)
		return x
	case *models.MultiMap:
		return FinalizeGroup(x)
	case models.Array:
		for i, el := range x {
			if r := FinalizeNode(el); r != nil {
				x[i] = r
			}
		}
		return x
	}
	return nil
}

// FinalizeGroup materializes group into its final sequence.
func FinalizeGroup(group *models.MultiMap) models.Array {
	items := group.Items()
	out := make(models.Array, len(items))
	for i, item := range items {
		Finalize(item)
		out[i] = item
	}
	return out
}
