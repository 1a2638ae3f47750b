// Package tree builds nested record trees from slash separated column paths.
package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// ErrPathConflict indicates a path descends through a scalar value.
var ErrPathConflict = errors.New("path descends into a scalar value")

// ArraySuffix marks a repeating group segment.
const ArraySuffix = "[]"

// ResolveOptions controls how Resolve treats the segments it walks.
type ResolveOptions struct {
	// IDs maps a raw identifier path (e.g. "grants/recipients[]/id") to the
	// identifier value selecting the element of that repeating group.
	IDs map[string]string
	// IDName is the identifier field name, "id" when empty.
	IDName string
	// Top makes the first segment a repeating group even without "[]".
	Top bool
	// TopSheet tags repeating groups created during the walk as roll-up data.
	TopSheet bool
}

func (o ResolveOptions) idName() string {
	if o.IDName == "" {
		return "id"
	}
	return o.IDName
}

// Resolve walks segments below container, creating missing objects and
// repeating groups, and returns the object the path leads to.
func Resolve(container *models.Object, segments []string, opts ResolveOptions) (*models.Object, error) {
	return resolve(container, segments, "", opts.Top, opts)
}

func resolve(container *models.Object, segments []string, path string, top bool, opts ResolveOptions) (*models.Object, error) {
	if len(segments) == 0 {
		return container, nil
	}

	segment := segments[0]
	if path == "" {
		path = segment
	} else {
		path = path + "/" + segment
	}

	field := strings.TrimSuffix(segment, ArraySuffix)
	existing, found := container.Get(field)
	repeating := top || strings.HasSuffix(segment, ArraySuffix)

	switch node := existing.(type) {
	case models.Scalar:
		return nil, fmt.Errorf("%w: %q", ErrPathConflict, path)
	case models.Array:
		return nil, fmt.Errorf("%w: %q is already finalized", ErrPathConflict, path)
	case *models.MultiMap:
		return resolveElement(node, segments[1:], path, opts)
	case *models.Object:
		return resolve(node, segments[1:], path, false, opts)
	}

	if !found && repeating {
		group := models.NewMultiMap(opts.idName(), opts.TopSheet)
		container.Set(field, group)
		return resolveElement(group, segments[1:], path, opts)
	}

	child := models.NewObject()
	container.Set(field, child)
	return resolve(child, segments[1:], path, false, opts)
}

// resolveElement picks the element of group addressed by the identifier
// recorded for path, adding an empty one when it does not exist yet.
func resolveElement(group *models.MultiMap, rest []string, path string, opts ResolveOptions) (*models.Object, error) {
	key := models.AbsentKey
	v, hasID := opts.IDs[path+"/"+opts.idName()]
	if hasID {
		key = models.KeyOf(v)
	}
	element, ok := group.Lookup(key)
	if !ok {
		element = models.NewObject()
		if hasID {
			element.Set(group.KeyField, models.Scalar{Value: v})
		}
		group.Insert(key, element)
	}
	return resolve(element, rest, path, false, opts)
}

// SplitPath splits a column path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, "/")
}
