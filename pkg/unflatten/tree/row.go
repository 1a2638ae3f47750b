package tree

import (
	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// UnflattenRow turns a type converted row into a nested object. Nil values
// are skipped. Repeating groups written directly in the row are tagged as
// roll-up data.
func UnflattenRow(row *models.Row, idName string) (*models.Object, error) {
	out := models.NewObject()
	opts := ResolveOptions{IDName: idName, TopSheet: true}
	for _, column := range row.Columns() {
		v, _ := row.Get(column)
		if v == nil {
			continue
		}
		segments := SplitPath(column)
		parent, err := Resolve(out, segments[:len(segments)-1], opts)
		if err != nil {
			return nil, err
		}
		parent.Set(segments[len(segments)-1], models.Scalar{Value: v})
	}
	return out, nil
}
