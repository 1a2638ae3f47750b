package convert

import (
	"errors"
	"fmt"
)

// ErrInvalidTypeTag indicates a column header names an unsupported type.
var ErrInvalidTypeTag = errors.New("unrecognised type")

// InvalidTypeTagError reports the column carrying an unsupported type tag.
type InvalidTypeTagError struct {
	Column string
	Tag    string
}

func (e *InvalidTypeTagError) Error() string {
	return fmt.Sprintf("unrecognised type %q in column %q", e.Tag, e.Column)
}

// Is makes errors.Is(err, ErrInvalidTypeTag) match.
func (e *InvalidTypeTagError) Is(target error) bool {
	return target == ErrInvalidTypeTag
}

// NewInvalidTypeTagError creates a new InvalidTypeTagError.
func NewInvalidTypeTagError(column, tag string) *InvalidTypeTagError {
	return &InvalidTypeTagError{Column: column, Tag: tag}
}
