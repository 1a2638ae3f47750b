package unflatten

import (
	"errors"
	"fmt"
)

// ErrMainSheetNotFound indicates the configured main sheet is not among the
// input sheets.
var ErrMainSheetNotFound = errors.New("main sheet not found")

// ErrInvalidTimezone indicates the configured timezone is unknown.
var ErrInvalidTimezone = errors.New("invalid timezone")

// ErrUnsupportedFormat indicates the input format could not be handled.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrRootIDColumnMissing indicates a main sheet row lacks the root id column.
var ErrRootIDColumnMissing = errors.New("root id column missing")

// errMissingParent marks a child row whose parent record cannot be chosen.
var errMissingParent = errors.New("parent record not found")

// RowError represents an unexpected failure on one row. It stops the run.
type RowError struct {
	SheetName string
	Row       int
	Err       error
	// Stack is the goroutine stack when the failure was a panic.
	Stack []byte
}

func (e *RowError) Error() string {
	return fmt.Sprintf("error parsing line %d of sheet %q: %v", e.Row, e.SheetName, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a new RowError.
func NewRowError(sheetName string, row int, err error) *RowError {
	return &RowError{
		SheetName: sheetName,
		Row:       row,
		Err:       err,
	}
}
