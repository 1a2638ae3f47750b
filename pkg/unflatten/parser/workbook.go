// Package parser reads spreadsheet input into rows keyed by column path.
package parser

import (
	"io"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// Workbook is an ordered set of sheets read from one input.
type Workbook struct {
	Sheets []models.Sheet
	closer io.Closer
}

// SheetNames returns the sheet names in input order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name()
	}
	return names
}

// Close releases the underlying file, if any.
func (w *Workbook) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
