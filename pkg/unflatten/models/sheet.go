package models

import "iter"

// Sheet is a named source of rows. Rows are produced lazily; an error
// yielded by the sequence ends the iteration.
type Sheet interface {
	Name() string
	Rows() iter.Seq2[*Row, error]
}

// ListSheet is an in-memory sheet.
type ListSheet struct {
	SheetName string
	Lines     []*Row
}

// Name returns the sheet name.
func (s *ListSheet) Name() string {
	return s.SheetName
}

// Rows yields the stored rows in order.
func (s *ListSheet) Rows() iter.Seq2[*Row, error] {
	return func(yield func(*Row, error) bool) {
		for _, r := range s.Lines {
			if !yield(r, nil) {
				return
			}
		}
	}
}
