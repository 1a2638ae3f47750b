package unflatten

import (
	"log/slog"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/convert"
)

// WarningKind classifies a recoverable problem.
type WarningKind string

const (
	// WarnConversion reports a value kept as a string because it did not fit
	// its column type.
	WarnConversion WarningKind = "conversion"
	// WarnNoParentID reports a child row without populated identifiers.
	WarnNoParentID WarningKind = "no_parent_id"
	// WarnConflictingIDs reports identifier columns that disagree.
	WarnConflictingIDs WarningKind = "conflicting_ids"
	// WarnMissingParent reports a child row whose parent cannot be found.
	WarnMissingParent WarningKind = "missing_parent"
	// WarnSubSheetConflict reports roll-up data replaced by a child sheet.
	WarnSubSheetConflict WarningKind = "sub_sheet_conflict"
)

// Warning is a recoverable problem found while unflattening. Row is the
// 1-based spreadsheet row, the header being row 1.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Sheet   string      `json:"sheet"`
	Row     int         `json:"row,omitempty"`
	Column  string      `json:"column,omitempty"`
	Message string      `json:"message"`
}

// diagnostics collects the warnings of one run and logs each one.
type diagnostics struct {
	logger   *slog.Logger
	warnings []Warning
	sheet    string
	row      int
}

func (d *diagnostics) at(sheet string, row int) {
	d.sheet = sheet
	d.row = row
}

func (d *diagnostics) warn(kind WarningKind, column, msg string) {
	w := Warning{Kind: kind, Sheet: d.sheet, Row: d.row, Column: column, Message: msg}
	d.warnings = append(d.warnings, w)
	attrs := []any{"kind", string(kind), "sheet", w.Sheet, "row", w.Row}
	if column != "" {
		attrs = append(attrs, "column", column)
	}
	d.logger.Warn(msg, attrs...)
}

// conversion adapts converter warnings to the current sheet and row.
func (d *diagnostics) conversion(w convert.Warning) {
	d.warn(WarnConversion, w.Column, w.Message)
}
