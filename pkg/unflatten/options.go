// Package unflatten rebuilds nested records from flat spreadsheet sheets.
package unflatten

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Format represents the input format.
type Format string

const (
	// FormatAuto picks CSV for directories and XLSX for files.
	FormatAuto Format = ""
	// FormatCSV reads a directory holding one CSV file per sheet.
	FormatCSV Format = "csv"
	// FormatXLSX reads the sheets of an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// Options configures unflattening behavior.
type Options struct {
	// MainSheetName names the sheet holding the top-level records. It is
	// also the first segment of identifier columns in child sheets.
	MainSheetName string
	// RootID is the column grouping main sheet records (e.g. "ocid").
	// Empty disables grouping.
	RootID string
	// IDName is the identifier field used to match records. Defaults to "id".
	IDName string
	// Timezone is the IANA zone attached to date/time cells. Defaults to UTC.
	Timezone string
	// ConvertTitles maps display titles in headers to column paths.
	ConvertTitles bool
	// Titles maps display titles to column paths for every sheet.
	Titles map[string]string
	// SheetTitles holds per-sheet title mappings, consulted before Titles.
	SheetTitles map[string]map[string]string
	// Encoding is the character encoding of CSV input. Defaults to utf-8.
	Encoding string
	// Logger receives warnings as they are emitted. If nil, nothing is logged.
	Logger *slog.Logger
}

// DefaultOptions returns default unflattening options.
func DefaultOptions() Options {
	return Options{
		IDName:   "id",
		Timezone: "UTC",
	}
}

// ResolveIDName returns the identifier field name.
func (o Options) ResolveIDName() string {
	if o.IDName != "" {
		return o.IDName
	}
	return "id"
}

// Location loads the configured timezone.
func (o Options) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, o.Timezone)
	}
	return loc, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
