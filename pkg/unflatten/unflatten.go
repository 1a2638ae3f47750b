package unflatten

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/convert"
	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
	"github.com/ukaji3/unflatten-go/pkg/unflatten/parser"
)

// Result holds the records rebuilt from a set of sheets and the warnings
// raised on the way.
type Result struct {
	Records  models.Array
	Warnings []Warning
}

// UnflattenFile reads a CSV directory or an XLSX workbook and unflattens it.
func UnflattenFile(path string, format Format, opts Options) (*Result, error) {
	if format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	var (
		wb  *parser.Workbook
		err error
	)
	switch format {
	case FormatCSV:
		wb, err = parser.OpenCSVDir(path, opts.Encoding)
	case FormatXLSX:
		wb, err = parser.OpenXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return Unflatten(wb.Sheets, opts)
}

// DetectFormat guesses the input format from the path: directories hold CSV
// sheets, .xlsx/.xlsm files are workbooks.
func DetectFormat(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FormatAuto, err
	}
	if info.IsDir() {
		return FormatCSV, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return FormatAuto, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Unflatten rebuilds nested records from sheets. The main sheet supplies the
// top-level records; every other sheet is merged into them through its
// identifier columns, in the given order.
func Unflatten(sheets []models.Sheet, opts Options) (*Result, error) {
	loc, err := opts.Location()
	if err != nil {
		return nil, err
	}

	mainSheet, subs, err := splitSheets(sheets, opts.MainSheetName)
	if err != nil {
		return nil, err
	}
	if opts.ConvertTitles {
		mainSheet = parser.WithTitles(mainSheet, parser.NewTitleMapper(opts.titlesFor(mainSheet.Name())))
		for i, s := range subs {
			subs[i] = parser.WithTitles(s, parser.NewTitleMapper(opts.titlesFor(s.Name())))
		}
	}

	diag := &diagnostics{logger: opts.logger()}
	m := &merger{
		opts:     opts,
		idName:   opts.ResolveIDName(),
		mainName: opts.MainSheetName,
		conv:     &convert.Converter{Location: loc, OnWarning: diag.conversion},
		diag:     diag,
		roots:    make(map[string]*models.MultiMap),
	}

	if err := m.mainPass(mainSheet); err != nil {
		return nil, err
	}
	for _, s := range subs {
		if err := m.childPass(s); err != nil {
			return nil, err
		}
	}

	return &Result{
		Records:  m.finalize(),
		Warnings: diag.warnings,
	}, nil
}

// splitSheets separates the main sheet from the child sheets. The main sheet
// name matches exactly or, failing that, case-insensitively.
func splitSheets(sheets []models.Sheet, mainName string) (models.Sheet, []models.Sheet, error) {
	idx := -1
	for i, s := range sheets {
		if s.Name() == mainName {
			idx = i
			break
		}
	}
	if idx < 0 && mainName != "" {
		for i, s := range sheets {
			if strings.EqualFold(s.Name(), mainName) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %q", ErrMainSheetNotFound, mainName)
	}

	subs := make([]models.Sheet, 0, len(sheets)-1)
	subs = append(subs, sheets[:idx]...)
	subs = append(subs, sheets[idx+1:]...)
	return sheets[idx], subs, nil
}

// titlesFor merges the global title mapping with the one of sheet.
func (o Options) titlesFor(sheet string) map[string]string {
	titles := make(map[string]string, len(o.Titles))
	for k, v := range o.Titles {
		titles[k] = v
	}
	for k, v := range o.SheetTitles[sheet] {
		titles[k] = v
	}
	return titles
}
