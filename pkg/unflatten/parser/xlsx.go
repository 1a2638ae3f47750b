package parser

import (
	"iter"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
	"github.com/xuri/excelize/v2"
)

// OpenXLSX opens an Excel workbook and returns its sheets in workbook
// order. The workbook must be closed once the sheets have been read.
func OpenXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return newXLSXWorkbook(f), nil
}

func newXLSXWorkbook(f *excelize.File) *Workbook {
	wb := &Workbook{closer: f}
	for _, name := range f.GetSheetList() {
		wb.Sheets = append(wb.Sheets, &xlsxSheet{f: f, name: name})
	}
	return wb
}

// xlsxSheet reads rows from one worksheet. The first row is the header;
// columns with an empty header cell are ignored.
type xlsxSheet struct {
	f    *excelize.File
	name string
}

func (s *xlsxSheet) Name() string {
	return s.name
}

func (s *xlsxSheet) Rows() iter.Seq2[*models.Row, error] {
	return func(yield func(*models.Row, error) bool) {
		rows, err := s.f.Rows(s.name)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		cells := newCellReader(s.f, s.name)
		var headers []string
		rowNum := 0
		for rows.Next() {
			rowNum++ // 1-based row index
			cols, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				yield(nil, err)
				return
			}

			if rowNum == 1 {
				headers = cols
				continue
			}

			row := models.NewRow()
			for colIdx, header := range headers {
				if header == "" {
					continue
				}
				if colIdx >= len(cols) || cols[colIdx] == "" {
					row.Set(header, nil)
					continue
				}
				row.Set(header, cells.value(colIdx+1, rowNum, cols[colIdx]))
			}
			if !yield(row, nil) {
				return
			}
		}
		if err := rows.Error(); err != nil {
			yield(nil, err)
		}
	}
}
