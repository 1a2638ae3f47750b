package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateNumFmts lists the built-in number format ids that display dates or
// times.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// cellReader converts raw cell text of one sheet into typed values.
type cellReader struct {
	f         *excelize.File
	sheetName string
	date1904  bool
	dateStyle map[int]bool
}

func newCellReader(f *excelize.File, sheetName string) *cellReader {
	r := &cellReader{f: f, sheetName: sheetName, dateStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// value returns the typed value of the cell at col/row (both 1-based) whose
// raw, unformatted text is raw. Numbers become int64 or float64, booleans
// bool, date formatted numbers time.Time; everything else stays text.
func (r *cellReader) value(col, row int, raw string) interface{} {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	cellType, err := r.f.GetCellType(r.sheetName, cellName)
	if err != nil {
		return raw
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeDate:
		if t, ok := parseISOTime(raw); ok {
			return t
		}
		return raw
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n := parseValue(raw)
		if _, isText := n.(string); isText {
			return n
		}
		if r.isDateCell(cellName) {
			f, _ := strconv.ParseFloat(raw, 64)
			if t, err := excelize.ExcelDateToTime(f, r.date1904); err == nil {
				return t
			}
		}
		return n
	default:
		return raw
	}
}

// isDateCell reports whether the cell's number format displays a date.
func (r *cellReader) isDateCell(cellName string) bool {
	styleID, err := r.f.GetCellStyle(r.sheetName, cellName)
	if err != nil {
		return false
	}
	if isDate, ok := r.dateStyle[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		isDate = dateNumFmts[style.NumFmt]
		if style.CustomNumFmt != nil {
			isDate = isDateFormat(*style.CustomNumFmt)
		}
	}
	r.dateStyle[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a custom number format code shows date or
// time parts. Quoted literals, escaped characters and bracketed sections
// such as colors are ignored; elapsed time codes like [h] count.
func isDateFormat(code string) bool {
	if code == "" || strings.EqualFold(code, "general") {
		return false
	}
	// Only the positive section decides.
	if i := strings.Index(code, ";"); i >= 0 {
		code = code[:i]
	}
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			inner := strings.ToLower(code[i+1 : i+end])
			if inner == "h" || inner == "hh" || inner == "m" || inner == "mm" || inner == "s" || inner == "ss" {
				return true
			}
			i += end
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISOTime(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}
