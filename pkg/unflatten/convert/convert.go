// Package convert turns raw spreadsheet cell values into typed values using
// the type tag carried by a column header.
package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// Supported type tags.
const (
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeString  = "string"
)

// Warning describes a value that could not be converted to its declared
// type and was kept as a string instead.
type Warning struct {
	Column  string
	Tag     string
	Value   interface{}
	Message string
}

// Converter converts cell values. The zero value renders times in UTC and
// drops warnings.
type Converter struct {
	// Location is the timezone attached to spreadsheet date/time values.
	Location *time.Location
	// OnWarning receives recoverable conversion problems.
	OnWarning func(Warning)
}

// SplitColumn splits a column header into its path and type tag.
func SplitColumn(column string) (path, tag string) {
	parts := strings.Split(column, ":")
	if len(parts) > 1 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// Row converts every column of row, returning a new row keyed by path. Nil
// results are kept so that callers can tell empty cells apart.
func (c *Converter) Row(row *models.Row) (*models.Row, error) {
	out := models.NewRow()
	for _, column := range row.Columns() {
		raw, _ := row.Get(column)
		path, tag := SplitColumn(column)
		v, err := c.Value(column, tag, raw)
		if err != nil {
			return nil, err
		}
		out.Set(path, v)
	}
	return out, nil
}

// Value converts raw according to tag. Unknown tags are an error; values that
// do not fit their tag produce a warning and are returned as strings.
func (c *Converter) Value(column, tag string, raw interface{}) (interface{}, error) {
	if models.IsEmptyValue(raw) {
		return nil, nil
	}

	switch tag {
	case TypeNumber:
		if d, ok := toDecimal(raw); ok {
			return d, nil
		}
		c.warn(column, tag, raw, fmt.Sprintf("Non-numeric value %q found in number column, returning as string instead.", text(raw)))
		return text(raw), nil
	case TypeInteger:
		if i, ok := toInteger(raw); ok {
			return i, nil
		}
		c.warn(column, tag, raw, fmt.Sprintf("Non-integer value %q found in integer column, returning as string instead.", text(raw)))
		return text(raw), nil
	case TypeBoolean:
		switch strings.ToLower(text(raw)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		c.warn(column, tag, raw, fmt.Sprintf("Unrecognised value for boolean: %q, returning as string instead.", text(raw)))
		return text(raw), nil
	case TypeArray:
		return splitArray(text(raw)), nil
	case TypeString:
		if t, ok := raw.(time.Time); ok {
			return c.timestamp(t), nil
		}
		return text(raw), nil
	case "":
		switch v := raw.(type) {
		case time.Time:
			return c.timestamp(v), nil
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		}
		return text(raw), nil
	default:
		return nil, NewInvalidTypeTagError(column, tag)
	}
}

func (c *Converter) warn(column, tag string, raw interface{}, msg string) {
	if c.OnWarning == nil {
		return
	}
	c.OnWarning(Warning{Column: column, Tag: tag, Value: raw, Message: msg})
}

// timestamp attaches the configured zone to the wall clock of t.
func (c *Converter) timestamp(t time.Time) string {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	if local.Nanosecond()/int(time.Microsecond) != 0 {
		return local.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return local.Format("2006-01-02T15:04:05-07:00")
}

func toDecimal(raw interface{}) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case int64:
		return decimal.NewFromInt(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

func toInteger(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// splitArray splits on ";" and, when any element holds a ",", also on ","
// giving a two dimensional array.
func splitArray(s string) interface{} {
	rows := strings.Split(s, ";")
	if !strings.Contains(s, ",") {
		return rows
	}
	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = strings.Split(r, ",")
	}
	return grid
}

// text renders a raw value as a string.
func text(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
