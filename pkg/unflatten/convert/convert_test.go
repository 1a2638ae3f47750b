package convert

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

func collecting() (*Converter, *[]Warning) {
	var warnings []Warning
	c := &Converter{OnWarning: func(w Warning) { warnings = append(warnings, w) }}
	return c, &warnings
}

func TestValue(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		input    interface{}
		expected interface{}
		warns    bool
	}{
		{"empty string", TypeNumber, "", nil, false},
		{"nil", TypeBoolean, nil, nil, false},
		{"number", TypeNumber, "12.50", decimal.RequireFromString("12.5"), false},
		{"number from int", TypeNumber, int64(3), decimal.NewFromInt(3), false},
		{"number fallback", TypeNumber, "12.5a", "12.5a", true},
		{"integer", TypeInteger, " 42 ", int64(42), false},
		{"integer from float", TypeInteger, 4.7, int64(4), false},
		{"integer fallback", TypeInteger, "4.7", "4.7", true},
		{"boolean true", TypeBoolean, "TRUE", true, false},
		{"boolean one", TypeBoolean, int64(1), true, false},
		{"boolean false", TypeBoolean, "0", false, false},
		{"boolean native", TypeBoolean, false, false, false},
		{"boolean fallback", TypeBoolean, "yes", "yes", true},
		{"array", TypeArray, "a;b;c", []string{"a", "b", "c"}, false},
		{"array 2d", TypeArray, "1,2;3,4", [][]string{{"1", "2"}, {"3", "4"}}, false},
		{"array single", TypeArray, "a", []string{"a"}, false},
		{"string from int", TypeString, int64(5), "5", false},
		{"string from float", TypeString, 2.5, "2.5", false},
		{"untagged int passes through", "", int64(5), int64(5), false},
		{"untagged float becomes text", "", 2.5, "2.5", false},
		{"untagged string", "", "hello", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, warnings := collecting()
			got, err := c.Value("col:"+tt.tag, tt.tag, tt.input)
			require.NoError(t, err)
			if d, ok := tt.expected.(decimal.Decimal); ok {
				require.IsType(t, decimal.Decimal{}, got)
				assert.True(t, d.Equal(got.(decimal.Decimal)), "got %v", got)
			} else {
				assert.Equal(t, tt.expected, got)
			}
			if tt.warns {
				require.Len(t, *warnings, 1)
				assert.Equal(t, tt.tag, (*warnings)[0].Tag)
				assert.Equal(t, tt.input, (*warnings)[0].Value)
			} else {
				assert.Empty(t, *warnings)
			}
		})
	}
}

func TestValueNumberWarningNamesValue(t *testing.T) {
	c, warnings := collecting()
	got, err := c.Value("amount:number", TypeNumber, "12.5a")
	require.NoError(t, err)
	assert.Equal(t, "12.5a", got)
	require.Len(t, *warnings, 1)
	assert.Equal(t, "amount:number", (*warnings)[0].Column)
	assert.Contains(t, (*warnings)[0].Message, `"12.5a"`)
}

func TestValueUnknownTag(t *testing.T) {
	c, _ := collecting()
	_, err := c.Value("amount:float", "float", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTypeTag))

	var tagErr *InvalidTypeTagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "float", tagErr.Tag)
	assert.Equal(t, "amount:float", tagErr.Column)

	got, err := c.Value("amount:float", "float", "")
	require.NoError(t, err, "empty values never reach the tag check")
	assert.Nil(t, got)
}

func TestValueTimestamps(t *testing.T) {
	when := time.Date(2016, 1, 2, 3, 4, 5, 0, time.UTC)

	c := &Converter{}
	got, err := c.Value("date", "", when)
	require.NoError(t, err)
	assert.Equal(t, "2016-01-02T03:04:05+00:00", got)

	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	c = &Converter{Location: london}
	got, err = c.Value("date:string", TypeString, time.Date(2016, 7, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2016-07-02T03:04:05+01:00", got, "the wall clock is kept and the zone attached")

	got, err = c.Value("date", "", time.Date(2016, 1, 2, 3, 4, 5, 250000000, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2016-01-02T03:04:05.250000+00:00", got)
}

func TestRow(t *testing.T) {
	c, _ := collecting()
	row := models.RowOf(
		"id", "1",
		"amount:number", "10",
		"tags:array", "a;b",
		"note", "",
	)

	out, err := c.Row(row)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount", "tags", "note"}, out.Columns())

	note, ok := out.Get("note")
	assert.True(t, ok)
	assert.Nil(t, note)

	_, err = c.Row(models.RowOf("x:bogus", "1"))
	assert.ErrorIs(t, err, ErrInvalidTypeTag)
}

func TestSplitColumn(t *testing.T) {
	tests := []struct {
		column string
		path   string
		tag    string
	}{
		{"a/b", "a/b", ""},
		{"a/b:number", "a/b", "number"},
		{"grants/id:recipients", "grants/id", "recipients"},
		{"a:b:c", "a", "b"},
	}

	for _, tt := range tests {
		path, tag := SplitColumn(tt.column)
		assert.Equal(t, tt.path, path)
		assert.Equal(t, tt.tag, tag)
	}
}
