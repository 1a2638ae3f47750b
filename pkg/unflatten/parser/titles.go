package parser

import (
	"iter"
	"strings"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// TitleMapper translates human readable column titles into column paths.
// Titles match case-insensitively with runs of whitespace collapsed.
type TitleMapper struct {
	titles map[string]string
}

// NewTitleMapper creates a mapper from display title to column path.
func NewTitleMapper(titles map[string]string) *TitleMapper {
	m := &TitleMapper{titles: make(map[string]string, len(titles))}
	for title, path := range titles {
		m.titles[normalizeTitle(title)] = path
	}
	return m
}

// Path returns the column path for header. Unknown headers without a "/"
// use ":" as their path separator.
func (m *TitleMapper) Path(header string) string {
	if path, ok := m.titles[normalizeTitle(header)]; ok {
		return path
	}
	if strings.Contains(header, "/") {
		return header
	}
	return strings.ReplaceAll(header, ":", "/")
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// WithTitles wraps sheet so that its headers are translated by m.
func WithTitles(sheet models.Sheet, m *TitleMapper) models.Sheet {
	return &titledSheet{Sheet: sheet, mapper: m}
}

type titledSheet struct {
	models.Sheet
	mapper *TitleMapper
}

func (s *titledSheet) Rows() iter.Seq2[*models.Row, error] {
	return func(yield func(*models.Row, error) bool) {
		for row, err := range s.Sheet.Rows() {
			if err != nil {
				yield(nil, err)
				return
			}
			out := models.NewRow()
			for _, column := range row.Columns() {
				v, _ := row.Get(column)
				out.Set(s.mapper.Path(column), v)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
