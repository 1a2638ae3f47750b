package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// ErrUnknownEncoding indicates a CSV encoding label is not recognised.
var ErrUnknownEncoding = errors.New("unknown encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OpenCSVDir returns one sheet per ".csv" file in dir, sorted by file name.
// The sheet name is the file name without its extension. label is a WHATWG
// encoding label such as "utf-8" or "windows-1252"; empty means utf-8.
func OpenCSVDir(dir, label string) (*Workbook, error) {
	enc, err := lookupEncoding(label)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	wb := &Workbook{}
	for _, name := range names {
		wb.Sheets = append(wb.Sheets, &csvSheet{
			name: strings.TrimSuffix(name, ".csv"),
			path: filepath.Join(dir, name),
			enc:  enc,
		})
	}
	return wb, nil
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// csvSheet reads one CSV file. The first record is the header; cells missing
// from short records read as nil.
type csvSheet struct {
	name string
	path string
	enc  encoding.Encoding
}

func (s *csvSheet) Name() string {
	return s.name
}

func (s *csvSheet) Rows() iter.Seq2[*models.Row, error] {
	return func(yield func(*models.Row, error) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		var r io.Reader = f
		if s.enc != nil {
			r = transform.NewReader(f, s.enc.NewDecoder())
		}
		readCSV(r, yield)
	}
}

// readCSV yields the records of r as rows keyed by the header record.
func readCSV(r io.Reader, yield func(*models.Row, error) bool) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return
	}
	if err != nil {
		yield(nil, err)
		return
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		row := models.NewRow()
		for i, column := range header {
			if i < len(record) {
				row.Set(column, record[i])
			} else {
				row.Set(column, nil)
			}
		}
		if !yield(row, nil) {
			return
		}
	}
}

// CSVSheet returns a sheet reading CSV text from r. It can be iterated once.
func CSVSheet(name string, r io.Reader) models.Sheet {
	return &readerSheet{name: name, r: r}
}

type readerSheet struct {
	name string
	r    io.Reader
}

func (s *readerSheet) Name() string {
	return s.name
}

func (s *readerSheet) Rows() iter.Seq2[*models.Row, error] {
	return func(yield func(*models.Row, error) bool) {
		readCSV(s.r, yield)
	}
}
