// Package output serializes finalized record trees.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// ErrNotFinalized indicates a tree still holds a pending repeating group.
var ErrNotFinalized = errors.New("record tree is not finalized")

// ToJSON serializes records as a JSON array, keeping field order. A non-empty
// rootListPath wraps the array in an object under that key.
func ToJSON(records models.Array, rootListPath string, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if rootListPath != "" {
		buf.WriteByte('{')
		if err := writeJSONValue(&buf, rootListPath); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
	}
	if err := writeJSONNode(&buf, records); err != nil {
		return nil, err
	}
	if rootListPath != "" {
		buf.WriteByte('}')
	}

	if !pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeJSONNode(buf *bytes.Buffer, n models.Node) error {
	switch x := n.(type) {
	case models.Scalar:
		return writeJSONScalar(buf, x.Value)
	case *models.Object:
		buf.WriteByte('{')
		for i, k := range x.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			v, _ := x.Get(k)
			if err := writeJSONNode(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case models.Array:
		buf.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONNode(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *models.MultiMap:
		return ErrNotFinalized
	}
	return fmt.Errorf("unexpected node %T", n)
}

func writeJSONScalar(buf *bytes.Buffer, v interface{}) error {
	switch x := v.(type) {
	case decimal.Decimal:
		buf.WriteString(x.String())
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case nil:
		buf.WriteString("null")
	default:
		return writeJSONValue(buf, x)
	}
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
