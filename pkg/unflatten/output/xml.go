package output

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ukaji3/unflatten-go/pkg/unflatten/models"
)

// Default element names of XML output.
const (
	DefaultXMLRootTag = "iati-activities"
	DefaultXMLItemTag = "iati-activity"
)

// Field naming conventions of XML output.
const (
	attrPrefix = "@"
	textField  = "text()"
)

// ToXML serializes records as children of a rootTag element, one itemTag
// element per record. Fields named "@attr" become attributes and "text()"
// the element text; repeating groups repeat their element.
func ToXML(records models.Array, rootTag, itemTag string, pretty bool) ([]byte, error) {
	if rootTag == "" {
		rootTag = DefaultXMLRootTag
	}
	if itemTag == "" {
		itemTag = DefaultXMLItemTag
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if pretty {
		enc.Indent("", "  ")
	}

	root := xml.StartElement{Name: xml.Name{Local: rootTag}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, rec := range records {
		obj, ok := rec.(*models.Object)
		if !ok {
			return nil, fmt.Errorf("record is %T, not an object", rec)
		}
		if err := writeXMLElement(enc, itemTag, obj); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	if pretty {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func writeXMLElement(enc *xml.Encoder, name string, obj *models.Object) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for _, k := range obj.Keys() {
		if !strings.HasPrefix(k, attrPrefix) {
			continue
		}
		v, ok := obj.Scalar(k)
		if !ok {
			return fmt.Errorf("attribute %q of <%s> is not a scalar", k, name)
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k[len(attrPrefix):]}, Value: xmlText(v)})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for _, k := range obj.Keys() {
		if strings.HasPrefix(k, attrPrefix) {
			continue
		}
		v, _ := obj.Get(k)
		if k == textField {
			s, ok := v.(models.Scalar)
			if !ok {
				return fmt.Errorf("text of <%s> is not a scalar", name)
			}
			if err := enc.EncodeToken(xml.CharData(xmlText(s.Value))); err != nil {
				return err
			}
			continue
		}
		if err := writeXMLChild(enc, k, v); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeXMLChild(enc *xml.Encoder, name string, n models.Node) error {
	switch x := n.(type) {
	case *models.Object:
		return writeXMLElement(enc, name, x)
	case models.Array:
		for _, el := range x {
			if err := writeXMLChild(enc, name, el); err != nil {
				return err
			}
		}
		return nil
	case models.Scalar:
		if list, ok := x.Value.([]string); ok {
			for _, s := range list {
				if err := writeXMLLeaf(enc, name, s); err != nil {
					return err
				}
			}
			return nil
		}
		return writeXMLLeaf(enc, name, xmlText(x.Value))
	case *models.MultiMap:
		return ErrNotFinalized
	}
	return fmt.Errorf("unexpected node %T", n)
}

func writeXMLLeaf(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func xmlText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case [][]string:
		rows := make([]string, len(x))
		for i, r := range x {
			rows[i] = strings.Join(r, ",")
		}
		return strings.Join(rows, ";")
	case []string:
		return strings.Join(x, ";")
	default:
		return fmt.Sprint(x)
	}
}
