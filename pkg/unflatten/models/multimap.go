package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Key addresses an entry of a MultiMap. The zero Key is the absent key,
// used for an element whose identifier is unknown.
type Key struct {
	Present bool
	Value   string
}

// AbsentKey addresses the single untracked element of a MultiMap.
var AbsentKey = Key{}

// KeyOf builds a present key from a raw or typed identifier value.
func KeyOf(v interface{}) Key {
	return Key{Present: true, Value: KeyText(v)}
}

// KeyText renders an identifier value as the text used for matching, so
// that "1", int64(1) and 1.0 name the same record.
func KeyText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// MultiMap is an ordered collection of objects keyed by the value of a
// designated field. Objects sharing a key are merged; objects without the
// field are kept in arrival order after the keyed ones.
type MultiMap struct {
	KeyField string
	// TopSheet marks groups built from rows of the sheet they were written
	// in (roll-up data) rather than from a dedicated child sheet.
	TopSheet bool

	order   []Key
	entries map[Key]*Object
	keyless []*Object
}

// NewMultiMap creates an empty MultiMap keyed by keyField.
func NewMultiMap(keyField string, topSheet bool) *MultiMap {
	return &MultiMap{
		KeyField: keyField,
		TopSheet: topSheet,
		entries:  make(map[Key]*Object),
	}
}

// Append adds item, merging it into an existing entry with the same key.
func (m *MultiMap) Append(item *Object) {
	v, ok := item.Scalar(m.KeyField)
	if !ok {
		m.keyless = append(m.keyless, item)
		return
	}
	key := KeyOf(v)
	if existing, found := m.entries[key]; found {
		existing.Update(item)
		return
	}
	m.Insert(key, item)
}

// Lookup returns the entry stored under key.
func (m *MultiMap) Lookup(key Key) (*Object, bool) {
	o, ok := m.entries[key]
	return o, ok
}

// Insert stores obj under key, replacing any previous entry in place.
func (m *MultiMap) Insert(key Key, obj *Object) {
	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = obj
}

// Len returns the number of objects the map would materialize to.
func (m *MultiMap) Len() int {
	return len(m.order) + len(m.keyless)
}

// Items returns keyed entries in first-insertion order followed by keyless
// entries in arrival order.
func (m *MultiMap) Items() []*Object {
	items := make([]*Object, 0, m.Len())
	for _, k := range m.order {
		items = append(items, m.entries[k])
	}
	return append(items, m.keyless...)
}
