package authority

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MultiValueSeparator joins the values of multi-valued fields.
const MultiValueSeparator = "; "

// Field is a single label/value pair.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields is an ordered mapping of field label to field text.
// The zero value is ready to use.
type Fields struct {
	order  []string
	values map[string]string
}

// NewFields creates an empty field mapping.
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set stores value under label. Blank values are ignored so that absent
// upstream data never produces an empty row. Setting an existing label
// replaces its value but keeps its original position.
func (f *Fields) Set(label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, exists := f.values[label]; !exists {
		f.order = append(f.order, label)
	}
	f.values[label] = value
}

// SetJoined stores the non-blank values joined with MultiValueSeparator.
func (f *Fields) SetJoined(label string, values []string) {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	f.Set(label, strings.Join(kept, MultiValueSeparator))
}

// Get returns the value stored under label.
func (f *Fields) Get(label string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f.values[label]
	return v, ok
}

// Has reports whether label is present.
func (f *Fields) Has(label string) bool {
	_, ok := f.Get(label)
	return ok
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Labels returns the labels in insertion order.
func (f *Fields) Labels() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// List returns the fields in insertion order.
func (f *Fields) List() []Field {
	if f == nil {
		return nil
	}
	out := make([]Field, 0, len(f.order))
	for _, label := range f.order {
		out = append(out, Field{Label: label, Value: f.values[label]})
	}
	return out
}

// Equal reports whether both mappings hold the same fields in the same order.
func (f *Fields) Equal(other *Fields) bool {
	if f.Len() != other.Len() {
		return false
	}
	for i, label := range f.Labels() {
		if other.order[i] != label || other.values[label] != f.values[label] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the fields as a JSON object preserving insertion order.
func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f.List() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
