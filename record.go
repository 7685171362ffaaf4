package petango

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AdoptableTodayField is set to "true" by IsAdoptableToday on a match.
const AdoptableTodayField = "is_adoptable_today"

var adoptableTodayLocations = map[string]struct{}{
	"i am at the adoption center today!": {},
	"i'm at an event today!":             {},
	"i am at an event today!":            {},
}

// CaseStyle selects the key format of Record.AsMap.
type CaseStyle int

const (
	// CaseOriginal keeps field names as they appeared in the XML.
	CaseOriginal CaseStyle = iota
	// CaseNormalized passes field names through Normalize.
	CaseNormalized
)

// Field is one name/value pair of a Record.
type Field struct {
	Name  string `json:"field"`
	Value string `json:"value"`
}

// Record is one entity parsed from a service response, typically a pet.
// Any child tag of the entity becomes a field. A Record is not safe for
// concurrent mutation.
type Record struct {
	values map[string]string
	order  []string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Get returns the value of field, or "" when it is not set.
func (r *Record) Get(field string) string {
	if r == nil {
		return ""
	}
	return r.values[field]
}

// Has reports whether field is set.
func (r *Record) Has(field string) bool {
	if r == nil {
		return false
	}
	_, ok := r.values[field]
	return ok
}

// Set inserts or overwrites field.
func (r *Record) Set(field, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[field]; !ok {
		r.order = append(r.order, field)
	}
	r.values[field] = value
}

// Remove deletes field if present.
func (r *Record) Remove(field string) {
	if r == nil {
		return
	}
	if _, ok := r.values[field]; !ok {
		return
	}
	delete(r.values, field)
	for i, name := range r.order {
		if name == field {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// FieldNames returns a copy of the field names in the order they were first
// set, which for parsed records is document order.
func (r *Record) FieldNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Fields returns the fields as ordered name/value pairs.
func (r *Record) Fields() []Field {
	fields := make([]Field, 0, r.Len())
	for _, name := range r.FieldNames() {
		fields = append(fields, Field{Name: name, Value: r.values[name]})
	}
	return fields
}

// AsMap returns a snapshot of all fields. It never modifies the record; when
// two names normalize to the same key the later field wins.
func (r *Record) AsMap(style CaseStyle) map[string]string {
	m := make(map[string]string, r.Len())
	for _, name := range r.FieldNames() {
		key := name
		if style == CaseNormalized {
			key = Normalize(name)
		}
		m[key] = r.values[name]
	}
	return m
}

// Bool parses field as a boolean, false when unset or unparseable.
func (r *Record) Bool(field string) bool {
	b, err := strconv.ParseBool(r.Get(field))
	return err == nil && b
}

// IsAdoptableToday reports whether the Location field announces the pet is
// at the adoption center or an event today, and records the result in
// AdoptableTodayField.
func (r *Record) IsAdoptableToday() bool {
	location := r.Get("Location")
	if location == "" {
		return false
	}
	if _, ok := adoptableTodayLocations[strings.ToLower(location)]; !ok {
		return false
	}
	r.Set(AdoptableTodayField, "true")
	return true
}

// IsFeatured reports whether the Featured flag reads as a yes.
func (r *Record) IsFeatured() bool {
	return strings.ContainsAny(r.Get("Featured"), "yY")
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{
		values: make(map[string]string, r.Len()),
		order:  r.FieldNames(),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("Record{")
	for i, f := range r.Fields() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", f.Name, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
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

// UnmarshalJSON decodes a JSON object of string values, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}
	r.values = make(map[string]string)
	r.order = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, value)
	}
	_, err = dec.Token()
	return err
}
