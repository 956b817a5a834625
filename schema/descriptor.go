package schema

import (
	"fmt"
	"strings"
	"time"
)

// Descriptor is a hand-built schema. Its instances are Record values.
type Descriptor struct {
	name   string
	fields []Field
}

var _ Schema = (*Descriptor)(nil)

// NewDescriptor validates the fields and returns a schema named name.
func NewDescriptor(name string, fields ...Field) (*Descriptor, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := checkField(name, f); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, &Error{Schema: name, Field: f.Name, Reason: "declared twice"}
		}
		seen[f.Name] = true
	}
	return &Descriptor{name: name, fields: append([]Field(nil), fields...)}, nil
}

func (d *Descriptor) Name() string { return d.name }

func (d *Descriptor) Fields() []Field { return append([]Field(nil), d.fields...) }

// Construct returns a Record after checking every value against its field type.
func (d *Descriptor) Construct(values []any) (any, error) {
	if len(values) != len(d.fields) {
		return nil, &Error{Schema: d.name, Reason: fmt.Sprintf("%d values for %d fields", len(values), len(d.fields))}
	}
	for i, f := range d.fields {
		if !fits(f, values[i]) {
			return nil, &Error{Schema: d.name, Field: f.Name, Reason: fmt.Sprintf("got %T for a %s field", values[i], f.Type)}
		}
	}
	return Record{schema: d, values: append([]any(nil), values...)}, nil
}

func (d *Descriptor) Values(instance any) ([]any, error) {
	r, ok := instance.(Record)
	if !ok || r.schema != d {
		return nil, &Error{Schema: d.name, Reason: fmt.Sprintf("instance of type %T", instance)}
	}
	return r.Values(), nil
}

func fits(f Field, v any) bool {
	if v == nil {
		return true
	}
	switch f.Type {
	case Int32:
		_, ok := v.(int32)
		return ok
	case Int64:
		_, ok := v.(int64)
		return ok
	case Double:
		_, ok := v.(float64)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case Bool:
		_, ok := v.(bool)
		return ok
	case Duration:
		_, ok := v.(time.Duration)
		return ok
	case Object:
		_, err := f.Schema.Values(v)
		return err == nil
	}
	return false
}

// Record is an immutable instance of a Descriptor.
type Record struct {
	schema *Descriptor
	values []any
}

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	if r.schema == nil {
		return nil, false
	}
	for i, f := range r.schema.fields {
		if f.Name == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Names lists field names in schema order.
func (r Record) Names() []string {
	if r.schema == nil {
		return nil
	}
	names := make([]string, len(r.schema.fields))
	for i, f := range r.schema.fields {
		names[i] = f.Name
	}
	return names
}

func (r Record) Len() int { return len(r.values) }

// Values returns a copy of the field values in schema order.
func (r Record) Values() []any { return append([]any(nil), r.values...) }

func (r Record) String() string {
	var b strings.Builder
	if r.schema != nil {
		b.WriteString(r.schema.name)
	}
	b.WriteByte('{')
	for i, name := range r.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", name, r.values[i])
	}
	b.WriteByte('}')
	return b.String()
}
