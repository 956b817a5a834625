// Package schema describes the shape of a configuration record: its ordered
// fields, their semantic types and the constraints attached to them.
//
// Two backings are provided. Of and Reflect read Go struct types and their
// `config` and `validate` tags; NewDescriptor builds a schema by hand and
// produces Record values. Binders depend only on the Schema interface.
package schema

import "fmt"

// Type is the semantic type of a field.
type Type int

const (
	Unsupported Type = iota
	Int32
	Int64
	Double
	String
	Bool
	Duration
	Object
)

func (t Type) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Double:
		return "double"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Duration:
		return "duration"
	case Object:
		return "object"
	}
	return "unsupported"
}

// Field is one named, typed, constrained slot of a schema.
type Field struct {
	Name string
	Type Type
	// TypeName is the declared type as the user wrote it. It is what
	// errors report for Unsupported fields ("List", "Map", ...).
	TypeName    string
	Constraints []Constraint
	// Schema describes the nested record of an Object field.
	Schema Schema
}

// Schema exposes a record type as data.
//
// Construct receives one value per field, in field order, already of the
// field's type: int32, int64, float64, string, bool, time.Duration, or for
// Object fields an instance built by the nested schema. Values is its
// inverse and reports an instance's field values in the same form.
type Schema interface {
	Name() string
	Fields() []Field
	Construct(values []any) (any, error)
	Values(instance any) ([]any, error)
}

// Error reports a schema that cannot be built or used.
type Error struct {
	Schema string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %s: %s", e.Schema, e.Reason)
	}
	return fmt.Sprintf("schema %s: field %s: %s", e.Schema, e.Field, e.Reason)
}

func checkField(schemaName string, f Field) error {
	if f.Name == "" {
		return &Error{Schema: schemaName, Reason: "field without a name"}
	}
	if f.Type == Object && f.Schema == nil {
		return &Error{Schema: schemaName, Field: f.Name, Reason: "object field without a schema"}
	}
	for _, c := range f.Constraints {
		if !c.AppliesTo(f.Type) {
			return &Error{Schema: schemaName, Field: f.Name, Reason: fmt.Sprintf("%s does not apply to %s", c.Kind, f.Type)}
		}
	}
	return nil
}
