package tree

import (
	"fmt"
	"time"
)

// MissingError reports a path with no value, or a null one.
type MissingError struct {
	Path   string
	Origin string
}

func (e *MissingError) Error() string {
	return withOrigin(e.Origin, fmt.Sprintf("no setting at path %q", e.Path))
}

// WrongTypeError reports a value that cannot be read as the requested type.
// Values are never included in the message; they may be secrets.
type WrongTypeError struct {
	Path     string
	Origin   string
	Expected string
	Actual   string
}

func (e *WrongTypeError) Error() string {
	return withOrigin(e.Origin, fmt.Sprintf("%s has type %s rather than %s", e.Path, e.Actual, e.Expected))
}

// ResolveError reports a substitution that could not be expanded.
type ResolveError struct {
	Path   string
	Ref    string
	Origin string
	Reason string
}

func (e *ResolveError) Error() string {
	if e.Ref == "" {
		return withOrigin(e.Origin, fmt.Sprintf("%s: %s", e.Path, e.Reason))
	}
	return withOrigin(e.Origin, fmt.Sprintf("%s: substitution ${%s} %s", e.Path, e.Ref, e.Reason))
}

func withOrigin(origin, msg string) string {
	if origin == "" {
		return msg
	}
	return origin + ": " + msg
}

func (t *Tree) wrongType(path, expected string, v any) error {
	return &WrongTypeError{
		Path:     t.abs(path),
		Origin:   t.origin,
		Expected: expected,
		Actual:   kindOf(v),
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case time.Duration:
		return "duration"
	}
	return fmt.Sprintf("%T", v)
}
