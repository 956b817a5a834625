package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/godamri/helix-config/schema"
)

// SourceLoadError reports configuration files or overrides that could not be
// read, parsed or resolved.
type SourceLoadError struct {
	Err error
}

func (e *SourceLoadError) Error() string {
	return "config: failed to load configuration sources: " + e.Err.Error()
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// PathMissingError reports a schema block with no matching object in the tree.
type PathMissingError struct {
	Path   string
	Origin string
}

func (e *PathMissingError) Error() string {
	return "Configuration path not found: " + e.Path
}

// KeyMissingError reports a field whose key is absent, or null, in its block.
type KeyMissingError struct {
	Path   string
	Key    string
	Origin string
}

func (e *KeyMissingError) Error() string {
	msg := fmt.Sprintf("Missing required config key: %s in path %s", e.Key, e.Path)
	if e.Origin != "" {
		msg += " (" + e.Origin + ")"
	}
	return msg
}

// WrongTypeError reports a value that cannot be read as the field's type.
type WrongTypeError struct {
	Path     string
	Key      string
	Expected schema.Type
	Err      error
}

// FullPath is the dotted path of the offending value.
func (e *WrongTypeError) FullPath() string {
	if e.Path == "" {
		return e.Key
	}
	return e.Path + "." + e.Key
}

func (e *WrongTypeError) Error() string {
	msg := fmt.Sprintf("Wrong type for config key %s: expected %s", e.FullPath(), e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WrongTypeError) Unwrap() error { return e.Err }

// UnsupportedTypeError reports a field declared with a type the binder
// cannot produce.
type UnsupportedTypeError struct {
	Path string
	Key  string
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "Unsupported config type: " + e.Type
}

// Violation is one failed constraint.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + " " + v.Message
}

// ValidationError lists every constraint a bound record failed, sorted.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func newValidationError(schemaName string, violations []Violation) *ValidationError {
	sorted := append([]Violation(nil), violations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	return &ValidationError{Schema: schemaName, Violations: sorted}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "Config validation failed: " + strings.Join(parts, "; ")
}

// BootError is the single error Boot returns. It names the aggregate schema
// and wraps the cause.
type BootError struct {
	Schema string
	Err    error
}

func (e *BootError) Error() string {
	return fmt.Sprintf("Could not initialize configuration for %s: %v", e.Schema, e.Err)
}

func (e *BootError) Unwrap() error { return e.Err }
