package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/godamri/helix-config/schema"
	"github.com/godamri/helix-config/tree"
)

// Binder populates schema records from a configuration tree.
type Binder struct {
	validator *Validator
}

// NewBinder returns a binder that validates with v, or with a fresh
// Validator when v is nil.
func NewBinder(v *Validator) *Binder {
	if v == nil {
		v = NewValidator()
	}
	return &Binder{validator: v}
}

// Bind reads the object at path into a record of s and validates it.
// Nothing is returned unless every field was read and every constraint holds.
func (b *Binder) Bind(r tree.Reader, path string, s schema.Schema) (any, error) {
	instance, err := b.assemble(r, path, s)
	if err != nil {
		return nil, err
	}
	if err := b.validator.Validate(s, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Bind reads the object at path into a T, using T's reflected schema.
func Bind[T any](b *Binder, r tree.Reader, path string) (T, error) {
	var zero T
	s, err := schema.Of[T]()
	if err != nil {
		return zero, err
	}
	v, err := b.Bind(r, path, s)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// assemble builds the record without validating it, so constraints run once
// over the finished value.
func (b *Binder) assemble(r tree.Reader, path string, s schema.Schema) (any, error) {
	if !r.HasPath(path) {
		return nil, &PathMissingError{Path: joinPath(r.Path(), path), Origin: r.Origin()}
	}
	sub, err := r.Sub(path)
	if err != nil {
		return nil, &WrongTypeError{Path: r.Path(), Key: path, Expected: schema.Object, Err: err}
	}

	fields := s.Fields()
	values := make([]any, len(fields))
	for i, f := range fields {
		key := KeyFor(f.Name)
		if !sub.HasPath(key) {
			return nil, &KeyMissingError{Path: sub.Path(), Key: key, Origin: sub.Origin()}
		}
		v, err := b.value(sub, key, f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	instance, err := s.Construct(values)
	if err != nil {
		return nil, fmt.Errorf("config: construct %s at %s: %w", s.Name(), sub.Path(), err)
	}
	return instance, nil
}

func (b *Binder) value(r tree.Reader, key string, f schema.Field) (any, error) {
	wrong := func(err error) error {
		return &WrongTypeError{Path: r.Path(), Key: key, Expected: f.Type, Err: err}
	}

	switch f.Type {
	case schema.Int32:
		n, err := r.Int(key)
		if err != nil {
			return nil, wrong(err)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, wrong(errors.New("value out of range for int32"))
		}
		return int32(n), nil
	case schema.Int64:
		n, err := r.Int(key)
		if err != nil {
			return nil, wrong(err)
		}
		return n, nil
	case schema.Double:
		x, err := r.Float(key)
		if err != nil {
			return nil, wrong(err)
		}
		return x, nil
	case schema.String:
		s, err := r.String(key)
		if err != nil {
			return nil, wrong(err)
		}
		return s, nil
	case schema.Bool:
		v, err := r.Bool(key)
		if err != nil {
			return nil, wrong(err)
		}
		return v, nil
	case schema.Duration:
		d, err := r.Duration(key)
		if err != nil {
			return nil, wrong(err)
		}
		return d, nil
	case schema.Object:
		return b.assemble(r, key, f.Schema)
	}
	return nil, &UnsupportedTypeError{Path: r.Path(), Key: key, Type: f.TypeName}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
