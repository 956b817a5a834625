package config

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/godamri/helix-config/schema"
)

// Validator checks bound records against their schema constraints. It keeps
// no state between calls and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator panics if the notblank check cannot be registered.
func NewValidator() *Validator {
	v := validator.New()
	if err := v.RegisterValidation(string(schema.KindNotBlank), validators.NotBlank); err != nil {
		panic(fmt.Sprintf("config: register %s validation: %v", schema.KindNotBlank, err))
	}
	return &Validator{validate: v}
}

// Validate returns a *ValidationError listing every violation of instance,
// nested records included, or nil.
func (v *Validator) Validate(s schema.Schema, instance any) error {
	violations, err := v.Violations(s, instance)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return newValidationError(s.Name(), violations)
	}
	return nil
}

// Violations evaluates every constraint of s and its nested schemas against
// instance. Paths use schema field names joined with dots (tls.certFile).
func (v *Validator) Violations(s schema.Schema, instance any) ([]Violation, error) {
	var out []Violation
	if err := v.walk(s, instance, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Validator) walk(s schema.Schema, instance any, prefix string, out *[]Violation) error {
	values, err := s.Values(instance)
	if err != nil {
		return err
	}
	for i, f := range s.Fields() {
		path := prefix + f.Name
		for _, c := range f.Constraints {
			if !v.check(c, values[i]) {
				*out = append(*out, Violation{Path: path, Message: c.Message()})
			}
		}
		if f.Type == schema.Object && f.Schema != nil && values[i] != nil {
			if err := v.walk(f.Schema, values[i], path+".", out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) check(c schema.Constraint, value any) bool {
	if value == nil {
		return c.Kind != schema.KindNotNull && c.Kind != schema.KindNotBlank
	}
	switch c.Kind {
	case schema.KindNotNull:
		return true
	case schema.KindNotBlank:
		return v.validate.Var(value, string(schema.KindNotBlank)) == nil
	case schema.KindPattern:
		s, ok := value.(string)
		return ok && c.Regexp() != nil && c.Regexp().MatchString(s)
	case schema.KindMin:
		return v.validate.Var(value, "gte="+strconv.FormatInt(c.Limit, 10)) == nil
	case schema.KindMax:
		return v.validate.Var(value, "lte="+strconv.FormatInt(c.Limit, 10)) == nil
	case schema.KindPositive:
		return v.validate.Var(value, "gt=0") == nil
	}
	return false
}
