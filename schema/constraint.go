package schema

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind names a constraint. The names double as the `validate` tag keys.
type Kind string

const (
	KindNotBlank Kind = "notblank"
	KindNotNull  Kind = "notnull"
	KindPattern  Kind = "pattern"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	KindPositive Kind = "positive"
)

// Constraint is a declarative check on a single field value.
type Constraint struct {
	Kind Kind
	// Limit is the bound of Min and Max.
	Limit int64
	// Expr is the regular expression of Pattern as written.
	Expr string

	re *regexp.Regexp
}

func NotBlank() Constraint { return Constraint{Kind: KindNotBlank} }

func NotNull() Constraint { return Constraint{Kind: KindNotNull} }

func Positive() Constraint { return Constraint{Kind: KindPositive} }

func Min(n int64) Constraint { return Constraint{Kind: KindMin, Limit: n} }

func Max(n int64) Constraint { return Constraint{Kind: KindMax, Limit: n} }

// Pattern requires the whole string to match expr.
func Pattern(expr string) (Constraint, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return Constraint{}, fmt.Errorf("schema: pattern %q: %w", expr, err)
	}
	return Constraint{Kind: KindPattern, Expr: expr, re: re}, nil
}

// MustPattern is Pattern for expressions known to compile.
func MustPattern(expr string) Constraint {
	c, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// Regexp returns the anchored expression of a Pattern constraint.
func (c Constraint) Regexp() *regexp.Regexp {
	return c.re
}

// Message is the violation text reported when the constraint fails.
func (c Constraint) Message() string {
	switch c.Kind {
	case KindNotBlank:
		return "must not be blank"
	case KindNotNull:
		return "must not be null"
	case KindPattern:
		return `must match "` + c.Expr + `"`
	case KindMin:
		return "must be greater than or equal to " + strconv.FormatInt(c.Limit, 10)
	case KindMax:
		return "must be less than or equal to " + strconv.FormatInt(c.Limit, 10)
	case KindPositive:
		return "must be positive"
	}
	return "is invalid"
}

// AppliesTo reports whether the constraint can be attached to a field of type t.
func (c Constraint) AppliesTo(t Type) bool {
	switch c.Kind {
	case KindNotNull:
		return true
	case KindNotBlank:
		return t == String
	case KindPattern:
		return t == String && c.re != nil
	case KindMin, KindMax, KindPositive:
		return t == Int32 || t == Int64 || t == Double
	}
	return false
}

func (c Constraint) String() string {
	switch c.Kind {
	case KindMin, KindMax:
		return string(c.Kind) + "=" + strconv.FormatInt(c.Limit, 10)
	case KindPattern:
		return string(c.Kind) + "=" + c.Expr
	}
	return string(c.Kind)
}
