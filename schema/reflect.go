package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	nameTag       = "config"
	constraintTag = "validate"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// Of reflects the struct type T.
func Of[T any]() (Schema, error) {
	return Reflect(reflect.TypeOf((*T)(nil)).Elem())
}

// MustOf is Of for types known to be valid schemas.
func MustOf[T any]() Schema {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// Reflect builds a schema from the exported fields of a struct type.
//
// A field is named by its `config` tag, or else by its Go name with the
// leading initialism lowercased (PoolSize is poolSize, URL is url). A tag
// of "-" skips the field. Constraints come from the `validate` tag, e.g.
// `validate:"min=1,max=65535"`; a pattern consumes the rest of the tag, so
// `validate:"notblank,pattern=^a,b$"` matches "a,b".
func Reflect(rt reflect.Type) (Schema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, &Error{Schema: rt.String(), Reason: "not a struct"}
	}

	s := &structSchema{typ: rt}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get(nameTag)
		if name == "-" {
			continue
		}
		if name == "" {
			name = lowerInitial(sf.Name)
		}

		f := Field{Name: name}
		f.Type, f.TypeName = typeOf(sf.Type)
		if f.Type == Object {
			sub, err := Reflect(sf.Type)
			if err != nil {
				return nil, err
			}
			f.Schema = sub
		}

		cs, err := parseConstraints(sf.Tag.Get(constraintTag))
		if err != nil {
			return nil, &Error{Schema: s.Name(), Field: name, Reason: err.Error()}
		}
		f.Constraints = cs

		if err := checkField(s.Name(), f); err != nil {
			return nil, err
		}
		s.fields = append(s.fields, f)
		s.index = append(s.index, i)
	}
	return s, nil
}

func typeOf(rt reflect.Type) (Type, string) {
	switch rt {
	case durationType:
		return Duration, "Duration"
	case timeType:
		return Unsupported, "Time"
	}
	switch rt.Kind() {
	case reflect.Int32:
		return Int32, rt.Name()
	case reflect.Int64, reflect.Int:
		return Int64, rt.Name()
	case reflect.Float64:
		return Double, rt.Name()
	case reflect.String:
		return String, rt.Name()
	case reflect.Bool:
		return Bool, rt.Name()
	case reflect.Struct:
		return Object, rt.Name()
	case reflect.Slice, reflect.Array:
		return Unsupported, "List"
	case reflect.Map:
		return Unsupported, "Map"
	}
	return Unsupported, rt.String()
}

// lowerInitial lowercases the leading run of upper-case letters, keeping the
// last one when it starts the next word: XMLHttpPort is xmlHttpPort.
func lowerInitial(name string) string {
	r := []rune(name)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	switch {
	case n == 0:
		return name
	case n > 1 && n < len(r) && unicode.IsLower(r[n]):
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

func parseConstraints(tag string) ([]Constraint, error) {
	var out []Constraint
	for {
		tag = strings.TrimLeft(tag, " ")
		if tag == "" {
			return out, nil
		}

		var item string
		if strings.HasPrefix(tag, string(KindPattern)+"=") {
			item, tag = tag, ""
		} else {
			item, tag, _ = strings.Cut(tag, ",")
		}

		key, arg, _ := strings.Cut(item, "=")
		switch Kind(strings.TrimSpace(key)) {
		case KindNotBlank:
			out = append(out, NotBlank())
		case KindNotNull:
			out = append(out, NotNull())
		case KindPositive:
			out = append(out, Positive())
		case KindMin, KindMax:
			n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s needs an integer bound, got %q", key, arg)
			}
			if Kind(strings.TrimSpace(key)) == KindMin {
				out = append(out, Min(n))
			} else {
				out = append(out, Max(n))
			}
		case KindPattern:
			c, err := Pattern(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		default:
			return nil, fmt.Errorf("unknown constraint %q", key)
		}
	}
}

type structSchema struct {
	typ    reflect.Type
	fields []Field
	index  []int
}

func (s *structSchema) Name() string {
	if n := s.typ.Name(); n != "" {
		return n
	}
	return s.typ.String()
}

func (s *structSchema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

func (s *structSchema) Construct(values []any) (any, error) {
	if len(values) != len(s.fields) {
		return nil, &Error{Schema: s.Name(), Reason: fmt.Sprintf("%d values for %d fields", len(values), len(s.fields))}
	}
	out := reflect.New(s.typ).Elem()
	for i, v := range values {
		f := s.fields[i]
		if err := assign(out.Field(s.index[i]), f, v); err != nil {
			return nil, &Error{Schema: s.Name(), Field: f.Name, Reason: err.Error()}
		}
	}
	return out.Interface(), nil
}

func (s *structSchema) Values(instance any) ([]any, error) {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() || rv.Type() != s.typ {
		return nil, &Error{Schema: s.Name(), Reason: fmt.Sprintf("instance of type %T", instance)}
	}
	out := make([]any, len(s.fields))
	for i, f := range s.fields {
		fv := rv.Field(s.index[i])
		switch f.Type {
		case Int32:
			out[i] = int32(fv.Int())
		case Int64:
			out[i] = fv.Int()
		case Double:
			out[i] = fv.Float()
		case String:
			out[i] = fv.String()
		case Bool:
			out[i] = fv.Bool()
		case Duration:
			out[i] = time.Duration(fv.Int())
		default:
			out[i] = fv.Interface()
		}
	}
	return out, nil
}

func assign(dst reflect.Value, f Field, v any) error {
	if v == nil {
		return nil
	}
	ok := true
	switch f.Type {
	case Int32:
		var n int32
		if n, ok = v.(int32); ok {
			dst.SetInt(int64(n))
		}
	case Int64:
		var n int64
		if n, ok = v.(int64); ok {
			if dst.OverflowInt(n) {
				return fmt.Errorf("value out of range for %s", dst.Type())
			}
			dst.SetInt(n)
		}
	case Double:
		var x float64
		if x, ok = v.(float64); ok {
			dst.SetFloat(x)
		}
	case String:
		var s string
		if s, ok = v.(string); ok {
			dst.SetString(s)
		}
	case Bool:
		var b bool
		if b, ok = v.(bool); ok {
			dst.SetBool(b)
		}
	case Duration:
		var d time.Duration
		if d, ok = v.(time.Duration); ok {
			dst.SetInt(int64(d))
		}
	case Object:
		rv := reflect.ValueOf(v)
		if ok = rv.Type() == dst.Type(); ok {
			dst.Set(rv)
		}
	default:
		return fmt.Errorf("unsupported type %s", f.TypeName)
	}
	if !ok {
		return fmt.Errorf("got %T for a %s field", v, f.Type)
	}
	return nil
}
