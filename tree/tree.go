// Package tree holds the resolved configuration tree: an immutable,
// hierarchical mapping from dotted paths to typed leaves.
//
// Leaves are stored as string, int64, float64, bool, time.Duration, []any or
// nil. Objects are map[string]any. A Tree never mutates after construction,
// so subtrees share storage with their parent and every method is safe for
// concurrent use.
//
// Paths are dot separated ("db.pool-size"). Keys that themselves contain a
// dot cannot be addressed.
package tree

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Reader is the read-only view of a configuration tree that binders consume.
type Reader interface {
	HasPath(path string) bool
	Sub(path string) (Reader, error)
	String(path string) (string, error)
	Int(path string) (int64, error)
	Float(path string) (float64, error)
	Bool(path string) (bool, error)
	Duration(path string) (time.Duration, error)
	Origin() string
	Path() string
}

// Tree is an immutable configuration tree.
type Tree struct {
	root   map[string]any
	origin string
	prefix string
}

var _ Reader = (*Tree)(nil)

// Empty returns a tree without any keys.
func Empty() *Tree {
	return &Tree{root: map[string]any{}}
}

// FromMap builds a tree from nested Go values. Numeric kinds are widened to
// int64 or float64, maps become objects and slices become lists. The input
// map is copied.
func FromMap(m map[string]any, origin string) *Tree {
	return &Tree{root: normalizeObject(m), origin: origin}
}

// FromFlatMap builds a tree from dotted keys, so {"db.user": "x"} becomes
// db { user = "x" }. When a key is both a leaf and the parent of other keys
// the object wins.
func FromFlatMap(m map[string]string, origin string) *Tree {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, k := range keys {
		segs := splitPath(k)
		if segs == nil {
			continue
		}
		insert(root, segs, m[k])
	}
	return &Tree{root: root, origin: origin}
}

func insert(obj map[string]any, segs []string, v string) {
	for _, s := range segs[:len(segs)-1] {
		child, ok := obj[s].(map[string]any)
		if !ok {
			child = map[string]any{}
			obj[s] = child
		}
		obj = child
	}
	last := segs[len(segs)-1]
	if _, isObject := obj[last].(map[string]any); isObject {
		return
	}
	obj[last] = v
}

// HasPath reports whether path holds a non-null value.
func (t *Tree) HasPath(path string) bool {
	v, ok := t.lookup(path)
	return ok && v != nil
}

// Get returns a copy of the raw value at path.
func (t *Tree) Get(path string) (any, bool) {
	v, ok := t.lookup(path)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Subtree returns the object at path as a tree. Errors name the absolute path.
func (t *Tree) Subtree(path string) (*Tree, error) {
	v, ok := t.lookup(path)
	if !ok || v == nil {
		return nil, &MissingError{Path: t.abs(path), Origin: t.origin}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, t.wrongType(path, "object", v)
	}
	return &Tree{root: obj, origin: t.origin, prefix: t.abs(path)}, nil
}

// Sub is Subtree behind the Reader interface.
func (t *Tree) Sub(path string) (Reader, error) {
	sub, err := t.Subtree(path)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Keys returns the top-level keys in sorted order.
func (t *Tree) Keys() []string {
	return sortedKeys(t.root)
}

// Unwrapped returns a deep copy of the tree as plain Go values.
func (t *Tree) Unwrapped() map[string]any {
	return clone(t.root).(map[string]any)
}

// Origin describes where the tree came from, e.g. "application.conf".
func (t *Tree) Origin() string {
	return t.origin
}

// Path is the absolute path of this tree inside the tree it was cut from.
func (t *Tree) Path() string {
	return t.prefix
}

func (t *Tree) lookup(path string) (any, bool) {
	return lookupIn(t.root, path)
}

func (t *Tree) abs(path string) string {
	if t.prefix == "" {
		return path
	}
	return t.prefix + "." + path
}

func lookupIn(root map[string]any, path string) (any, bool) {
	segs := splitPath(path)
	if segs == nil {
		return nil, false
	}
	var cur any = root
	for _, s := range segs {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[s]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil
		}
	}
	return segs
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64, time.Duration:
		return val
	case map[string]any:
		return normalizeObject(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[fmt.Sprint(k)] = normalize(x)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = normalize(x)
		}
		return out
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint:
		return normalizeUnsigned(uint64(val))
	case uint64:
		return normalizeUnsigned(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case *Tree:
		return val.Unwrapped()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalize(iter.Value().Interface())
		}
		return out
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func normalizeUnsigned(u uint64) any {
	if u > 1<<63-1 {
		return float64(u)
	}
	return int64(u)
}

func clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, x := range val {
			out[k] = clone(x)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = clone(x)
		}
		return out
	default:
		return v
	}
}
