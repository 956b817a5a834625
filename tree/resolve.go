package tree

import (
	"errors"
	"fmt"
	"strings"
)

// Resolve expands ${path} and ${?path} references in string values.
//
// A reference is looked up in the tree first and then through lookupEnv,
// which may be nil. A string consisting of exactly one reference takes the
// referenced value with its type; otherwise the pieces are concatenated as
// text. A missing ${path} is an error, a missing ${?path} drops the key when
// it stands alone and expands to nothing inside text. "$${" is a literal "${".
func (t *Tree) Resolve(lookupEnv func(string) (string, bool)) (*Tree, error) {
	r := &resolver{
		root:   t.root,
		origin: t.origin,
		env:    lookupEnv,
		done:   map[string]resolved{},
		active: map[string]bool{},
	}
	out, err := r.object("", t.root)
	if err != nil {
		return nil, err
	}
	return &Tree{root: out, origin: t.origin, prefix: t.prefix}, nil
}

type resolved struct {
	value   any
	defined bool
}

type resolver struct {
	root   map[string]any
	origin string
	env    func(string) (string, bool)
	done   map[string]resolved
	active map[string]bool
}

func (r *resolver) object(path string, obj map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for _, k := range sortedKeys(obj) {
		v, ok, err := r.at(joinPath(path, k), obj[k])
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// at resolves the value stored at an addressable path exactly once.
func (r *resolver) at(path string, raw any) (any, bool, error) {
	if res, ok := r.done[path]; ok {
		return res.value, res.defined, nil
	}
	if r.active[path] {
		return nil, false, &ResolveError{Path: path, Origin: r.origin, Reason: "substitution cycle"}
	}
	r.active[path] = true
	v, ok, err := r.value(path, raw)
	delete(r.active, path)
	if err != nil {
		return nil, false, err
	}
	r.done[path] = resolved{value: v, defined: ok}
	return v, ok, nil
}

func (r *resolver) value(path string, raw any) (any, bool, error) {
	switch val := raw.(type) {
	case map[string]any:
		out, err := r.object(path, val)
		return out, err == nil, err
	case []any:
		out := make([]any, 0, len(val))
		for i, item := range val {
			v, ok, err := r.value(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				return nil, false, err
			}
			if ok {
				out = append(out, v)
			}
		}
		return out, true, nil
	case string:
		if !strings.Contains(val, "$") {
			return val, true, nil
		}
		return r.expand(path, val)
	default:
		return raw, true, nil
	}
}

func (r *resolver) expand(path, s string) (any, bool, error) {
	parts, err := parseTemplate(s)
	if err != nil {
		return nil, false, &ResolveError{Path: path, Origin: r.origin, Reason: err.Error()}
	}

	if len(parts) == 1 && parts[0].ref != "" {
		p := parts[0]
		v, ok, err := r.lookup(p.ref)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			if p.optional {
				return nil, false, nil
			}
			return nil, false, &ResolveError{Path: path, Ref: p.ref, Origin: r.origin, Reason: "could not be resolved"}
		}
		return v, true, nil
	}

	var b strings.Builder
	for _, p := range parts {
		if p.ref == "" {
			b.WriteString(p.text)
			continue
		}
		v, ok, err := r.lookup(p.ref)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			if p.optional {
				continue
			}
			return nil, false, &ResolveError{Path: path, Ref: p.ref, Origin: r.origin, Reason: "could not be resolved"}
		}
		text, ok := scalarText(v)
		if !ok {
			return nil, false, &ResolveError{Path: path, Ref: p.ref, Origin: r.origin, Reason: "refers to " + kindOf(v) + " and cannot be concatenated"}
		}
		b.WriteString(text)
	}
	return b.String(), true, nil
}

func (r *resolver) lookup(ref string) (any, bool, error) {
	if raw, ok := lookupIn(r.root, ref); ok && raw != nil {
		return r.at(ref, raw)
	}
	if r.env != nil {
		if v, ok := r.env(ref); ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

type templatePart struct {
	text     string
	ref      string
	optional bool
}

func parseTemplate(s string) ([]templatePart, error) {
	var (
		parts []templatePart
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, templatePart{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "$${"):
			lit.WriteString("${")
			i += 3
		case strings.HasPrefix(s[i:], "${"):
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				return nil, errors.New("unterminated substitution")
			}
			inner := strings.TrimSpace(s[i+2 : i+2+end])
			optional := strings.HasPrefix(inner, "?")
			if optional {
				inner = strings.TrimSpace(inner[1:])
			}
			if splitPath(inner) == nil {
				return nil, fmt.Errorf("invalid substitution path %q", inner)
			}
			flush()
			parts = append(parts, templatePart{ref: inner, optional: optional})
			i += 2 + end + 1
		default:
			lit.WriteByte(s[i])
			i++
		}
	}
	flush()
	return parts, nil
}

// Escape returns s with every "${" written as "$${", so that Resolve yields
// s unchanged. Text that must never be treated as a reference (secret file
// contents, quoted HOCON strings) is escaped before it enters a tree.
func Escape(s string) string {
	return strings.ReplaceAll(s, "${", "$${")
}
