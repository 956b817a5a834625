package source

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gurkankaymak/hocon"

	"github.com/godamri/helix-config/tree"
)

type hoconParser struct{}

func (p hoconParser) ParseFile(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseString(string(data), filepath.Base(path))
}

// ParseString parses HOCON without resolving substitutions. The hocon
// package resolves ${...} against the single document and the process
// environment, so references are swapped for quoted placeholders before
// parsing and written back afterwards.
func (hoconParser) ParseString(text, origin string) (*tree.Tree, error) {
	masked, subs := maskSubstitutions(text)
	conf, err := hocon.ParseString(masked)
	if err != nil {
		return nil, err
	}
	root, _ := subs.value(conf.GetRoot()).(map[string]any)
	return tree.FromMap(root, origin), nil
}

// substitutions remembers the ${...} tokens taken out of a document.
type substitutions struct {
	marker string
	refs   []string
}

func (s *substitutions) placeholder(n int) string {
	return s.marker + strconv.Itoa(n) + s.marker
}

// maskSubstitutions replaces every ${...} outside quoted strings and
// comments with a quoted placeholder. The marker never occurs in text.
func maskSubstitutions(text string) (string, *substitutions) {
	s := &substitutions{marker: "__helix_subst_"}
	for strings.Contains(text, s.marker) {
		s.marker += "_"
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		j := i + 1
		switch {
		case strings.HasPrefix(text[i:], `"""`):
			j = len(text)
			if end := strings.Index(text[i+3:], `"""`); end >= 0 {
				j = i + 3 + end + 3
			}
		case text[i] == '"':
			for j < len(text) && text[j] != '"' && text[j] != '\n' {
				if text[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(text) && text[j] == '"' {
				j++
			}
			j = min(j, len(text))
		case text[i] == '#' || strings.HasPrefix(text[i:], "//"):
			j = len(text)
			if end := strings.IndexByte(text[i:], '\n'); end >= 0 {
				j = i + end
			}
		case strings.HasPrefix(text[i:], "${"):
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				// Unterminated; the parser reports it.
				j = len(text)
				break
			}
			j = i + end + 1
			b.WriteString(strconv.Quote(s.placeholder(len(s.refs))))
			s.refs = append(s.refs, text[i:j])
			i = j
			continue
		}
		b.WriteString(text[i:j])
		i = j
	}
	return b.String(), s
}

// restore escapes literal text and puts the masked references back.
func (s *substitutions) restore(text string) string {
	if len(s.refs) == 0 {
		return tree.Escape(text)
	}
	var b strings.Builder
	for {
		i := strings.Index(text, s.marker)
		if i < 0 {
			break
		}
		rest := text[i+len(s.marker):]
		j := strings.Index(rest, s.marker)
		if j < 0 {
			break
		}
		n, err := strconv.Atoi(rest[:j])
		if err != nil || n < 0 || n >= len(s.refs) {
			b.WriteString(tree.Escape(text[:i+len(s.marker)]))
			text = rest
			continue
		}
		b.WriteString(tree.Escape(text[:i]))
		b.WriteString(s.refs[n])
		text = rest[j+len(s.marker):]
	}
	b.WriteString(tree.Escape(text))
	return b.String()
}

// value unwraps parsed HOCON values into plain Go values. Scalars the
// switch does not know are kept as their text, which the tree's accessors
// convert on demand (durations such as 60s included).
func (s *substitutions) value(v hocon.Value) any {
	switch val := v.(type) {
	case nil:
		return nil
	case hocon.Object:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = s.value(child)
		}
		return out
	case hocon.Array:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = s.value(child)
		}
		return out
	case hocon.String:
		return s.restore(string(val))
	}

	text := v.String()
	switch v.Type() {
	case hocon.NumberType:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case hocon.BooleanType:
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	case hocon.NullType:
		return nil
	}
	return s.restore(text)
}
