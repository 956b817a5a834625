package tree

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const indentUnit = "    "

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Render formats the tree as HOCON text without origin comments: keys are
// sorted, nested objects are indented by four spaces and every line ends in a
// newline. Identical trees always render identically.
func (t *Tree) Render() string {
	var b strings.Builder
	renderObject(&b, t.root, 0)
	return b.String()
}

func renderObject(b *strings.Builder, obj map[string]any, depth int) {
	for _, k := range sortedKeys(obj) {
		b.WriteString(strings.Repeat(indentUnit, depth))
		b.WriteString(renderKey(k))

		child, isObject := obj[k].(map[string]any)
		switch {
		case isObject && len(child) == 0:
			b.WriteString(" {}\n")
		case isObject:
			b.WriteString(" {\n")
			renderObject(b, child, depth+1)
			b.WriteString(strings.Repeat(indentUnit, depth))
			b.WriteString("}\n")
		default:
			b.WriteString(" = ")
			b.WriteString(renderValue(obj[k]))
			b.WriteString("\n")
		}
	}
}

func renderKey(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case time.Duration:
		return FormatDuration(val)
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = renderValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		if len(val) == 0 {
			return "{}"
		}
		keys := sortedKeys(val)
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = renderKey(k) + " = " + renderValue(val[k])
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	}
	if s, ok := scalarText(v); ok {
		return s
	}
	return strconv.Quote(kindOf(v))
}
