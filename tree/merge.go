package tree

// WithFallback overlays t onto lower: keys present in t win, and where both
// trees hold an object under the same key the two objects merge key-wise.
func (t *Tree) WithFallback(lower *Tree) *Tree {
	if lower == nil {
		return t
	}
	return &Tree{
		root:   mergeObjects(t.root, lower.root),
		origin: mergeOrigin(t.origin, lower.origin),
		prefix: t.prefix,
	}
}

// Layer merges trees in precedence order, highest first.
func Layer(trees ...*Tree) *Tree {
	out := Empty()
	for i := len(trees) - 1; i >= 0; i-- {
		if trees[i] == nil {
			continue
		}
		out = trees[i].WithFallback(out)
	}
	return out
}

func mergeObjects(upper, lower map[string]any) map[string]any {
	out := make(map[string]any, len(upper)+len(lower))
	for k, v := range lower {
		out[k] = v
	}
	for k, v := range upper {
		uo, upperIsObject := v.(map[string]any)
		lo, lowerIsObject := out[k].(map[string]any)
		if upperIsObject && lowerIsObject {
			out[k] = mergeObjects(uo, lo)
			continue
		}
		out[k] = v
	}
	return out
}

func mergeOrigin(upper, lower string) string {
	switch {
	case upper == "":
		return lower
	case lower == "", lower == upper:
		return upper
	default:
		return "merge of " + upper + "," + lower
	}
}
