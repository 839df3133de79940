package reactive

import (
	"strconv"
	"strings"
	"unicode"
)

// ParsePath compiles a dotted path ("a.b.0.c") into a getter that walks a
// Scope. Each segment is resolved through Get(string) on scopes and
// Objects, by index on Arrays and by key on plain maps. A missing link
// yields nil. ok is false when the path contains characters other than
// letters, digits, '_', '$' and '.'.
func ParsePath(path string) (get func(root any) any, ok bool) {
	for _, r := range path {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '$' || r == '_') {
			return nil, false
		}
	}
	segments := strings.Split(path, ".")
	return func(root any) any {
		cur := root
		for _, seg := range segments {
			if cur == nil {
				return nil
			}
			cur = step(cur, seg)
		}
		return cur
	}, true
}

func step(cur any, seg string) any {
	switch c := cur.(type) {
	case *Array:
		i, err := strconv.Atoi(seg)
		if err != nil {
			if seg == "length" {
				return c.Len()
			}
			return nil
		}
		return c.At(i)
	case Scope:
		return c.Get(seg)
	case map[string]any:
		return c[seg]
	case []any:
		if seg == "length" {
			return len(c)
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil
		}
		return c[i]
	}
	return nil
}
