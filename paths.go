package snapshot

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ohler55/ojg/jp"
)

// location is one concrete match of a path expression: the full segment chain
// from the root to the matched value, with string segments addressing mapping
// keys and int segments addressing list indices.
type location struct {
	segs []any
}

// locate resolves a path expression against the tree and returns every
// concrete match location in deterministic order. Ordering matters: reference
// replacements are registered per match, so the match order decides token
// numbering.
func locate(x jp.Expr, doc any) []location {
	matches := x.Locate(doc, 0)
	// Dot-index segments like "aaa.1" parse as child fragments, which never
	// match list elements; retry with digit children rewritten to indices so
	// both addressing forms resolve.
	if alt, ok := digitChildrenToNth(x); ok {
		matches = append(matches, alt.Locate(doc, 0)...)
	}
	locs := make([]location, 0, len(matches))
	seen := map[string]struct{}{}
	for _, m := range matches {
		segs, err := pathFragments(m)
		if err != nil {
			logger.Warn("ignoring non-concrete path match", "path", m.String(), "error", err)
			continue
		}
		key := fmt.Sprint(segs)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		locs = append(locs, location{segs: segs})
	}
	sort.SliceStable(locs, func(i, j int) bool {
		return lessSegments(locs[i].segs, locs[j].segs)
	})
	return locs
}

// digitChildrenToNth returns a copy of the expression with every all-digit
// child fragment rewritten to an array index, and whether any rewrite took
// place. The original expression stays valid for mappings with numeric string
// keys; both variants are resolved and merged.
func digitChildrenToNth(x jp.Expr) (jp.Expr, bool) {
	rewritten := false
	out := make(jp.Expr, len(x))
	for i, frag := range x {
		out[i] = frag
		c, ok := frag.(jp.Child)
		if !ok || len(c) == 0 {
			continue
		}
		if n, err := strconv.Atoi(string(c)); err == nil && n >= 0 {
			out[i] = jp.Nth(n)
			rewritten = true
		}
	}
	return out, rewritten
}

// pathFragments converts a located expression into plain segments.
func pathFragments(loc jp.Expr) ([]any, error) {
	segs := make([]any, 0, len(loc))
	for _, frag := range loc {
		switch f := frag.(type) {
		case jp.Root:
			// implicit
		case jp.Child:
			segs = append(segs, string(f))
		case jp.Nth:
			segs = append(segs, int(f))
		default:
			return nil, fmt.Errorf("unexpected path fragment of type %T", frag)
		}
	}
	return segs, nil
}

// lessSegments orders segment chains element-wise: keys lexicographically,
// indices numerically, keys before indices, shorter chains first.
func lessSegments(a, b []any) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch av := a[i].(type) {
		case string:
			switch bv := b[i].(type) {
			case string:
				if av != bv {
					return av < bv
				}
			case int:
				return true
			}
		case int:
			switch bv := b[i].(type) {
			case string:
				return false
			case int:
				if av != bv {
					return av < bv
				}
			}
		}
	}
	return len(a) < len(b)
}

// valueAt resolves a segment chain from the root. The second return value
// reports whether every segment resolved.
func valueAt(doc any, segs []any) (any, bool) {
	node := doc
	for _, seg := range segs {
		switch s := seg.(type) {
		case string:
			m, ok := node.(map[string]any)
			if !ok {
				return nil, false
			}
			if node, ok = m[s]; !ok {
				return nil, false
			}
		case int:
			l, ok := node.([]any)
			if !ok || s < 0 || s >= len(l) {
				return nil, false
			}
			node = l[s]
		default:
			return nil, false
		}
	}
	return node, true
}

// setAt overwrites the value at a segment chain in place. Locations that no
// longer resolve are left untouched; setAt never creates missing paths.
func setAt(doc any, segs []any, value any) bool {
	if len(segs) == 0 {
		return false
	}
	parent, ok := valueAt(doc, segs[:len(segs)-1])
	if !ok {
		return false
	}
	switch s := segs[len(segs)-1].(type) {
	case string:
		m, ok := parent.(map[string]any)
		if !ok {
			return false
		}
		if _, exists := m[s]; !exists {
			return false
		}
		m[s] = value
		return true
	case int:
		l, ok := parent.([]any)
		if !ok || s < 0 || s >= len(l) {
			return false
		}
		l[s] = value
		return true
	}
	return false
}
