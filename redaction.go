package snapshot

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// skipPlaceholder marks list elements selected by a skip path. Elements are
// masked first and compacted in one final traversal, so several skip paths
// addressing the same list by index stay mutually consistent: an eager
// removal would shift the indices later paths refer to.
const skipPlaceholder = "$__to_be_skipped__$"

// removeSkipPaths resolves every skip path against the tree and removes the
// matched locations in place. Mapping keys are deleted outright; list
// elements are masked and compacted afterwards. Invalid or unresolvable
// paths are logged and skipped, they never fail the pass.
func removeSkipPaths(doc map[string]any, paths []string) {
	hasPlaceholder := false
	for _, path := range paths {
		x, err := jp.ParseString(path)
		if err != nil {
			logger.Warn("snapshot skip path was not applied as it is invalid", "path", path, "error", err)
			continue
		}
		locs := locate(x, doc)
		if len(locs) == 0 {
			logger.Debug("skip path matched nothing", "path", path)
			continue
		}
		for _, loc := range locs {
			if applySkip(doc, loc.segs, path) {
				hasPlaceholder = true
			}
		}
	}
	if hasPlaceholder {
		for _, k := range sortedKeys(doc) {
			doc[k] = removeSkipPlaceholders(doc[k])
		}
	}
}

// applySkip removes or masks the single location identified by segs. The
// return value reports whether a list placeholder was written.
func applySkip(doc map[string]any, segs []any, path string) bool {
	if len(segs) == 0 {
		return false
	}
	parent, ok := valueAt(doc, segs[:len(segs)-1])
	if !ok {
		// An earlier path may already have removed an intermediate segment.
		logger.Debug("skip path no longer resolvable", "path", path)
		return false
	}
	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case map[string]any:
		key, ok := last.(string)
		if !ok {
			logger.Warn("snapshot skip path was not applied as it was invalid for that snapshot", "path", path)
			return false
		}
		delete(p, key)
	case []any:
		idx, ok := listIndex(last)
		if !ok {
			logger.Warn("snapshot skip path was not applied as it was invalid for that snapshot", "path", path)
			return false
		}
		if idx < 0 || idx >= len(p) {
			logger.Debug("skip path index out of range", "path", path, "index", idx)
			return false
		}
		p[idx] = skipPlaceholder
		return true
	}
	return false
}

// listIndex coerces a final path segment addressing a list element into an
// index. Bracketed numeric segments ("[2]") are accepted alongside plain
// ints and digit strings.
func listIndex(seg any) (int, bool) {
	switch s := seg.(type) {
	case int:
		return s, true
	case string:
		trimmed := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		idx, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, false
		}
		return idx, true
	}
	return 0, false
}

// removeSkipPlaceholders compacts every list containing the placeholder,
// exactly once after all path resolutions are complete.
func removeSkipPlaceholders(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(val) {
			val[k] = removeSkipPlaceholders(val[k])
		}
		return val
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == any(skipPlaceholder) {
				continue
			}
			out = append(out, removeSkipPlaceholders(item))
		}
		return out
	}
	return v
}
