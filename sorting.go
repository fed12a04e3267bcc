package snapshot

import (
	"fmt"
	"sort"
)

// SortKeyFunc derives the sort key for one list element.
type SortKeyFunc func(item any) string

// SortingTransformer sorts the list at the configured key with an injected
// sort key function, recursing into all other branches. Applying it to a
// non-list value is a usage error.
type SortingTransformer struct {
	key   string
	keyFn SortKeyFunc
}

// NewSortingTransformer builds a sorting transformer. A nil keyFn sorts
// elements by their canonical JSON encoding.
func NewSortingTransformer(key string, keyFn SortKeyFunc) *SortingTransformer {
	return &SortingTransformer{key: key, keyFn: keyFn}
}

func (t *SortingTransformer) Transform(doc map[string]any, _ *TransformContext) (map[string]any, error) {
	return t.transformMap(doc)
}

func (t *SortingTransformer) transformValue(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		return t.transformMap(val)
	case []any:
		for i, item := range val {
			out, err := t.transformValue(item)
			if err != nil {
				return nil, err
			}
			val[i] = out
		}
		return val, nil
	}
	return v, nil
}

func (t *SortingTransformer) transformMap(m map[string]any) (map[string]any, error) {
	for _, k := range sortedKeys(m) {
		if k == t.key {
			list, ok := m[k].([]any)
			if !ok {
				return nil, fmt.Errorf("%w: key %q holds %T", ErrSortTargetNotList, k, m[k])
			}
			for i, item := range list {
				out, err := t.transformValue(item)
				if err != nil {
					return nil, err
				}
				list[i] = out
			}
			sort.SliceStable(list, func(i, j int) bool {
				return t.sortKey(list[i]) < t.sortKey(list[j])
			})
			m[k] = list
			continue
		}
		out, err := t.transformValue(m[k])
		if err != nil {
			return nil, err
		}
		m[k] = out
	}
	return m, nil
}

func (t *SortingTransformer) sortKey(item any) string {
	if t.keyFn != nil {
		return t.keyFn(item)
	}
	text, err := encodeState(item, "")
	if err != nil {
		return fmt.Sprint(item)
	}
	return text
}
