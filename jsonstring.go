package snapshot

import (
	"encoding/json"
	"strings"
)

// JSONStringTransformer parses the JSON string at the configured key into a
// real object or array, then attempts to parse any JSON strings nested inside
// the result. Malformed JSON is left as the original string, never an error.
//
// This complements the session's default pre-parsing, which only handles
// top-level object strings: the transformer also unfolds JSON arrays and
// nested JSON strings, so later transformers (timestamps, identifiers) can
// reach the embedded values. Parsing at an explicit key keeps the unfolding
// a per-case decision.
type JSONStringTransformer struct {
	key string
}

// NewJSONStringTransformer builds a JSON-string transformer for the given key.
func NewJSONStringTransformer(key string) *JSONStringTransformer {
	return &JSONStringTransformer{key: key}
}

func (t *JSONStringTransformer) Transform(doc map[string]any, _ *TransformContext) (map[string]any, error) {
	return t.transformMap(doc), nil
}

func (t *JSONStringTransformer) transformValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return t.transformMap(val)
	case []any:
		for i, item := range val {
			val[i] = t.transformValue(item)
		}
		return val
	}
	return v
}

func (t *JSONStringTransformer) transformMap(m map[string]any) map[string]any {
	for _, k := range sortedKeys(m) {
		if s, ok := m[k].(string); ok && k == t.key && looksLikeJSON(s) {
			var parsed any
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				logger.Debug("value is not a valid JSON string and won't be transformed", "key", k, "value", s)
				continue
			}
			logger.Debug("replacing string value with parsed JSON", "key", k)
			m[k] = t.transformNested(parsed)
			continue
		}
		m[k] = t.transformValue(m[k])
	}
	return m
}

// transformNested is the implicit, best-effort variant: it attempts to parse
// every nested string that looks like JSON, not just the configured key.
func (t *JSONStringTransformer) transformNested(v any) any {
	switch val := v.(type) {
	case []any:
		for i, item := range val {
			val[i] = t.transformNested(item)
		}
		return val
	case map[string]any:
		for _, k := range sortedKeys(val) {
			val[k] = t.transformNested(val[k])
		}
		return val
	case string:
		if !looksLikeJSON(val) {
			return val
		}
		var parsed any
		if err := json.Unmarshal([]byte(val), &parsed); err != nil {
			logger.Debug("nested value is not a valid JSON string and won't be transformed", "value", val)
			return val
		}
		return t.transformNested(parsed)
	}
	return v
}

func looksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
