package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	timefmt "github.com/itchyny/timefmt-go"
	"gopkg.in/yaml.v3"
)

// strftime-style formats used in persisted snapshot files.
const (
	timestampMicrosFormat = "%Y-%m-%dT%H:%M:%S.%fZ"
	recordedDateFormat    = "%d-%m-%Y, %H:%M:%S"
)

// encodeState serializes a tree deterministically: mapping keys sorted with
// ResponseMetadata last, HTML escaping off so placeholder tokens like <name:1>
// survive verbatim, and non-JSON leaves degraded to strings. An empty indent
// yields compact output; otherwise the output is pretty-printed.
func encodeState(v any, indent string) (string, error) {
	var b strings.Builder
	if err := writeValue(&b, v, indent, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, v any, indent string, depth int) error {
	switch val := v.(type) {
	case map[string]any:
		keys := sortedKeys(val)
		if len(keys) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewline(b, indent, depth+1)
			b.WriteString(quoteString(k))
			if indent == "" {
				b.WriteByte(':')
			} else {
				b.WriteString(": ")
			}
			if err := writeValue(b, val[k], indent, depth+1); err != nil {
				return err
			}
		}
		writeNewline(b, indent, depth)
		b.WriteByte('}')
		return nil
	case []any:
		if len(val) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNewline(b, indent, depth+1)
			if err := writeValue(b, item, indent, depth+1); err != nil {
				return err
			}
		}
		writeNewline(b, indent, depth)
		b.WriteByte(']')
		return nil
	}
	leaf, err := encodeLeaf(v)
	if err != nil {
		return err
	}
	b.WriteString(leaf)
	return nil
}

func writeNewline(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

func encodeLeaf(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return quoteString(val), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case time.Time:
		return quoteString(timestampMillis(val)), nil
	case []byte:
		return quoteString(string(val)), nil
	case *yaml.Node:
		return encodeYAMLScalar(val), nil
	case yaml.Node:
		return encodeYAMLScalar(&val), nil
	}
	data, err := marshalNoEscape(v)
	if err != nil {
		// Unknown leaf shapes degrade to their string rendering.
		return quoteString(fmt.Sprint(v)), nil
	}
	return data, nil
}

// encodeYAMLScalar unfolds a YAML scalar node to its typed JSON value.
func encodeYAMLScalar(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		switch n.Tag {
		case "!!int", "!!float", "!!bool":
			return n.Value
		}
	}
	return quoteString(n.Value)
}

func quoteString(s string) string {
	out, err := marshalNoEscape(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return out
}

// marshalNoEscape is json.Marshal without HTML escaping, so '<' and '>' in
// placeholder tokens and raw values stay literal in the serialized text.
func marshalNoEscape(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// timestampMillis renders a time with millisecond precision and a trailing Z,
// the representation used for datetime leaves in raw snapshot files.
func timestampMillis(t time.Time) string {
	micros := timefmt.Format(t.UTC(), timestampMicrosFormat)
	return micros[:len(micros)-4] + micros[len(micros)-1:]
}

// parseEmbeddedJSON recursively resolves values to parseable form: io.Reader
// values are drained to strings, and string values beginning with "{" are
// parsed as JSON in place when valid. JSON arrays and nested JSON strings are
// deliberately not handled here; that is the JSONStringTransformer's job.
func parseEmbeddedJSON(m map[string]any) {
	for _, k := range sortedKeys(m) {
		v := m[k]
		if r, ok := v.(io.Reader); ok {
			data, err := io.ReadAll(r)
			if err != nil {
				logger.Warn("could not read stream value", "key", k, "error", err)
				continue
			}
			v = string(data)
			m[k] = v
		}
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				if nested, ok := item.(map[string]any); ok {
					parseEmbeddedJSON(nested)
				}
			}
		case map[string]any:
			parseEmbeddedJSON(val)
		case string:
			if !strings.HasPrefix(val, "{") {
				continue
			}
			var parsed any
			if err := json.Unmarshal([]byte(val), &parsed); err == nil {
				m[k] = parsed
			}
		}
	}
}

// canonicalizeState round-trips a tree through the deterministic encoder so
// both comparison sides share one scalar representation.
func canonicalizeState(state map[string]any) (map[string]any, error) {
	text, err := encodeState(state, "")
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransformedState, err)
	}
	return out, nil
}
