package snapshot

import (
	"fmt"
	"regexp"
	"time"
)

// timestampMatcher pairs a timestamp shape with its fixed display
// representation. Matchers are tried in order; the first prefix match wins.
type timestampMatcher struct {
	regex          *regexp.Regexp
	representation string
}

// The reference date used for all representations is 2022-07-13T13:48:01Z.
var defaultTimestampMatchers = []timestampMatcher{
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}.\d{3}Z`), "2022-07-13T13:48:01.000Z"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}.\d{3}\+\d{4}`), "2022-07-13T13:48:01.000+0000"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}.\d{6}\+\d{2}:\d{2}`), "2022-07-13T13:48:01.000000+00:00"},
	{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`), "2022-07-13T13:48:01Z"},
}

// TimestampTransformer canonicalizes timestamps: time.Time values become
// "<datetime>" and string timestamps of a recognized shape become a
// representation-tagged placeholder. Timestamps collapse to one of finitely
// many canonical strings, so no reference counting is involved.
type TimestampTransformer struct {
	matchers []timestampMatcher
}

// NewTimestampTransformer builds a timestamp transformer with the default
// matcher table.
func NewTimestampTransformer() *TimestampTransformer {
	return &TimestampTransformer{matchers: defaultTimestampMatchers}
}

func (t *TimestampTransformer) Transform(doc map[string]any, _ *TransformContext) (map[string]any, error) {
	return t.transformMap(doc), nil
}

func (t *TimestampTransformer) transformValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return t.transformMap(val)
	case []any:
		for i, item := range val {
			val[i] = t.transformValue(item)
		}
		return val
	case time.Time:
		return "<datetime>"
	case string:
		return t.transformTimestamp(val)
	}
	return v
}

func (t *TimestampTransformer) transformMap(m map[string]any) map[string]any {
	for _, k := range sortedKeys(m) {
		m[k] = t.transformValue(m[k])
	}
	return m
}

func (t *TimestampTransformer) transformTimestamp(s string) string {
	for _, m := range t.matchers {
		if m.regex.MatchString(s) {
			return fmt.Sprintf("<timestamp:%s>", m.representation)
		}
	}
	return s
}
