package snapshot

import (
	"regexp"

	"github.com/localstack/localstack-snapshot/internal/normalize"
)

// TransformerOption configures the convenience constructors below.
type TransformerOption func(*transformerOptions)

type transformerOptions struct {
	replacement      string
	replacementFn    ReplacementFunc
	replaceReference bool
}

// WithReplacement overrides the default replacement name.
func WithReplacement(replacement string) TransformerOption {
	return func(o *transformerOptions) { o.replacement = replacement }
}

// WithReplacementFunc computes the replacement per matched key/value pair.
func WithReplacementFunc(fn ReplacementFunc) TransformerOption {
	return func(o *transformerOptions) { o.replacementFn = fn }
}

// WithoutReferenceReplacement switches to literal replacement: only the
// matched location is rewritten, no placeholder token is minted and other
// occurrences of the value stay untouched.
func WithoutReferenceReplacement() TransformerOption {
	return func(o *transformerOptions) { o.replaceReference = false }
}

// KeyValue returns a transformer replacing the non-empty value found at key,
// anywhere in the tree. By default the value is reference-replaced under the
// hyphenated key name, so every occurrence of it resolves to the same
// enumerated placeholder token.
func KeyValue(key string, opts ...TransformerOption) *KeyValueBasedTransformer {
	o := transformerOptions{replaceReference: true}
	for _, opt := range opts {
		opt(&o)
	}
	matchFn := func(k string, v any) (any, bool) {
		if k != key || v == nil || v == "" {
			return nil, false
		}
		return v, true
	}
	if o.replacementFn != nil {
		return NewKeyValueFuncTransformer(matchFn, o.replacementFn, o.replaceReference)
	}
	replacement := o.replacement
	if replacement == "" {
		replacement = normalize.CamelToHyphen(key)
	}
	return NewKeyValueTransformer(matchFn, replacement, o.replaceReference)
}

// JSONPath returns a transformer replacing every value the path expression
// matches. Reference replacement is on by default.
func JSONPath(path, replacement string, opts ...TransformerOption) *JSONPathTransformer {
	o := transformerOptions{replaceReference: true}
	for _, opt := range opts {
		opt(&o)
	}
	return NewJSONPathTransformer(path, replacement, o.replaceReference)
}

// Regex returns a transformer substituting every match of pattern in the
// serialized snapshot text. The pattern must be a valid regular expression.
func Regex(pattern, replacement string) *RegexTransformer {
	return NewRegexTransformer(regexp.MustCompile(pattern), replacement)
}

// Text returns a transformer substituting every occurrence of text in the
// serialized snapshot text.
func Text(text, replacement string) *TextTransformer {
	return NewTextTransformer(text, replacement)
}

// JSONString returns a transformer parsing the JSON string at key into a real
// object or array.
func JSONString(key string) *JSONStringTransformer {
	return NewJSONStringTransformer(key)
}

// Sorting returns a transformer sorting the list at key by the given sort key
// function.
func Sorting(key string, keyFn SortKeyFunc) *SortingTransformer {
	return NewSortingTransformer(key, keyFn)
}
