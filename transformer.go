package snapshot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Transformer is one unit of normalization. Transform receives the observed
// state and the pass-scoped context; it may mutate the tree in place, register
// deferred replacements on the context, or both, and returns the (possibly
// mutated) tree. Transformers must not retain the tree across calls.
type Transformer interface {
	Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(doc map[string]any, ctx *TransformContext) (map[string]any, error)

func (f TransformerFunc) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	return f(doc, ctx)
}

// MatchFunc decides whether a key/value pair is subject to replacement. On a
// match it returns the raw value to replace; in reference mode that value must
// be a string.
type MatchFunc func(key string, value any) (match any, ok bool)

// ReplacementFunc computes the replacement for a matched key/value pair.
type ReplacementFunc func(key string, value any) string

// KeyValueBasedTransformer replaces values matched by a key/value predicate,
// visiting mappings and lists of mappings recursively. In reference mode each
// distinct matched value is registered on the context instead of being
// rewritten in the tree.
type KeyValueBasedTransformer struct {
	matchFn          MatchFunc
	replacementFn    ReplacementFunc
	replaceReference bool
}

// NewKeyValueTransformer builds a key/value transformer with a fixed
// replacement string.
func NewKeyValueTransformer(matchFn MatchFunc, replacement string, replaceReference bool) *KeyValueBasedTransformer {
	return NewKeyValueFuncTransformer(matchFn, func(string, any) string { return replacement }, replaceReference)
}

// NewKeyValueFuncTransformer builds a key/value transformer whose replacement
// is computed per match.
func NewKeyValueFuncTransformer(matchFn MatchFunc, replacementFn ReplacementFunc, replaceReference bool) *KeyValueBasedTransformer {
	return &KeyValueBasedTransformer{
		matchFn:          matchFn,
		replacementFn:    replacementFn,
		replaceReference: replaceReference,
	}
}

func (t *KeyValueBasedTransformer) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		if match, ok := t.matchFn(k, v); ok {
			replacement := t.replacementFn(k, v)
			if t.replaceReference {
				if err := ctx.RegisterReference(match, replacement); err != nil {
					return nil, err
				}
			} else if s, isString := v.(string); isString {
				if ms, matchIsString := match.(string); matchIsString {
					doc[k] = strings.ReplaceAll(s, ms, replacement)
				} else {
					doc[k] = replacement
				}
				logger.Debug("replacing value for key", "key", k, "replacement", replacement, "original", s)
			} else {
				doc[k] = replacement
				logger.Debug("replacing value for key", "key", k, "replacement", replacement)
			}
			continue
		}
		switch val := v.(type) {
		case []any:
			for i, item := range val {
				if m, ok := item.(map[string]any); ok {
					out, err := t.Transform(m, ctx)
					if err != nil {
						return nil, err
					}
					val[i] = out
				}
			}
		case map[string]any:
			out, err := t.Transform(val, ctx)
			if err != nil {
				return nil, err
			}
			doc[k] = out
		}
	}
	return doc, nil
}

// JSONPathTransformer replaces values addressed by a path expression. In
// reference mode each distinct matched value is registered on the context; in
// literal mode matched locations are overwritten in place (matches that no
// longer resolve are skipped, missing paths are never created).
type JSONPathTransformer struct {
	path             string
	replacement      string
	replaceReference bool
}

// NewJSONPathTransformer builds a path-predicate transformer.
func NewJSONPathTransformer(path, replacement string, replaceReference bool) *JSONPathTransformer {
	return &JSONPathTransformer{path: path, replacement: replacement, replaceReference: replaceReference}
}

func (t *JSONPathTransformer) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	x, err := jp.ParseString(t.path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: invalid jsonpath %q: %w", t.path, err)
	}
	locs := locate(x, doc)
	if len(locs) == 0 {
		logger.Debug("no match found for jsonpath", "path", t.path)
		return doc, nil
	}
	if t.replaceReference {
		for _, loc := range locs {
			v, ok := valueAt(doc, loc.segs)
			if !ok {
				continue
			}
			if err := ctx.RegisterReference(v, t.replacement); err != nil {
				return nil, err
			}
		}
		return doc, nil
	}
	for _, loc := range locs {
		if setAt(doc, loc.segs, t.replacement) {
			logger.Debug("replacing jsonpath value", "path", t.path, "replacement", t.replacement)
		}
	}
	return doc, nil
}

// RegexTransformer registers a regex substitution over the serialized snapshot
// text; the tree itself is left untouched.
type RegexTransformer struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRegexTransformer builds a regex transformer.
func NewRegexTransformer(regex *regexp.Regexp, replacement string) *RegexTransformer {
	return &RegexTransformer{regex: regex, replacement: replacement}
}

func (t *RegexTransformer) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	ctx.AddRegexReplacement(t.regex, t.replacement)
	logger.Debug("registering regex pattern", "pattern", t.regex.String(), "replacement", t.replacement)
	return doc, nil
}

// TextTransformer registers a literal all-occurrences substitution over the
// serialized snapshot text. Useful when the text contains characters that
// would need escaping in a regex, like '+' or '('.
type TextTransformer struct {
	text        string
	replacement string
}

// NewTextTransformer builds a literal-text transformer.
func NewTextTransformer(text, replacement string) *TextTransformer {
	return &TextTransformer{text: text, replacement: replacement}
}

func (t *TextTransformer) Transform(doc map[string]any, ctx *TransformContext) (map[string]any, error) {
	ctx.AddTextReplacement(t.text, t.replacement)
	logger.Debug("registering text pattern", "text", t.text, "replacement", t.replacement)
	return doc, nil
}
