package snapshot

import (
	"fmt"
	"regexp"
	"strings"
)

// serializedReplacement is one deferred text-level substitution, applied to
// the serialized snapshot after all transformers ran. Replacements carry their
// data instead of closing over it so they can be replayed in exact
// registration order.
type serializedReplacement struct {
	// text is the literal search string; empty when regex is set.
	text        string
	regex       *regexp.Regexp
	replacement string
}

func (r serializedReplacement) apply(s string) string {
	if r.regex != nil {
		out := r.regex.ReplaceAllString(s, r.replacement)
		if out != s {
			logger.Debug("replacing regex in snapshot", "pattern", r.regex.String(), "replacement", r.replacement)
		}
		return out
	}
	if strings.Contains(s, r.text) {
		logger.Debug("replacing text in snapshot", "text", r.text, "replacement", r.replacement)
	}
	return strings.ReplaceAll(s, r.text, r.replacement)
}

// TransformContext carries the state of one normalization pass: the scoped
// token counters, the reference replacement registry, and the ordered list of
// deferred serialized replacements. A context is created per assertion pass
// and discarded afterwards; it must not be shared across passes.
type TransformContext struct {
	replacements []serializedReplacement
	scopedTokens map[string]int

	// seen guards reference registration: at most one placeholder token is
	// minted per raw value within one pass. Keyed by the escaped raw value.
	seen map[string]struct{}
}

// NewTransformContext returns an empty context for a single pass.
func NewTransformContext() *TransformContext {
	return &TransformContext{
		scopedTokens: map[string]int{},
		seen:         map[string]struct{}{},
	}
}

// NextToken returns the next enumeration value for the given replacement name,
// starting at 1. Counters are independent per name.
func (c *TransformContext) NextToken(name string) int {
	current, ok := c.scopedTokens[name]
	if !ok {
		current = 1
	}
	c.scopedTokens[name] = current + 1
	return current
}

// AddTextReplacement registers a literal all-occurrences substitution over the
// serialized snapshot text.
func (c *TransformContext) AddTextReplacement(text, replacement string) {
	c.replacements = append(c.replacements, serializedReplacement{text: text, replacement: replacement})
}

// AddRegexReplacement registers a regex substitution over the serialized
// snapshot text.
func (c *TransformContext) AddRegexReplacement(regex *regexp.Regexp, replacement string) {
	c.replacements = append(c.replacements, serializedReplacement{regex: regex, replacement: replacement})
}

// RegisterReference registers a reference replacement for value under the
// given replacement name. The first registration of a raw value mints a token
// <name:N> and schedules a substitution of every occurrence of the value in
// the serialized text; later registrations of the same raw value are no-ops,
// since the already-registered substitution covers all occurrences.
//
// Returns ErrNonStringReference if value is not a string.
func (c *TransformContext) RegisterReference(value any, name string) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: value %v of type %T cannot be replaced by reference %q, consider a non-reference replacement",
			ErrNonStringReference, value, value, name)
	}

	// Escape embedded quotes so the substitution is safe inside serialized
	// JSON text, where string values appear with escaped quotes.
	str = strings.ReplaceAll(str, `"`, `\"`)

	if _, done := c.seen[str]; done {
		return nil
	}
	c.seen[str] = struct{}{}

	token := fmt.Sprintf("<%s:%d>", name, c.NextToken(name))
	logger.Debug("registering reference replacement", "value", str, "token", token)
	c.AddTextReplacement(str, token)
	return nil
}

// applyReplacements replays all registered substitutions against the
// serialized text, strictly in registration order. Overlapping targets are
// deliberately resolved by that order alone.
func (c *TransformContext) applyReplacements(s string) string {
	for _, r := range c.replacements {
		s = r.apply(s)
	}
	return s
}
