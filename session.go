package snapshot

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// Session orchestrates the snapshot assertions of one test scope, typically
// one test function with potentially multiple assertions. Observed values are
// collected via Match under unique keys; Assert runs the transformer pipeline,
// applies skip paths, and diffs every key against the recorded golden state.
//
// A session is single-use: after Assert it is terminal and further calls fail
// with ErrSessionFinished. Sessions are not safe for concurrent use, and a
// scope's snapshot file must be written by at most one session per test run.
type Session struct {
	filePath    string
	rawFilePath string
	scopeKey    string

	update bool
	verify bool
	raw    bool

	calledKeys    []string
	observedState map[string]any
	recordedState map[string]any

	transformers []prioritizedTransformer
	skipPaths    []string
	finished     bool
}

type prioritizedTransformer struct {
	transformer Transformer
	priority    int
}

// SessionOption configures session construction.
type SessionOption func(*Session)

// WithUpdate puts the session in recording mode: Assert skips comparison
// entirely and persists the transformed observed state as the new golden
// copy.
func WithUpdate() SessionOption {
	return func(s *Session) { s.update = true }
}

// WithoutVerification disables comparison for the whole session; Assert
// returns no results and no error.
func WithoutVerification() SessionOption {
	return func(s *Session) { s.verify = false }
}

// WithRawRecording additionally persists the untransformed observed state to
// <base>.raw.snapshot.json on Assert.
func WithRawRecording() SessionOption {
	return func(s *Session) { s.raw = true }
}

// NewSession creates the snapshot session for one test scope and loads any
// previously recorded state. baseFilePath is the snapshot file path without
// the ".snapshot.json" suffix; scopeKey identifies this scope's entry within
// the file.
func NewSession(baseFilePath, scopeKey string, opts ...SessionOption) (*Session, error) {
	s := &Session{
		filePath:      baseFilePath + snapshotFileSuffix,
		rawFilePath:   baseFilePath + rawFileSuffix,
		scopeKey:      scopeKey,
		verify:        true,
		observedState: map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}
	recorded, err := loadRecordedState(s.filePath, scopeKey)
	if err != nil {
		return nil, err
	}
	s.recordedState = recorded
	return s, nil
}

// AddTransformer registers transformers at the default priority 0.
func (s *Session) AddTransformer(transformers ...Transformer) {
	s.AddTransformerWithPriority(0, transformers...)
}

// AddTransformerWithPriority registers transformers at the given priority.
// Transformers run in ascending priority order; registration order decides
// between equal priorities.
func (s *Session) AddTransformerWithPriority(priority int, transformers ...Transformer) {
	for _, t := range transformers {
		s.transformers = append(s.transformers, prioritizedTransformer{transformer: t, priority: priority})
	}
}

// Match registers an observed value under the given assertion key. The
// session takes ownership of the value; callers must not mutate it afterwards.
// Reusing a key within one scope is a usage error.
func (s *Session) Match(key string, value any) error {
	if s.finished {
		return ErrSessionFinished
	}
	for _, k := range s.calledKeys {
		if k == key {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
	}
	s.calledKeys = append(s.calledKeys, key)
	s.observedState[key] = value

	if !s.update {
		if len(s.recordedState) == 0 {
			return fmt.Errorf("%w: scope %q", ErrMissingRecordedState, s.scopeKey)
		}
		if _, ok := s.recordedState[key]; !ok {
			return fmt.Errorf("%w: key %q in scope %q", ErrMissingRecordedKey, key, s.scopeKey)
		}
	}
	return nil
}

// MatchObject converts an arbitrary Go value into the plain tree shape and
// registers it under the given assertion key.
func (s *Session) MatchObject(key string, obj any) error {
	return s.Match(key, convertToTree(obj))
}

// AssertOption configures one Assert call.
type AssertOption func(*assertOptions)

type assertOptions struct {
	skipPaths        []string
	skipVerification bool
}

// WithSkipPaths excludes the locations matched by the given path expressions
// from comparison, on both the recorded and the observed side.
func WithSkipPaths(paths ...string) AssertOption {
	return func(o *assertOptions) { o.skipPaths = append(o.skipPaths, paths...) }
}

// SkipVerification disables verification for this pass. When skip paths are
// supplied as well, verification stays enabled and only the paths are
// excluded.
func SkipVerification() AssertOption {
	return func(o *assertOptions) { o.skipVerification = true }
}

// Assert finalizes the pass. In update mode it persists the transformed
// observed state as the new golden copy and reports nothing. In verification
// mode it transforms the observed state, removes skip paths from both sides,
// and diffs every matched key, collecting all mismatches before failing with
// an *AssertionError. Usage errors abort immediately.
func (s *Session) Assert(opts ...AssertOption) ([]MatchResult, error) {
	if s.finished {
		return nil, ErrSessionFinished
	}
	s.finished = true

	var cfg assertOptions
	for _, opt := range opts {
		opt(&cfg)
	}

	if !s.verify {
		logger.Warn("snapshot verification disabled")
		return nil, nil
	}
	if cfg.skipVerification && len(cfg.skipPaths) == 0 {
		logger.Warn("snapshot verification disabled for this test case")
		return nil, nil
	}
	s.skipPaths = cfg.skipPaths
	if len(s.skipPaths) > 0 {
		logger.Warn("snapshot verification disabled for paths", "paths", s.skipPaths)
	}

	if s.update {
		transformed, err := s.transform(s.observedState)
		if err != nil {
			return nil, err
		}
		s.observedState = transformed
		if err := persistState(s.filePath, s.scopeKey, s.observedState); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if len(s.observedState) == 0 {
		// Match was never called; the pass is inapplicable rather than passed.
		return nil, nil
	}
	if len(s.recordedState) == 0 {
		return nil, fmt.Errorf("%w: scope %q", ErrMissingRecordedState, s.scopeKey)
	}

	removeSkipPaths(s.recordedState, s.skipPaths)
	recorded, err := canonicalizeState(s.recordedState)
	if err != nil {
		return nil, err
	}
	observed, err := s.transform(s.observedState)
	if err != nil {
		return nil, err
	}
	s.observedState = observed

	results := make([]MatchResult, 0, len(s.calledKeys))
	failed := false
	for _, key := range s.calledKeys {
		rec, ok := recorded[key]
		if !ok {
			return nil, fmt.Errorf("%w: key %q in scope %q", ErrMissingRecordedKey, key, s.scopeKey)
		}
		result := compareStates(key, rec, observed[key])
		if !result.Equal() {
			failed = true
		}
		results = append(results, result)
	}
	if failed {
		return results, &AssertionError{Results: results}
	}
	return results, nil
}

// transform builds the comparison-stable state: embedded JSON is resolved,
// the transformer pipeline runs in priority order, skip paths are removed,
// and each key's value is serialized, substituted and re-parsed.
func (s *Session) transform(state map[string]any) (map[string]any, error) {
	parseEmbeddedJSON(state)

	if s.raw {
		if err := persistState(s.rawFilePath, s.scopeKey, state); err != nil {
			logger.Warn("could not persist raw snapshot", "path", s.rawFilePath, "error", err)
		}
	}

	ctx := NewTransformContext()
	sort.SliceStable(s.transformers, func(i, j int) bool {
		return s.transformers[i].priority < s.transformers[j].priority
	})

	tmp := state
	var err error
	for _, pt := range s.transformers {
		if tmp, err = pt.transformer.Transform(tmp, ctx); err != nil {
			return nil, err
		}
	}

	if !s.update {
		removeSkipPaths(tmp, s.skipPaths)
	}

	// Substitutions run per assertion key over the serialized value, so the
	// outer snapshot keys themselves are never rewritten.
	replaced := make(map[string]any, len(tmp))
	for _, key := range sortedKeys(tmp) {
		text, err := encodeState(tmp[key], "")
		if err != nil {
			return nil, err
		}
		text = ctx.applyReplacements(text)
		var value any
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrInvalidTransformedState, key, err)
		}
		replaced[key] = value
	}
	return replaced, nil
}

// RegisterReplacement registers a regex substitution over the serialized
// snapshot text for this session.
func (s *Session) RegisterReplacement(regex *regexp.Regexp, replacement string) {
	s.AddTransformer(NewRegexTransformer(regex, replacement))
}

// SkipKey replaces the value of every key matching the pattern with a fixed
// replacement, without reference counting.
func (s *Session) SkipKey(pattern *regexp.Regexp, replacement string) {
	s.AddTransformer(NewKeyValueTransformer(
		func(k string, v any) (any, bool) {
			if pattern.MatchString(k) {
				return v, true
			}
			return nil, false
		},
		replacement,
		false,
	))
}

// ReplaceValue replaces every string value matching the pattern with a fixed
// replacement, without reference counting.
func (s *Session) ReplaceValue(pattern *regexp.Regexp, replacement string) {
	s.AddTransformer(NewKeyValueTransformer(
		func(_ string, v any) (any, bool) {
			if str, ok := v.(string); ok && pattern.MatchString(str) {
				return str, true
			}
			return nil, false
		},
		replacement,
		false,
	))
}
