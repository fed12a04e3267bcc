package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

// Usage errors. These abort an assertion pass immediately.
var (
	// ErrDuplicateKey is returned when the same assertion key is matched twice
	// within one test scope.
	ErrDuplicateKey = errors.New("snapshot: key used multiple times in the same test scope")

	// ErrMissingRecordedState is returned when no golden state exists for the
	// scope and the session is not in update mode.
	ErrMissingRecordedState = errors.New("snapshot: no recorded state for scope, please (re-)generate the snapshot")

	// ErrMissingRecordedKey is returned when an observed key is absent from the
	// recorded state, which signals a stale golden copy.
	ErrMissingRecordedKey = errors.New("snapshot: recorded state missing key, please (re-)generate the snapshot")

	// ErrNonStringReference is returned when a reference replacement is
	// attempted for a non-string value. Reference replacements operate on the
	// serialized snapshot text and are only defined over strings.
	ErrNonStringReference = errors.New("snapshot: reference replacement requires a string value")

	// ErrSortTargetNotList is returned when a SortingTransformer matches a key
	// whose value is not a list.
	ErrSortTargetNotList = errors.New("snapshot: sorting transformer should only be applied to lists")

	// ErrSessionFinished is returned when Match or Assert is called after the
	// session already asserted its results.
	ErrSessionFinished = errors.New("snapshot: session already asserted")

	// ErrInvalidTransformedState is returned when the serialized state no
	// longer parses as JSON after deferred replacements were applied.
	ErrInvalidTransformedState = errors.New("snapshot: transformed state is not valid JSON")
)

// AssertionError aggregates all per-key snapshot mismatches of one assertion
// pass. It is the expected, reportable failure outcome of Assert, as opposed
// to the usage errors above.
type AssertionError struct {
	Results []MatchResult
}

// Error formats every failed key with its collected differences.
func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString("snapshot: parity snapshot failed")
	for i := range e.Results {
		r := &e.Results[i]
		if r.Equal() {
			continue
		}
		fmt.Fprintf(&b, "\n%s", r.String())
	}
	return b.String()
}
