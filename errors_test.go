package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors_Prefixed(t *testing.T) {
	sentinels := []error{
		ErrDuplicateKey,
		ErrMissingRecordedState,
		ErrMissingRecordedKey,
		ErrNonStringReference,
		ErrSortTargetNotList,
		ErrSessionFinished,
		ErrInvalidTransformedState,
	}
	for _, err := range sentinels {
		if !strings.HasPrefix(err.Error(), "snapshot: ") {
			t.Errorf("sentinel not prefixed: %v", err)
		}
	}
}

func TestSentinelErrors_WrapCompatible(t *testing.T) {
	wrapped := fmt.Errorf("%w: key %q", ErrDuplicateKey, "key_a")
	if !errors.Is(wrapped, ErrDuplicateKey) {
		t.Error("wrapped sentinel should satisfy errors.Is")
	}
}

func TestAssertionError_SkipsPassedKeys(t *testing.T) {
	err := &AssertionError{Results: []MatchResult{
		compareStates("passed", map[string]any{"a": "1"}, map[string]any{"a": "1"}),
		compareStates("failed", map[string]any{"a": "1"}, map[string]any{"a": "2"}),
	}}

	msg := err.Error()
	if strings.Contains(msg, "passed") {
		t.Errorf("passed keys should not appear in the failure message: %s", msg)
	}
	if !strings.Contains(msg, "failed") {
		t.Errorf("failed keys must appear in the failure message: %s", msg)
	}
}
