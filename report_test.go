package snapshot

import (
	"strings"
	"testing"
)

func TestFormatJSONPath(t *testing.T) {
	tests := []struct {
		segs []any
		want string
	}{
		{segs: []any{"Records", 1}, want: "$..Records"},
		{segs: []any{"Records", 1, "SomeKey"}, want: "$..Records..SomeKey"},
		{segs: []any{"Records", "SomeKey"}, want: "$..Records.SomeKey"},
		{segs: []any{}, want: "$.."},
		{segs: []any{1, 1, 0, "SomeKey"}, want: "$..SomeKey"},
		{segs: []any{"a", "b", "c"}, want: "$..a.b.c"},
	}
	for _, tt := range tests {
		if got := formatJSONPath(tt.segs); got != tt.want {
			t.Errorf("formatJSONPath(%v) = %s, want %s", tt.segs, got, tt.want)
		}
	}
}

func TestCompareStates_Equal(t *testing.T) {
	recorded := map[string]any{"a": "1", "b": []any{float64(1), float64(2)}}
	observed := map[string]any{"a": "1", "b": []any{float64(1), float64(2)}}

	res := compareStates("key_a", recorded, observed)
	if !res.Equal() {
		t.Fatalf("expected equal states, got differences: %v", res.Differences)
	}
	if !strings.Contains(res.String(), "ok") {
		t.Errorf("unexpected rendering: %s", res.String())
	}
}

func TestCompareStates_CollectsAllDifferences(t *testing.T) {
	recorded := map[string]any{
		"a":    "1",
		"b":    map[string]any{"c": "2"},
		"list": []any{"x", "y"},
	}
	observed := map[string]any{
		"a":    "1",
		"b":    map[string]any{"c": "changed"},
		"list": []any{"x", "y", "z"},
	}

	res := compareStates("key_a", recorded, observed)
	if res.Equal() {
		t.Fatal("expected differences")
	}
	if len(res.Differences) != 2 {
		t.Fatalf("expected 2 differences, got %d: %v", len(res.Differences), res.Differences)
	}

	paths := map[string]bool{}
	for _, d := range res.Differences {
		paths[d.Path] = true
	}
	if !paths["$..b.c"] || !paths["$..list"] {
		t.Errorf("unexpected difference paths: %v", paths)
	}
}

func TestCompareStates_MissingKeys(t *testing.T) {
	recorded := map[string]any{"shared": "x", "only_recorded": "r"}
	observed := map[string]any{"shared": "x", "only_observed": "o"}

	res := compareStates("key_a", recorded, observed)
	if len(res.Differences) != 2 {
		t.Fatalf("expected 2 differences, got %d: %v", len(res.Differences), res.Differences)
	}
	rendered := res.String()
	if !strings.Contains(rendered, "<missing>") {
		t.Errorf("one-sided differences should render as <missing>: %s", rendered)
	}
}

func TestAssertionError_Rendering(t *testing.T) {
	res := compareStates("key_a", map[string]any{"a": "1"}, map[string]any{"a": "2"})
	err := &AssertionError{Results: []MatchResult{res}}

	msg := err.Error()
	if !strings.Contains(msg, "key_a") || !strings.Contains(msg, `$..a`) {
		t.Errorf("unexpected error message: %s", msg)
	}
}
