package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/jp"
)

func TestLocate_DeterministicOrder(t *testing.T) {
	doc := map[string]any{
		"b": map[string]any{"id": "second"},
		"a": map[string]any{"id": "first"},
		"l": []any{map[string]any{"id": "third"}, map[string]any{"id": "fourth"}},
	}
	x, err := jp.ParseString("$..id")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	locs := locate(x, doc)
	want := [][]any{
		{"a", "id"},
		{"b", "id"},
		{"l", 0, "id"},
		{"l", 1, "id"},
	}
	if len(locs) != len(want) {
		t.Fatalf("expected %d locations, got %d", len(want), len(locs))
	}
	for i, loc := range locs {
		if diff := cmp.Diff(want[i], loc.segs); diff != "" {
			t.Errorf("location %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestLocate_DotIndexOnLists(t *testing.T) {
	doc := map[string]any{"aaa": []any{"a", "b", "c"}}

	for _, path := range []string{"$.aaa.1", "$..aaa.1", "$.aaa[1]"} {
		x, err := jp.ParseString(path)
		if err != nil {
			t.Fatalf("parse %q failed: %v", path, err)
		}
		locs := locate(x, doc)
		if len(locs) != 1 {
			t.Fatalf("%q: expected 1 location, got %d", path, len(locs))
		}
		if diff := cmp.Diff([]any{"aaa", 1}, locs[0].segs); diff != "" {
			t.Errorf("%q: unexpected segments (-want +got):\n%s", path, diff)
		}
	}
}

func TestLocate_DigitMapKeyStillResolves(t *testing.T) {
	// A mapping with a numeric string key keeps its dot addressing.
	doc := map[string]any{"m": map[string]any{"1": "x"}}
	x, err := jp.ParseString("$.m.1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	locs := locate(x, doc)
	if len(locs) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locs))
	}
	if diff := cmp.Diff([]any{"m", "1"}, locs[0].segs); diff != "" {
		t.Errorf("unexpected segments (-want +got):\n%s", diff)
	}
}

func TestValueAt(t *testing.T) {
	doc := map[string]any{"a": []any{map[string]any{"b": "x"}}}

	v, ok := valueAt(doc, []any{"a", 0, "b"})
	if !ok || v != "x" {
		t.Errorf("valueAt = %v, %v", v, ok)
	}
	if _, ok := valueAt(doc, []any{"a", 1}); ok {
		t.Error("out-of-range index should not resolve")
	}
	if _, ok := valueAt(doc, []any{"missing"}); ok {
		t.Error("missing key should not resolve")
	}
}

func TestSetAt_NeverCreatesPaths(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": "x"}}

	if !setAt(doc, []any{"a", "b"}, "y") {
		t.Error("existing location should be set")
	}
	if setAt(doc, []any{"a", "c"}, "y") {
		t.Error("missing key must not be created")
	}
	want := map[string]any{"a": map[string]any{"b": "y"}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestLessSegments(t *testing.T) {
	tests := []struct {
		a, b []any
		want bool
	}{
		{a: []any{"a"}, b: []any{"b"}, want: true},
		{a: []any{"a", 0}, b: []any{"a", 1}, want: true},
		{a: []any{"a"}, b: []any{"a", 0}, want: true},
		{a: []any{"key"}, b: []any{0}, want: true},
		{a: []any{"b"}, b: []any{"a"}, want: false},
	}
	for _, tt := range tests {
		if got := lessSegments(tt.a, tt.b); got != tt.want {
			t.Errorf("lessSegments(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
