package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadRecordedState_MissingFile(t *testing.T) {
	got, err := loadRecordedState(filepath.Join(t.TempDir(), "nope.snapshot.json"), "scope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("missing file should yield empty state, got %v", got)
	}
}

func TestLoadRecordedState_MissingScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snapshot.json")
	if err := persistState(path, "other_scope", map[string]any{"k": "v"}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	got, err := loadRecordedState(path, "scope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("missing scope should yield empty state, got %v", got)
	}
}

func TestPersistState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snapshot.json")
	state := map[string]any{
		"key_a": map[string]any{"a": "1", "n": float64(2)},
	}

	if err := persistState(path, "scope", state); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	got, err := loadRecordedState(path, "scope")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(state, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistState_PreservesOtherScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snapshot.json")

	if err := persistState(path, "scope_one", map[string]any{"k": "one"}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if err := persistState(path, "scope_two", map[string]any{"k": "two"}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	one, err := loadRecordedState(path, "scope_one")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"k": "one"}, one); diff != "" {
		t.Errorf("first scope was not preserved (-want +got):\n%s", diff)
	}
}

func TestPersistState_FileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snapshot.json")
	if err := persistState(path, "scope", map[string]any{"token": "<id:1>"}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	text := string(data)
	if !strings.HasSuffix(text, "\n") {
		t.Error("file should end with a newline")
	}
	if !strings.Contains(text, `"recorded-date"`) || !strings.Contains(text, `"recorded-content"`) {
		t.Errorf("unexpected file shape:\n%s", text)
	}
	if !strings.Contains(text, `"<id:1>"`) {
		t.Errorf("placeholder token should survive persistence verbatim:\n%s", text)
	}
}

func TestWriteFileAtomic_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.snapshot.json")
	if err := writeFileAtomic(path, []byte("{}\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("unexpected content: %q", data)
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}

func TestGenerateTempFileName(t *testing.T) {
	a, err := generateTempFileName("/tmp/x.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := generateTempFileName("/tmp/x.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("temp file names should be unique")
	}
	if !strings.HasPrefix(a, "/tmp/x.json.tmp.") {
		t.Errorf("unexpected temp name: %s", a)
	}
}
