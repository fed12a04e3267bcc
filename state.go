package snapshot

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	timefmt "github.com/itchyny/timefmt-go"
)

// Snapshot file naming and structure. Each file is a JSON object keyed by
// scope; a scope entry holds the recording date and the recorded content.
const (
	snapshotFileSuffix = ".snapshot.json"
	rawFileSuffix      = ".raw.snapshot.json"
	recordedDateKey    = "recorded-date"
	recordedContentKey = "recorded-content"
)

// loadRecordedState reads the scope's golden state from the snapshot file.
// A missing file, scope, or content yields an empty state; the session
// decides whether that is acceptable.
func loadRecordedState(path, scopeKey string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var full map[string]any
	if err := json.Unmarshal(data, &full); err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}
	scope, ok := full[scopeKey].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	content, ok := scope[recordedContentKey].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return content, nil
}

// persistState merges the scope's entry into the snapshot file and rewrites
// the whole file, preserving the entries of all other scopes.
func persistState(path, scopeKey string, state map[string]any) error {
	full := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil && len(data) > 0:
		if err := json.Unmarshal(data, &full); err != nil {
			return fmt.Errorf("snapshot: reading %s: %w", path, err)
		}
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("snapshot: reading %s: %w", path, err)
	}

	full[scopeKey] = map[string]any{
		recordedDateKey:    timefmt.Format(time.Now().UTC(), recordedDateFormat),
		recordedContentKey: state,
	}

	text, err := encodeState(full, "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encoding %s: %w", path, err)
	}
	// Trailing newline keeps the file compatible with end-of-file fixers.
	return writeFileAtomic(path, []byte(text+"\n"))
}

// writeFileAtomic writes data through a temp file in the target directory and
// renames it into place, so a crashed test run never leaves a half-written
// snapshot file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tempPath, err := generateTempFileName(path)
	if err != nil {
		return err
	}

	var tempFileCreated bool
	defer func() {
		if tempFileCreated {
			_ = os.Remove(tempPath)
		}
	}()

	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}
	tempFileCreated = true

	if err := os.Rename(tempPath, path); err != nil {
		return err
	}
	tempFileCreated = false
	return nil
}

// generateTempFileName returns a unique temp file name next to the target, so
// the final rename stays on one filesystem.
func generateTempFileName(targetPath string) (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return targetPath + ".tmp." + hex.EncodeToString(randomBytes), nil
}
