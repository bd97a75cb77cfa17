package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Timestamps are stored as strings with a fixed-width fractional second, so
// lexicographic comparison of two timestamps from the same store is
// equivalent to chronological comparison. Records written by earlier
// deployments may carry zone-less timestamps in the legacy layout.
const (
	timestampLayout       = "2006-01-02T15:04:05.000000Z07:00"
	legacyTimestampLayout = "2006-01-02T15:04:05.999999"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(legacyTimestampLayout, s)
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// readRecord decodes the JSON record at path into v. A missing file is
// reported as fs.ErrNotExist for the caller to translate.
func readRecord(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

// writeRecord atomically replaces the record at path: the new content is
// written to a temp file in the same directory, flushed to stable storage,
// then renamed over the old record. A reader never observes a partial
// record, and a completed call is durable across process restarts.
func writeRecord(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp record: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync temp record: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp record: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace record: %w", err)
	}

	return nil
}
