// Package storage reads experiment inputs and prompt templates from disk and
// writes classification results back. Read failures never propagate: they
// are logged and an empty value is returned so callers can decide whether
// to continue.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwiater/shotclass/internal/logging"
)

// ErrMissingKey is returned by Document.Decode when the key is absent.
var ErrMissingKey = errors.New("key not found")

// Document is a parsed top-level JSON object whose values are decoded lazily.
type Document map[string]json.RawMessage

// Decode unmarshals the value stored under key into v.
func (d Document) Decode(key string, v any) error {
	raw, ok := d[key]
	if !ok {
		return fmt.Errorf("%q: %w", key, ErrMissingKey)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// ReadText returns the contents of path, or "" when it cannot be read.
func ReadText(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogWarn("file %s was not found", path)
		} else {
			logging.LogError(err, "error reading file %s", path)
		}
		return ""
	}
	return string(data)
}

// ReadJSON parses the JSON object stored at path. Missing files, malformed
// JSON and non-object documents all yield an empty, non-nil Document.
func ReadJSON(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.LogWarn("file %s was not found", path)
		} else {
			logging.LogError(err, "error reading file %s", path)
		}
		return Document{}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.LogError(err, "file %s is not a valid JSON object", path)
		return Document{}
	}
	if doc == nil {
		return Document{}
	}
	return doc
}

// WriteJSON writes value to path with four-space indentation, leaving
// non-ASCII and HTML characters unescaped. Existing files are overwritten.
func WriteJSON(value any, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(value); err != nil {
		logging.LogError(err, "error encoding JSON for %s", path)
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.LogError(err, "error creating directory for %s", path)
			return fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logging.LogError(err, "error saving JSON file %s", path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ResetDir removes dir and everything below it, then recreates it empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
