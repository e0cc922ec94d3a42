// Package storage provides atomic file operations for JSON data, both for
// deep-code's own state in ~/.deep-code/ and for catalog documents written
// into a working copy.
package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// StateDir returns the path to ~/.deep-code/, creating it if needed
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".deep-code")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// Encode renders data as two-space indented JSON with a trailing newline.
// HTML characters are not escaped so URLs stay readable in catalog files.
func Encode(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveJSON atomically writes data as JSON to the specified path.
// It ensures the parent directory exists, writes to a temp file,
// then renames to the final path for atomic operation.
func SaveJSON(path string, data any) error {
	return save(path, data, 0o600)
}

// WriteDocument writes a catalog document. Unlike SaveJSON the file is
// world-readable, since it ends up committed to a repository.
func WriteDocument(path string, data any) error {
	return save(path, data, 0o644)
}

func save(path string, data any, perm os.FileMode) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tempPath := path + ".tmp"

	jsonData, err := Encode(data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, jsonData, perm); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// LoadJSON reads JSON from the specified path into dest.
// Returns os.ErrNotExist if file doesn't exist (caller should handle).
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
