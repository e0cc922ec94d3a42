package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type ledger struct {
	Entries []string `json:"entries"`
}

func TestSave(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		save func(string, any) error
		perm os.FileMode
	}{
		{"state file is private", SaveJSON, 0o600},
		{"document is world readable", WriteDocument, 0o644},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "products", "sst", "collection.json")
			if err := tt.save(path, ledger{Entries: []string{"a"}}); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			// Overwrite goes through the temp file again
			want := ledger{Entries: []string{"a", "b"}}
			if err := tt.save(path, want); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("Stat failed: %v", err)
			}
			if got := info.Mode().Perm(); got != tt.perm {
				t.Errorf("perm = %v, want %v", got, tt.perm)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("temp file left behind (stat err = %v)", err)
			}

			var got ledger
			if err := LoadJSON(path, &got); err != nil {
				t.Fatalf("LoadJSON failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSave_UnencodableLeavesNoFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := SaveJSON(path, map[string]any{"f": func() {}}); err == nil {
		t.Fatal("expected error for unencodable data")
	}
	if Exists(path) || Exists(path+".tmp") {
		t.Error("no file should be written when encoding fails")
	}
}

func TestLoadJSON_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var dest ledger

	err := LoadJSON(filepath.Join(dir, "missing.json"), &dest)
	if !os.IsNotExist(err) {
		t.Errorf("missing file: err = %v, want not-exist", err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte(`{"entries": [`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := LoadJSON(corrupt, &dest); err == nil || os.IsNotExist(err) {
		t.Errorf("corrupt file: err = %v, want a decode error", err)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	got, err := Encode(map[string]any{
		"href":  "https://example.com/?a=1&b=<2>",
		"bbox":  []float64{-180, -90, 180, 90},
		"title": "Sea Surface Temperature",
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{
  "bbox": [
    -180,
    -90,
    180,
    90
  ],
  "href": "https://example.com/?a=1&b=<2>",
  "title": "Sea Surface Temperature"
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
}

func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.json")
	if err := WriteDocument(file, map[string]string{"id": "x"}); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}

	if !Exists(file) {
		t.Error("Exists() = false for written document")
	}
	if Exists(dir) {
		t.Error("Exists() = true for a directory")
	}
	if Exists(filepath.Join(dir, "nope.json")) {
		t.Error("Exists() = true for a missing file")
	}
}

func TestStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error: %v", err)
	}
	if want := filepath.Join(home, ".deep-code"); dir != want {
		t.Errorf("StateDir() = %q, want %q", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("StateDir() did not create a directory (err = %v)", err)
	}
}
