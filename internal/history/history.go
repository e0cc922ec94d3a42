// Package history keeps a local ledger of publish attempts.
//
// A publish that fails after its branch was pushed leaves that branch on the
// fork without a pull request. The ledger remembers such attempts so
// `deep-code history --orphaned` can list them for manual cleanup.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/deepesdl/deep-code/internal/storage"
)

// maxEntries caps the ledger; the oldest entries are dropped first.
const maxEntries = 200

// Kind is what a publish attempt published.
type Kind string

const (
	KindDataset  Kind = "dataset"
	KindWorkflow Kind = "workflow"
)

// Entry is one publish attempt.
type Entry struct {
	Kind       Kind      `json:"kind"`
	ID         string    `json:"id"`
	Branch     string    `json:"branch,omitempty"`
	PRURL      string    `json:"pr_url,omitempty"`
	FailedStep string    `json:"failed_step,omitempty"`
	Orphaned   bool      `json:"orphaned,omitempty"` // branch pushed, no pull request
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Succeeded reports whether the attempt opened a pull request.
func (e Entry) Succeeded() bool {
	return e.PRURL != "" && e.Error == ""
}

// History is the persisted ledger, oldest entry first.
type History struct {
	Entries []Entry `json:"entries"`
}

// DefaultPath returns ~/.deep-code/history.json.
func DefaultPath() (string, error) {
	dir, err := storage.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Load reads the ledger at path. A missing or corrupted file yields an
// empty ledger.
func Load(path string) (*History, error) {
	var h History
	if err := storage.LoadJSON(path, &h); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &History{}, nil
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return &History{}, nil
		}
		return nil, err
	}
	return &h, nil
}

// Save writes the ledger to path atomically.
func (h *History) Save(path string) error {
	return storage.SaveJSON(path, h)
}

// Orphaned returns the attempts that left a pushed branch without a pull
// request, newest first.
func (h *History) Orphaned() []Entry {
	var out []Entry
	for _, e := range slices.Backward(h.Entries) {
		if e.Orphaned {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (h *History) Recent(n int) []Entry {
	out := slices.Clone(h.Entries)
	slices.Reverse(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Record appends e to the ledger at path. A zero Time is set to now.
// Concurrent processes recording to the same path are serialized.
func Record(e Entry, path string) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	return storage.WithLock(path, func() error {
		h, err := Load(path)
		if err != nil {
			return err
		}
		h.Entries = append(h.Entries, e)
		if len(h.Entries) > maxEntries {
			h.Entries = slices.Clone(h.Entries[len(h.Entries)-maxEntries:])
		}
		return h.Save(path)
	})
}

// Ledger records entries to a fixed file.
type Ledger struct {
	Path string
}

// Record appends e to the ledger file.
func (l *Ledger) Record(e Entry) error {
	return Record(e, l.Path)
}
