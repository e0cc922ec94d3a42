package gitpublish

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/deepesdl/deep-code/internal/stac"
	"github.com/deepesdl/deep-code/internal/storage"
)

// WorkingCopy is the local clone of the fork during a publish.
type WorkingCopy struct {
	Dir string
}

// Path returns the absolute path of a repository-relative slash path.
func (wc *WorkingCopy) Path(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the repository", rel)
	}
	return filepath.Join(wc.Dir, local), nil
}

// Exists reports whether rel is a regular file in the working copy.
func (wc *WorkingCopy) Exists(rel string) bool {
	p, err := wc.Path(rel)
	return err == nil && storage.Exists(p)
}

// Load parses the document at rel. It returns fs.ErrNotExist when the file
// is absent.
func (wc *WorkingCopy) Load(rel string) (*stac.Document, error) {
	p, err := wc.Path(rel)
	if err != nil {
		return nil, err
	}
	var doc stac.Document
	if err := storage.LoadJSON(p, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return &doc, nil
}

// LoadExisting loads every path that exists. Missing paths are left out of
// the result.
func (wc *WorkingCopy) LoadExisting(paths []string) (map[string]*stac.Document, error) {
	docs := make(map[string]*stac.Document, len(paths))
	for _, rel := range paths {
		doc, err := wc.Load(rel)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs[rel] = doc
	}
	return docs, nil
}
