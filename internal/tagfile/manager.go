package tagfile

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/storage"
)

// Manager owns the tag documents stored under dir.
type Manager struct {
	store storage.Provider
	dir   string
}

// NewManager creates a manager for tag documents in dir (relative to the
// storage root).
func NewManager(store storage.Provider, dir string) *Manager {
	return &Manager{store: store, dir: dir}
}

// Path returns the storage path of the tag document for tag.
func (m *Manager) Path(tag string) string {
	return path.Join(m.dir, tag+".md")
}

// ValidateTag rejects identifiers that cannot name a tag document.
func ValidateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("%w: empty", apperr.ErrInvalidTag)
	}
	if strings.ContainsAny(tag, `/\`) || tag == "." || tag == ".." || strings.HasPrefix(tag, ".") {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidTag, tag)
	}
	return nil
}

// Load reads and parses the tag document for tag. A missing document yields
// an error wrapping apperr.ErrNotFound.
func (m *Manager) Load(tag string) (*Document, error) {
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}
	data, err := m.store.Read(m.Path(tag))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("tagfile: %s: %w", tag, apperr.ErrNotFound)
		}
		return nil, err
	}
	return Parse(tag, data)
}

// AddBacklink links title from the tag document, creating the document if
// needed. It reports whether the file changed; an existing entry for title
// leaves the file untouched.
func (m *Manager) AddBacklink(tag, title string) (bool, error) {
	doc, err := m.Load(tag)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		doc = New(tag)
	case err != nil:
		return false, err
	}

	if !doc.Add(title) {
		return false, nil
	}
	if err := m.store.Write(m.Path(tag), doc.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveBacklink drops title from the tag document and deletes the document
// once no backlink remains. It reports whether the document was deleted.
//
// A missing document means an earlier, interrupted run already removed the
// last link, so it is not an error.
func (m *Manager) RemoveBacklink(tag, title string) (bool, error) {
	doc, err := m.Load(tag)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	removed := doc.Remove(title)
	if doc.Empty() {
		if err := m.store.Delete(m.Path(tag)); err != nil {
			return false, err
		}
		return true, nil
	}
	if !removed {
		return false, nil
	}
	if err := m.store.Write(m.Path(tag), doc.Bytes()); err != nil {
		return false, err
	}
	return false, nil
}

// Backlinks returns the titles linked from tag's document.
func (m *Manager) Backlinks(tag string) ([]string, error) {
	doc, err := m.Load(tag)
	if err != nil {
		return nil, err
	}
	return doc.Backlinks(), nil
}

// Tags returns every tag that currently has a document, sorted.
func (m *Manager) Tags() ([]string, error) {
	metas, err := m.store.List(m.dir, ".md")
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, meta := range metas {
		if path.Dir(meta.Path) != path.Clean(m.dir) {
			continue
		}
		tags = append(tags, strings.TrimSuffix(path.Base(meta.Path), ".md"))
	}
	sort.Strings(tags)
	return tags, nil
}
