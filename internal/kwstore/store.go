// Package kwstore persists the last-applied tag set of every document.
//
// Snapshots live at <dir>/<title>.kwds as newline-separated tag identifiers
// and are replaced wholesale on each save.
package kwstore

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/starford/autotag/internal/storage"
)

const ext = ".kwds"

// Store reads and writes keyword snapshots through a storage.Provider.
type Store struct {
	store storage.Provider
	dir   string
}

// New creates a snapshot store in dir (relative to the storage root).
func New(store storage.Provider, dir string) *Store {
	return &Store{store: store, dir: dir}
}

func (s *Store) path(title string) string {
	return path.Join(s.dir, title+ext)
}

// Load returns the tags saved for title, or nil if title has no snapshot yet.
// An existing but empty snapshot yields a non-nil empty slice.
func (s *Store) Load(title string) ([]string, error) {
	data, err := s.store.Read(s.path(title))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kwstore: load %s: %w", title, err)
	}

	tags := []string{}
	seen := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		tag := strings.TrimSpace(line)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Save replaces the snapshot for title. The write is atomic for this title;
// snapshots of other documents are never touched.
func (s *Store) Save(title string, tags []string) error {
	if err := s.store.Write(s.path(title), []byte(strings.Join(tags, "\n"))); err != nil {
		return fmt.Errorf("kwstore: save %s: %w", title, err)
	}
	return nil
}

// Delete removes the snapshot for title. A missing snapshot is not an error.
func (s *Store) Delete(title string) error {
	err := s.store.Delete(s.path(title))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("kwstore: delete %s: %w", title, err)
	}
	return nil
}

// Titles returns the titles of all stored snapshots, sorted.
func (s *Store) Titles() ([]string, error) {
	metas, err := s.store.List(s.dir, ext)
	if err != nil {
		return nil, fmt.Errorf("kwstore: list: %w", err)
	}
	var titles []string
	for _, m := range metas {
		if path.Dir(m.Path) != path.Clean(s.dir) {
			continue
		}
		titles = append(titles, strings.TrimSuffix(path.Base(m.Path), ext))
	}
	sort.Strings(titles)
	return titles, nil
}
