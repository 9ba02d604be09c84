package autotag

import (
	"fmt"
	"sort"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/index"
)

// Catalog answers read queries about tags. It uses the index when one is
// configured and falls back to reading tag documents and snapshots.
type Catalog struct {
	syncer *Syncer
	index  index.TagIndex
}

// NewCatalog creates a Catalog. idx may be nil.
func NewCatalog(syncer *Syncer, idx index.TagIndex) *Catalog {
	return &Catalog{syncer: syncer, index: idx}
}

// TagCounts lists every tag with the number of documents linking to it,
// most used first.
func (c *Catalog) TagCounts() ([]index.TagCount, error) {
	if c.index != nil {
		return c.index.TagCounts()
	}
	tags, err := c.syncer.Tags().Tags()
	if err != nil {
		return nil, err
	}
	out := make([]index.TagCount, 0, len(tags))
	for _, tag := range tags {
		links, err := c.syncer.Tags().Backlinks(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, index.TagCount{Tag: tag, Count: len(unique(links))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// Backlinks returns the documents linked from tag. An unknown tag yields an
// error wrapping apperr.ErrNotFound.
func (c *Catalog) Backlinks(tag string) ([]string, error) {
	if c.index != nil {
		titles, err := c.index.DocumentsFor(tag)
		if err != nil {
			return nil, err
		}
		if len(titles) == 0 {
			return nil, fmt.Errorf("autotag: tag %q: %w", tag, apperr.ErrNotFound)
		}
		return titles, nil
	}
	return c.syncer.Tags().Backlinks(tag)
}

// DocumentTags returns the tags last applied to title. A document that was
// never processed yields an error wrapping apperr.ErrNotFound.
func (c *Catalog) DocumentTags(title string) ([]string, error) {
	if c.index != nil {
		doc, err := c.index.GetDocument(title)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, fmt.Errorf("autotag: document %q: %w", title, apperr.ErrNotFound)
		}
		return doc.Tags, nil
	}
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	tags, err := c.syncer.Snapshots().Load(title)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		return nil, fmt.Errorf("autotag: document %q: %w", title, apperr.ErrNotFound)
	}
	return tags, nil
}
