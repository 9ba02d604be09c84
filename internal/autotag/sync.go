// Package autotag keeps tag documents in step with the keywords extracted
// from each document.
//
// A run loads the document's previous keyword snapshot, diffs it against the
// new tag set, removes and adds backlinks on the affected tag documents and
// only then overwrites the snapshot. A failed mutation stops the run before
// the snapshot is saved, so the next run recomputes the same diff and
// converges.
package autotag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/diff"
	"github.com/starford/autotag/internal/kwstore"
	"github.com/starford/autotag/internal/models"
	"github.com/starford/autotag/internal/tagfile"
)

// Operation names used in OpError besides models.OpAdd and models.OpRemove.
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpValidate = "validate"
	OpIndex    = "index"
)

// OpError describes the step a run failed on.
type OpError struct {
	Title string
	Tag   string
	Op    string
	Err   error
}

func (e *OpError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("autotag: %s %q: %v", e.Op, e.Title, e.Err)
	}
	return fmt.Sprintf("autotag: %s backlink %q on tag %q: %v", e.Op, e.Title, e.Tag, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Report lists the changes applied by a run, in application order.
type Report struct {
	Title   string          `json:"title"`
	Tags    []string        `json:"tags"`
	Changes []models.Change `json:"changes"`
}

// Added returns the tags that gained a backlink.
func (r *Report) Added() []string { return r.tagsFor(models.OpAdd) }

// Removed returns the tags that lost a backlink.
func (r *Report) Removed() []string { return r.tagsFor(models.OpRemove) }

func (r *Report) tagsFor(op models.Op) []string {
	var out []string
	for _, c := range r.Changes {
		if c.Op == op {
			out = append(out, c.Tag)
		}
	}
	return out
}

// Subscriber receives events as they are applied.
type Subscriber func(models.Event)

// Syncer applies tag set changes to tag documents and snapshots. Runs are
// serialized; a Syncer may be shared between the watcher, the HTTP API and
// the MCP server.
type Syncer struct {
	mu        sync.Mutex
	tags      *tagfile.Manager
	snapshots *kwstore.Store
	logger    *slog.Logger

	subMu sync.RWMutex
	subs  []Subscriber
}

// NewSyncer creates a Syncer.
func NewSyncer(tags *tagfile.Manager, snapshots *kwstore.Store, logger *slog.Logger) *Syncer {
	return &Syncer{tags: tags, snapshots: snapshots, logger: logger}
}

// Tags returns the tag document manager.
func (s *Syncer) Tags() *tagfile.Manager { return s.tags }

// Snapshots returns the keyword snapshot store.
func (s *Syncer) Snapshots() *kwstore.Store { return s.snapshots }

// Subscribe registers fn for every subsequent event.
func (s *Syncer) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Syncer) publish(ev models.Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(ev)
	}
}

// ValidateTitle rejects titles that cannot be stored as a snapshot name or
// written as a backlink.
func ValidateTitle(title string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return fmt.Errorf("%w: empty", apperr.ErrInvalidTitle)
	case strings.ContainsAny(title, "/\\\r\n"),
		strings.Contains(title, "[["),
		strings.Contains(title, "]]"),
		strings.HasPrefix(title, "."):
		return fmt.Errorf("%w: %q", apperr.ErrInvalidTitle, title)
	}
	return nil
}

// Sync makes the tag documents referencing title match tags and saves tags
// as the new snapshot. Duplicate tags are collapsed, keeping first
// occurrence order.
func (s *Syncer) Sync(ctx context.Context, title string, tags []string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags = unique(tags)
	rep := &Report{Title: title, Tags: tags}

	if err := ValidateTitle(title); err != nil {
		return rep, &OpError{Title: title, Op: OpValidate, Err: err}
	}
	for _, tag := range tags {
		if err := tagfile.ValidateTag(tag); err != nil {
			return rep, &OpError{Title: title, Tag: tag, Op: OpValidate, Err: err}
		}
	}

	old, err := s.snapshots.Load(title)
	if err != nil {
		return rep, &OpError{Title: title, Op: OpLoad, Err: err}
	}
	removed, added := diff.Diff(old, tags)

	for _, tag := range removed {
		if err := s.remove(ctx, rep, tag, title); err != nil {
			return rep, err
		}
	}
	for _, tag := range added {
		if err := s.add(ctx, rep, tag, title); err != nil {
			return rep, err
		}
	}

	if err := s.snapshots.Save(title, tags); err != nil {
		return rep, &OpError{Title: title, Op: OpSave, Err: err}
	}

	s.logger.Debug("sync complete",
		slog.String("title", title),
		slog.Int("removed", len(removed)),
		slog.Int("added", len(added)))
	return rep, nil
}

// Forget removes every backlink of title and its snapshot.
func (s *Syncer) Forget(ctx context.Context, title string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := &Report{Title: title}
	if err := ValidateTitle(title); err != nil {
		return rep, &OpError{Title: title, Op: OpValidate, Err: err}
	}
	old, err := s.snapshots.Load(title)
	if err != nil {
		return rep, &OpError{Title: title, Op: OpLoad, Err: err}
	}
	removed, _ := diff.Diff(old, nil)
	for _, tag := range removed {
		if err := s.remove(ctx, rep, tag, title); err != nil {
			return rep, err
		}
	}
	if err := s.snapshots.Delete(title); err != nil {
		return rep, &OpError{Title: title, Op: OpSave, Err: err}
	}
	s.publish(models.Event{Kind: models.EventDocumentForgotten, Title: title})
	return rep, nil
}

// Reconcile repairs drift between tag documents and snapshots: backlinks
// whose document's snapshot lacks the tag are removed, and snapshot tags
// missing their backlink are re-added. One report is returned per title that
// changed, in the order the titles were first touched.
func (s *Syncer) Reconcile(ctx context.Context) ([]*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles, err := s.snapshots.Titles()
	if err != nil {
		return nil, err
	}
	want := make(map[string]map[string]struct{}, len(titles))
	for _, title := range titles {
		tags, err := s.snapshots.Load(title)
		if err != nil {
			return nil, &OpError{Title: title, Op: OpLoad, Err: err}
		}
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
		}
		want[title] = set
	}

	reports := map[string]*Report{}
	var order []string
	reportFor := func(title string) *Report {
		if r, ok := reports[title]; ok {
			return r
		}
		r := &Report{Title: title}
		reports[title] = r
		order = append(order, title)
		return r
	}

	existing, err := s.tags.Tags()
	if err != nil {
		return nil, err
	}
	linked := make(map[string]map[string]struct{}, len(existing))
	for _, tag := range existing {
		backlinks, err := s.tags.Backlinks(tag)
		if err != nil {
			return nil, &OpError{Tag: tag, Op: OpLoad, Err: err}
		}
		set := make(map[string]struct{}, len(backlinks))
		for _, title := range unique(backlinks) {
			if _, ok := want[title][tag]; ok {
				set[title] = struct{}{}
				continue
			}
			if err := s.remove(ctx, reportFor(title), tag, title); err != nil {
				return nil, err
			}
		}
		linked[tag] = set
	}

	for _, title := range titles {
		tags := make([]string, 0, len(want[title]))
		for tag := range want[title] {
			tags = append(tags, tag)
		}
		_, missing := diff.Diff(nil, tags)
		for _, tag := range missing {
			if _, ok := linked[tag][title]; ok {
				continue
			}
			if err := s.add(ctx, reportFor(title), tag, title); err != nil {
				return nil, err
			}
		}
	}

	out := make([]*Report, 0, len(order))
	for _, title := range order {
		out = append(out, reports[title])
	}
	return out, nil
}

func (s *Syncer) remove(ctx context.Context, rep *Report, tag, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deleted, err := s.tags.RemoveBacklink(tag, title)
	if err != nil {
		return &OpError{Title: title, Tag: tag, Op: string(models.OpRemove), Err: err}
	}
	s.record(rep, models.Change{Op: models.OpRemove, Tag: tag, Title: title, Deleted: deleted})
	return nil
}

func (s *Syncer) add(ctx context.Context, rep *Report, tag, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.tags.AddBacklink(tag, title); err != nil {
		return &OpError{Title: title, Tag: tag, Op: string(models.OpAdd), Err: err}
	}
	s.record(rep, models.Change{Op: models.OpAdd, Tag: tag, Title: title})
	return nil
}

func (s *Syncer) record(rep *Report, c models.Change) {
	rep.Changes = append(rep.Changes, c)
	s.logger.Info("backlink "+string(c.Op),
		slog.String("tag", c.Tag),
		slog.String("title", c.Title),
		slog.Bool("tag_deleted", c.Deleted))
	for _, ev := range c.Events() {
		s.publish(ev)
	}
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
