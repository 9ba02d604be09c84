package autotag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/checksum"
	"github.com/starford/autotag/internal/extract"
	"github.com/starford/autotag/internal/index"
	"github.com/starford/autotag/internal/models"
	"github.com/starford/autotag/internal/parser"
	"github.com/starford/autotag/internal/storage"
)

const docExt = ".md"

// Result describes what processing one file did.
type Result struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Skipped   bool              `json:"skipped,omitempty"`
	Unchanged bool              `json:"unchanged,omitempty"`
	Keywords  []extract.Keyword `json:"keywords,omitempty"`
	Report    *Report           `json:"report,omitempty"`
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithIndex records processed documents in idx and skips files whose
// checksum has not changed since they were last processed.
func WithIndex(idx index.TagIndex) ProcessorOption {
	return func(p *Processor) { p.index = idx }
}

// WithParams sets the extraction parameters. TopN is derived per document.
func WithParams(params extract.Params) ProcessorOption {
	return func(p *Processor) { p.params = params }
}

// WithSizing sets how the keyword count scales with document length.
func WithSizing(s extract.Sizing) ProcessorOption {
	return func(p *Processor) { p.sizing = s }
}

// WithIgnoreDirs excludes documents below any directory with one of names.
func WithIgnoreDirs(names ...string) ProcessorOption {
	return func(p *Processor) { p.ignore = append(p.ignore, names...) }
}

// WithForce disables the unchanged-checksum shortcut.
func WithForce(force bool) ProcessorOption {
	return func(p *Processor) { p.force = force }
}

// Processor runs the document pipeline: read, strip, extract, normalize,
// sync and index.
type Processor struct {
	store       storage.Provider
	syncer      *Syncer
	keywordsDir string
	logger      *slog.Logger

	rake   *extract.Rake
	params extract.Params
	sizing extract.Sizing
	ignore []string
	index  index.TagIndex
	force  bool
}

// NewProcessor creates a Processor. keywordsDir is the storage-relative
// directory holding tag documents; nothing below it is ever processed.
func NewProcessor(store storage.Provider, syncer *Syncer, keywordsDir string, logger *slog.Logger, opts ...ProcessorOption) (*Processor, error) {
	p := &Processor{
		store:       store,
		syncer:      syncer,
		keywordsDir: path.Clean(filepath.ToSlash(keywordsDir)),
		logger:      logger,
		params:      extract.DefaultParams(),
		sizing:      extract.DefaultSizing(),
	}
	for _, opt := range opts {
		opt(p)
	}
	rake, err := extract.NewRake(p.params.Language)
	if err != nil {
		return nil, err
	}
	p.rake = rake
	return p, nil
}

// fingerprint identifies the settings that shape the extracted tags.
func (p *Processor) fingerprint() string {
	return fmt.Sprintf("%+v|%+v|%s", p.params.WithTopN(0), p.sizing, p.keywordsDir)
}

// Syncer returns the underlying Syncer.
func (p *Processor) Syncer() *Syncer { return p.syncer }

// Index returns the configured index, or nil.
func (p *Processor) Index() index.TagIndex { return p.index }

// Accepts reports whether rel names a document the pipeline handles.
func (p *Processor) Accepts(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	if path.Ext(rel) != docExt {
		return false
	}
	if rel == p.keywordsDir || strings.HasPrefix(rel, p.keywordsDir+"/") {
		return false
	}
	dirs := strings.Split(path.Dir(rel), "/")
	for _, d := range dirs {
		for _, ig := range p.ignore {
			if d == ig {
				return false
			}
		}
	}
	return true
}

// ProcessFile runs the pipeline for the document at rel (relative to the
// storage root). Paths the pipeline does not handle yield a Result with
// Skipped set and no error.
func (p *Processor) ProcessFile(ctx context.Context, rel string) (*Result, error) {
	rel = path.Clean(filepath.ToSlash(rel))
	res := &Result{Path: rel, Title: parser.Title(rel)}
	if !p.Accepts(rel) {
		res.Skipped = true
		return res, nil
	}

	data, err := p.store.Read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("autotag: %s: %w", rel, apperr.ErrNotFound)
		}
		return res, err
	}
	return p.process(ctx, res, data)
}

// ProcessData runs the pipeline for content read elsewhere, e.g. a file
// outside the root. name supplies the title and the index path; tag
// documents and snapshots are still written below the root.
func (p *Processor) ProcessData(ctx context.Context, name string, data []byte) (*Result, error) {
	name = path.Clean(filepath.ToSlash(name))
	res := &Result{Path: name, Title: parser.Title(name)}
	if path.Ext(name) != docExt {
		res.Skipped = true
		return res, nil
	}
	return p.process(ctx, res, data)
}

func (p *Processor) process(ctx context.Context, res *Result, data []byte) (*Result, error) {
	rel := res.Path
	sum := checksum.Keyed(p.fingerprint(), data)
	if p.index != nil && !p.force {
		prev, err := p.index.ChecksumByPath(rel)
		if err != nil {
			return res, err
		}
		if prev == sum {
			res.Unchanged = true
			p.logger.Debug("document unchanged", slog.String("path", rel))
			return res, nil
		}
	}

	doc, err := parser.Parse(data)
	if err != nil {
		return res, fmt.Errorf("autotag: parse %s: %w", rel, err)
	}
	res.Keywords = p.rake.Extract(doc.Text, p.params.WithTopN(p.sizing.TopN(doc.Words)))
	tags := extract.Tags(res.Keywords)

	rep, err := p.syncer.Sync(ctx, res.Title, tags)
	res.Report = rep
	if err != nil {
		return res, err
	}

	if p.index != nil {
		row := index.DocumentRow{Title: res.Title, Path: rel, Checksum: sum, Tags: rep.Tags}
		if err := p.index.UpsertDocument(row); err != nil {
			return res, &OpError{Title: res.Title, Op: OpIndex, Err: err}
		}
	}

	p.logger.Info("document processed",
		slog.String("path", rel),
		slog.String("title", res.Title),
		slog.Int("tags", len(rep.Tags)),
		slog.Int("changes", len(rep.Changes)))
	p.syncer.publish(models.Event{Kind: models.EventDocumentProcessed, Title: res.Title, Path: rel})
	return res, nil
}

// Forget drops the backlinks and snapshot of the document at rel, used once
// the file is gone. Tags belong to the title, so when another document with
// the same title still exists (a move between directories) that document is
// processed instead and nothing is dropped.
func (p *Processor) Forget(ctx context.Context, rel string) (*Report, error) {
	rel = path.Clean(filepath.ToSlash(rel))
	if !p.Accepts(rel) {
		return nil, nil
	}
	title := parser.Title(rel)

	twin, err := p.namesake(rel, title)
	if err != nil {
		return nil, err
	}
	if twin != "" {
		p.logger.Info("document moved",
			slog.String("from", rel),
			slog.String("to", twin),
			slog.String("title", title))
		res, err := p.ProcessFile(ctx, twin)
		if res == nil {
			return nil, err
		}
		return res.Report, err
	}

	rep, err := p.syncer.Forget(ctx, title)
	if err != nil {
		return rep, err
	}
	if p.index != nil {
		if err := p.index.DeleteDocument(title); err != nil {
			return rep, &OpError{Title: title, Op: OpIndex, Err: err}
		}
	}
	return rep, nil
}

// namesake returns another existing document titled title, or "".
func (p *Processor) namesake(rel, title string) (string, error) {
	docs, err := p.Documents()
	if err != nil {
		return "", err
	}
	for _, doc := range docs {
		if doc != rel && parser.Title(doc) == title {
			return doc, nil
		}
	}
	return "", nil
}

// Documents lists every document below the root the pipeline handles,
// sorted by path.
func (p *Processor) Documents() ([]string, error) {
	metas, err := p.store.List("", docExt)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, m := range metas {
		if p.Accepts(m.Path) {
			paths = append(paths, m.Path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Scan processes every document in turn and stops at the first failure.
func (p *Processor) Scan(ctx context.Context) ([]*Result, error) {
	paths, err := p.Documents()
	if err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.ProcessFile(ctx, rel)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Reconcile repairs tag documents from the snapshots and rebuilds the index.
func (p *Processor) Reconcile(ctx context.Context) ([]*Report, error) {
	reports, err := p.syncer.Reconcile(ctx)
	if err != nil {
		return reports, err
	}
	if p.index != nil {
		if err := index.Rebuild(p.index, p.syncer.Snapshots(), p.logger); err != nil {
			return reports, fmt.Errorf("autotag: rebuild index: %w", err)
		}
	}
	return reports, nil
}
