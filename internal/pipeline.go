package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/index"
	"github.com/starford/autotag/internal/kwstore"
	"github.com/starford/autotag/internal/storage"
	"github.com/starford/autotag/internal/tagfile"
)

// Pipeline is the set of wired components every command works with.
type Pipeline struct {
	Store     *storage.FS
	Index     *index.DB // nil when the index is disabled
	Syncer    *autotag.Syncer
	Processor *autotag.Processor
	Catalog   *autotag.Catalog
}

// NewPipeline opens the vault and, when configured, the SQLite index. The
// vault directory must exist. Extra options are applied after the ones
// derived from cfg.
func NewPipeline(cfg *Config, logger *slog.Logger, opts ...autotag.ProcessorOption) (*Pipeline, error) {
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	p := &Pipeline{Store: store}
	if cfg.SQLite.Enabled() {
		db, err := index.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init index: %w", err)
		}
		p.Index = db
	}

	p.Syncer = autotag.NewSyncer(
		tagfile.NewManager(store, cfg.Vault.KeywordsDir),
		kwstore.New(store, cfg.Vault.MetaDir()),
		logger,
	)

	procOpts := []autotag.ProcessorOption{
		autotag.WithParams(cfg.Extractor.Params()),
		autotag.WithSizing(cfg.Extractor.Sizing()),
		autotag.WithIgnoreDirs(cfg.Vault.IgnoreDirs...),
	}
	// A nil *index.DB must not end up inside the TagIndex interface.
	var idx index.TagIndex
	if p.Index != nil {
		idx = p.Index
		procOpts = append(procOpts, autotag.WithIndex(p.Index))
	}
	p.Processor, err = autotag.NewProcessor(store, p.Syncer, cfg.Vault.KeywordsDir, logger, append(procOpts, opts...)...)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("init processor: %w", err)
	}
	p.Catalog = autotag.NewCatalog(p.Syncer, idx)
	return p, nil
}

// RebuildIndex refills the index from the keyword snapshots. It is a no-op
// without an index.
func (p *Pipeline) RebuildIndex(logger *slog.Logger) error {
	if p.Index == nil {
		return nil
	}
	return index.Rebuild(p.Index, p.Syncer.Snapshots(), logger)
}

// Rel converts a command line path to a path relative to the vault root.
// Relative paths that exist inside the vault win over the working directory.
func (p *Pipeline) Rel(file string) (string, error) {
	if !filepath.IsAbs(file) {
		if _, err := os.Stat(filepath.Join(p.Store.Root(), file)); err == nil {
			return filepath.ToSlash(filepath.Clean(file)), nil
		}
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(p.Store.Root(), abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w %s", file, errOutsideVault, p.Store.Root())
	}
	return filepath.ToSlash(rel), nil
}

var errOutsideVault = errors.New("outside the vault")

// ProcessPath runs the pipeline for a command line path. A file outside the
// vault is read directly; its tags are still written inside the vault.
func (p *Pipeline) ProcessPath(ctx context.Context, file string) (*autotag.Result, error) {
	rel, err := p.Rel(file)
	if err == nil {
		return p.Processor.ProcessFile(ctx, rel)
	}
	if !errors.Is(err, errOutsideVault) {
		return nil, err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", file, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p.Processor.ProcessData(ctx, abs, data)
}

// Close releases the index.
func (p *Pipeline) Close() error {
	if p.Index == nil {
		return nil
	}
	return p.Index.Close()
}
