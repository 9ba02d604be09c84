// Package testutil provides shared test helpers for setting up vaults,
// databases and the sync pipeline.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/index"
	"github.com/starford/autotag/internal/kwstore"
	"github.com/starford/autotag/internal/storage"
	"github.com/starford/autotag/internal/tagfile"
)

// Vault layout used by the helpers.
const (
	KeywordsDir = "keywords"
	MetaDir     = "keywords/.meta"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "autotag-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestSyncer wires a Syncer over store using the default vault layout.
func TestSyncer(t *testing.T, store storage.Provider) *autotag.Syncer {
	t.Helper()
	return autotag.NewSyncer(
		tagfile.NewManager(store, KeywordsDir),
		kwstore.New(store, MetaDir),
		Logger(),
	)
}

// TestProcessor wires a Processor over store. Pass autotag.WithIndex to
// enable the index.
func TestProcessor(t *testing.T, store storage.Provider, opts ...autotag.ProcessorOption) *autotag.Processor {
	t.Helper()
	p, err := autotag.NewProcessor(store, TestSyncer(t, store), KeywordsDir, Logger(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// WriteFile writes content to rel inside the vault, creating directories.
func WriteFile(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	abs := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of rel inside the vault.
func ReadFile(t *testing.T, vaultDir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(vaultDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Exists reports whether rel exists inside the vault.
func Exists(vaultDir, rel string) bool {
	_, err := os.Stat(filepath.Join(vaultDir, filepath.FromSlash(rel)))
	return err == nil
}
