package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/testutil"
)

const note = "Rust compiler errors.\n"

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// startWatcher runs Watch on a fresh vault and returns the vault dir, the
// processor and the event recorder.
func startWatcher(t *testing.T, setup func(dir string, p *autotag.Processor)) (string, *autotag.Processor, *recorder) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	p := testutil.TestProcessor(t, store)
	if setup != nil {
		setup(dir, p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, dir, p, testutil.Logger(), Config{
			Debounce: 50 * time.Millisecond,
			SkipDirs: []string{testutil.KeywordsDir},
			OnEvent:  rec.record,
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
	return dir, p, rec
}

func TestWatcher_NewFileProcessed(t *testing.T) {
	dir, _, rec := startWatcher(t, nil)

	testutil.WriteFile(t, dir, "Alpha.md", note)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return testutil.Exists(dir, "keywords/.meta/Alpha.kwds")
	}, "new document not processed by watcher")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KindProcessed + ":Alpha.md")
	}, "expected processed:Alpha.md callback")

	if rec.has(KindProcessed + ":keywords/rust-compiler-errors.md") {
		t.Error("tag document was handled as a document")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, _, _ := startWatcher(t, nil)

	if err := os.MkdirAll(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dir, "subdir/Deep.md", note)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return testutil.Exists(dir, "keywords/.meta/Deep.kwds")
	}, "document in new subdir not processed by watcher")
}

func TestWatcher_DeleteForgets(t *testing.T) {
	dir, _, rec := startWatcher(t, func(dir string, p *autotag.Processor) {
		testutil.WriteFile(t, dir, "Gone.md", note)
		if _, err := p.ProcessFile(context.Background(), "Gone.md"); err != nil {
			t.Fatal(err)
		}
	})
	if !testutil.Exists(dir, "keywords/rust-compiler-errors.md") {
		t.Fatal("precondition: tag document should exist")
	}

	if err := os.Remove(filepath.Join(dir, "Gone.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !testutil.Exists(dir, "keywords/.meta/Gone.kwds") &&
			!testutil.Exists(dir, "keywords/rust-compiler-errors.md")
	}, "deleted document still tagged")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KindForgotten + ":Gone.md")
	}, "expected forgotten:Gone.md callback")
}

func TestWatcher_RenameMovesBacklinks(t *testing.T) {
	dir, p, _ := startWatcher(t, func(dir string, p *autotag.Processor) {
		testutil.WriteFile(t, dir, "Old.md", note)
		if _, err := p.ProcessFile(context.Background(), "Old.md"); err != nil {
			t.Fatal(err)
		}
	})

	if err := os.Rename(filepath.Join(dir, "Old.md"), filepath.Join(dir, "Renamed.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		links, err := p.Syncer().Tags().Backlinks("rust-compiler-errors")
		return err == nil && len(links) == 1 && links[0] == "Renamed"
	}, "rename did not move the backlink to the new title")
}

func TestFlush_MoveBetweenDirsKeepsTags(t *testing.T) {
	dir, store := testutil.TestVault(t)
	p := testutil.TestProcessor(t, store)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "b/Note.md", note)
	if _, err := p.ProcessFile(ctx, "b/Note.md"); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(dir, "b", "Note.md"), filepath.Join(dir, "a", "Note.md")); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	flush(ctx, dir, []string{"a/Note.md", "b/Note.md"}, p, testutil.Logger(), rec.record)

	tags, err := p.Syncer().Snapshots().Load("Note")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0] != "rust-compiler-errors" {
		t.Errorf("snapshot = %v, want [rust-compiler-errors]", tags)
	}
	links, err := p.Syncer().Tags().Backlinks("rust-compiler-errors")
	if err != nil || len(links) != 1 || links[0] != "Note" {
		t.Errorf("backlinks = %v, %v", links, err)
	}
	if rec.has(KindFailed + ":a/Note.md") || rec.has(KindFailed + ":b/Note.md") {
		t.Errorf("unexpected failure events: %v", rec.events)
	}
	if len(rec.events) != 2 || rec.events[0] != KindForgotten+":b/Note.md" {
		t.Errorf("events = %v, want the gone path first", rec.events)
	}
}
