package tagfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/storage"
)

func testManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	require.NoError(t, err)
	return NewManager(store, "keywords"), root
}

func readTag(t *testing.T, root, tag string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "keywords", tag+".md"))
	require.NoError(t, err)
	return string(data)
}

func tagExists(root, tag string) bool {
	_, err := os.Stat(filepath.Join(root, "keywords", tag+".md"))
	return err == nil
}

func TestAddBacklink_CreatesDocument(t *testing.T) {
	m, root := testManager(t)

	added, err := m.AddBacklink("rust", "Alpha")
	require.NoError(t, err)
	assert.True(t, added)

	want := "# Auto-tag: rust\n\n<!-- start auto-tags -->\n[[Alpha]]\n<!-- end auto-tags -->"
	assert.Equal(t, want, readTag(t, root, "rust"))
}

func TestAddBacklink_AppendsAboveEndMarker(t *testing.T) {
	m, root := testManager(t)
	_, err := m.AddBacklink("rust", "Alpha")
	require.NoError(t, err)
	_, err = m.AddBacklink("rust", "Beta")
	require.NoError(t, err)

	want := "# Auto-tag: rust\n\n<!-- start auto-tags -->\n[[Alpha]]\n[[Beta]]\n<!-- end auto-tags -->"
	assert.Equal(t, want, readTag(t, root, "rust"))
}

func TestAddBacklink_Idempotent(t *testing.T) {
	m, root := testManager(t)
	_, err := m.AddBacklink("rust", "Alpha")
	require.NoError(t, err)
	before := readTag(t, root, "rust")

	added, err := m.AddBacklink("rust", "Alpha")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, before, readTag(t, root, "rust"))
}

func TestAddBacklink_PreservesHandEditedContent(t *testing.T) {
	m, root := testManager(t)
	original := "# Auto-tag: rust\n\nMy notes about rust.\n\n<!-- start auto-tags -->\n[[Alpha]]\n<!-- end auto-tags -->\n\nSee also [[Cargo]].\n"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "keywords"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keywords", "rust.md"), []byte(original), 0o644))

	_, err := m.AddBacklink("rust", "Beta")
	require.NoError(t, err)

	want := "# Auto-tag: rust\n\nMy notes about rust.\n\n<!-- start auto-tags -->\n[[Alpha]]\n[[Beta]]\n<!-- end auto-tags -->\n\nSee also [[Cargo]].\n"
	assert.Equal(t, want, readTag(t, root, "rust"))
}

func TestAddBacklink_MalformedIsFatal(t *testing.T) {
	m, root := testManager(t)
	broken := "# Auto-tag: rust\n\n<!-- start auto-tags -->\n[[Alpha]]\n"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "keywords"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keywords", "rust.md"), []byte(broken), 0o644))

	_, err := m.AddBacklink("rust", "Beta")
	assert.ErrorIs(t, err, apperr.ErrMalformed)
	assert.Equal(t, broken, readTag(t, root, "rust"), "malformed file must be left untouched")
}

func TestAddBacklink_InvalidTag(t *testing.T) {
	m, _ := testManager(t)
	for _, tag := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := m.AddBacklink(tag, "Alpha")
		assert.ErrorIs(t, err, apperr.ErrInvalidTag, "tag %q", tag)
	}
}

func TestRemoveBacklink_DeletesOrphan(t *testing.T) {
	m, root := testManager(t)
	_, err := m.AddBacklink("machine-learning", "Alpha")
	require.NoError(t, err)

	deleted, err := m.RemoveBacklink("machine-learning", "Alpha")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, tagExists(root, "machine-learning"))
}

func TestRemoveBacklink_KeepsOtherLinks(t *testing.T) {
	m, root := testManager(t)
	_, _ = m.AddBacklink("rust", "Alpha")
	_, _ = m.AddBacklink("rust", "Beta")

	deleted, err := m.RemoveBacklink("rust", "Alpha")
	require.NoError(t, err)
	assert.False(t, deleted)

	want := "# Auto-tag: rust\n\n<!-- start auto-tags -->\n[[Beta]]\n<!-- end auto-tags -->"
	assert.Equal(t, want, readTag(t, root, "rust"))
}

func TestRemoveBacklink_MissingDocumentIsNoop(t *testing.T) {
	m, _ := testManager(t)
	deleted, err := m.RemoveBacklink("rust", "Alpha")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRemoveBacklink_AbsentTitleLeavesFile(t *testing.T) {
	m, root := testManager(t)
	_, _ = m.AddBacklink("rust", "Beta")
	before := readTag(t, root, "rust")

	deleted, err := m.RemoveBacklink("rust", "Alpha")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, before, readTag(t, root, "rust"))
}

func TestBacklinksAndTags(t *testing.T) {
	m, _ := testManager(t)
	_, _ = m.AddBacklink("rust", "Alpha")
	_, _ = m.AddBacklink("rust", "Beta")
	_, _ = m.AddBacklink("cli-tools", "Alpha")

	links, err := m.Backlinks("rust")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, links)

	tags, err := m.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"cli-tools", "rust"}, tags)

	_, err = m.Backlinks("missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
