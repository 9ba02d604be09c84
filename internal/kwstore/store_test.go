package kwstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/autotag/internal/storage"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	fs, err := storage.NewFS(root)
	require.NoError(t, err)
	return New(fs, "keywords/.meta"), root
}

func TestLoad_FirstRunIsEmpty(t *testing.T) {
	s, _ := testStore(t)
	tags, err := s.Load("Alpha")
	require.NoError(t, err)
	assert.Nil(t, tags)
}

func TestSaveAndLoad(t *testing.T) {
	s, root := testStore(t)
	require.NoError(t, s.Save("Alpha", []string{"machine-learning", "rust"}))

	data, err := os.ReadFile(filepath.Join(root, "keywords", ".meta", "Alpha.kwds"))
	require.NoError(t, err)
	assert.Equal(t, "machine-learning\nrust", string(data))

	tags, err := s.Load("Alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"machine-learning", "rust"}, tags)
}

func TestSave_OverwritesWholesale(t *testing.T) {
	s, _ := testStore(t)
	require.NoError(t, s.Save("Alpha", []string{"machine-learning", "rust"}))
	require.NoError(t, s.Save("Alpha", []string{"rust", "cli-tools"}))

	tags, err := s.Load("Alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "cli-tools"}, tags)
}

func TestSave_EmptySet(t *testing.T) {
	s, _ := testStore(t)
	require.NoError(t, s.Save("Alpha", []string{"rust"}))
	require.NoError(t, s.Save("Alpha", nil))

	tags, err := s.Load("Alpha")
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestLoad_ToleratesBlankLinesAndDuplicates(t *testing.T) {
	s, root := testStore(t)
	dir := filepath.Join(root, "keywords", ".meta")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Alpha.kwds"), []byte("rust\r\n\nrust\ngo-lang\n"), 0o644))

	tags, err := s.Load("Alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"rust", "go-lang"}, tags)
}

func TestSnapshotsAreIndependent(t *testing.T) {
	s, _ := testStore(t)
	require.NoError(t, s.Save("Alpha", []string{"rust"}))
	require.NoError(t, s.Save("Beta", []string{"go"}))

	alpha, _ := s.Load("Alpha")
	beta, _ := s.Load("Beta")
	assert.Equal(t, []string{"rust"}, alpha)
	assert.Equal(t, []string{"go"}, beta)
}

func TestTitlesAndDelete(t *testing.T) {
	s, _ := testStore(t)
	require.NoError(t, s.Save("Beta", []string{"go"}))
	require.NoError(t, s.Save("Alpha", []string{"rust"}))

	titles, err := s.Titles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, titles)

	require.NoError(t, s.Delete("Alpha"))
	require.NoError(t, s.Delete("Alpha"))

	titles, err = s.Titles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, titles)
}
