package autotag_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/autotag/internal/apperr"
	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/index"
	"github.com/starford/autotag/internal/testutil"
)

func TestCatalog(t *testing.T) {
	for _, withIndex := range []bool{false, true} {
		name := "files"
		if withIndex {
			name = "index"
		}
		t.Run(name, func(t *testing.T) {
			_, store := testutil.TestVault(t)
			s := testutil.TestSyncer(t, store)
			ctx := context.Background()

			var idx index.TagIndex
			if withIndex {
				idx = testutil.TestDB(t)
			}
			sync := func(title string, tags ...string) {
				rep, err := s.Sync(ctx, title, tags)
				require.NoError(t, err)
				if idx != nil {
					require.NoError(t, idx.UpsertDocument(index.DocumentRow{Title: title, Tags: rep.Tags}))
				}
			}
			sync("Alpha", "rust", "go")
			sync("Beta", "rust")

			c := autotag.NewCatalog(s, idx)

			counts, err := c.TagCounts()
			require.NoError(t, err)
			assert.Equal(t, []index.TagCount{{Tag: "rust", Count: 2}, {Tag: "go", Count: 1}}, counts)

			links, err := c.Backlinks("rust")
			require.NoError(t, err)
			assert.Equal(t, []string{"Alpha", "Beta"}, links)

			_, err = c.Backlinks("missing")
			assert.ErrorIs(t, err, apperr.ErrNotFound)

			tags, err := c.DocumentTags("Alpha")
			require.NoError(t, err)
			assert.Equal(t, []string{"rust", "go"}, tags)

			_, err = c.DocumentTags("Gamma")
			assert.ErrorIs(t, err, apperr.ErrNotFound)
		})
	}
}
