package testutil

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/storage/kv"
)

// TestBackend runs the behaviour every kv.Backend must have against an empty backend.
func TestBackend(t *testing.T, b kv.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := b.Get(ctx, "schoolportal_missing")
		assert.Equal(t, kv.ErrNotFound, errors.Cause(err))
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "schoolportal_news", []byte(`[{"id":1}]`)))
		got, err := b.Get(ctx, "schoolportal_news")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1}]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "schoolportal_news", []byte(`[]`)))
		got, err := b.Get(ctx, "schoolportal_news")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
	})

	t.Run("client keys", func(t *testing.T) {
		key := "schoolportal_voted_polls:3f0c/7a"
		require.NoError(t, b.Set(ctx, key, []byte(`[1,2]`)))
		got, err := b.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(got))
	})

	t.Run("list", func(t *testing.T) {
		entries, err := b.List(ctx)
		require.NoError(t, err)
		keys := make([]string, len(entries))
		for i, e := range entries {
			keys[i] = e.Key
		}
		assert.Equal(t, []string{"schoolportal_news", "schoolportal_voted_polls:3f0c/7a"}, keys)
		assert.Equal(t, 2, entries[0].Size)
		assert.False(t, entries[0].UpdatedAt.IsZero())
	})
}
