package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/testutil"
)

func TestBackend(t *testing.T) {
	b, err := Open(t.TempDir(), 0)
	require.NoError(t, err)
	testutil.TestBackend(t, b)
}

func TestBackend_persistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	ctx := context.Background()

	b, err := Open(dir, 0)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "schoolportal_polls", []byte(`[{"id":1}]`)))

	reopened, err := Open(dir, 0)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "schoolportal_polls")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestBackend_quota(t *testing.T) {
	b, err := Open(t.TempDir(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, b.Set(ctx, "k", []byte("1234")))
	assert.Equal(t, ErrQuotaExceeded, b.Set(ctx, "k", []byte("12345")))

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1234", string(got))
}

func TestBackend_ignoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	b, err := Open(dir, 0)
	require.NoError(t, err)
	entries, err := b.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
