package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/core"
	"github.com/trezcool/schoolportal/storage/kv"
	"github.com/trezcool/schoolportal/storage/kv/dummykv"
	"github.com/trezcool/schoolportal/storage/kv/filekv"
	"github.com/trezcool/schoolportal/storage/kv/sqlkv"
	"github.com/trezcool/schoolportal/testutil"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	conf.Storage.Dir = t.TempDir()
	conf.SQLite.DSN = filepath.Join(t.TempDir(), "kv.db")

	tests := []struct {
		backend string
		want    interface{}
	}{
		{backend: core.BackendMemory, want: &dummykv.Backend{}},
		{backend: core.BackendFile, want: &filekv.Backend{}},
		{backend: core.BackendSQLite, want: &sqlkv.Backend{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			conf.Storage.Backend = tt.backend
			b, err := OpenBackend(ctx, conf)
			require.NoError(t, err)
			defer func() { _ = b.Close() }()
			assert.IsType(t, tt.want, b)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		conf.Storage.Backend = "floppy"
		_, err := OpenBackend(ctx, conf)
		assert.EqualError(t, err, `unknown storage backend "floppy"`)
	})
}

func TestOpenKV(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Storage.Backend = core.BackendFile
	conf.Storage.Dir = t.TempDir()

	a, err := OpenKV(context.Background(), conf, testutil.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	a.Save("schoolportal_news", []int{1, 2})
	assert.Equal(t, []int{1, 2}, kv.Load(a, "schoolportal_news", []int(nil)))
}
