// Package filekv is a kv.Backend keeping one JSON file per key in a directory.
package filekv

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/storage/kv"
)

const ext = ".json"

// ErrQuotaExceeded is returned by Set for values larger than the quota.
var ErrQuotaExceeded = errors.New("filekv: quota exceeded")

type Backend struct {
	mu    sync.RWMutex
	dir   string
	quota int64
}

var _ kv.Backend = (*Backend)(nil)

// Open creates dir if needed. quota caps the size of one value; 0 disables it.
func Open(dir string, quota int64) (*Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &Backend{dir: dir, quota: quota}, nil
}

// keys may contain path separators and colons, so they are escaped into file names.
func (b *Backend) path(key string) string {
	return filepath.Join(b.dir, url.QueryEscape(key)+ext)
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, kv.ErrNotFound
	}
	return raw, errors.Wrap(err, "reading file")
}

// Set replaces the file atomically through a rename.
func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	if b.quota > 0 && int64(len(value)) > b.quota {
		return ErrQuotaExceeded
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), b.path(key)), "renaming temp file")
}

func (b *Backend) List(context.Context) ([]kv.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	files, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading storage dir")
	}

	entries := make([]kv.Entry, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		info, err := f.Info()
		if err != nil {
			return nil, errors.Wrap(err, "reading file info")
		}
		entries = append(entries, kv.Entry{Key: key, Size: int(info.Size()), UpdatedAt: info.ModTime().UTC()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (b *Backend) Close() error { return nil }
