// Package dummykv is an in-memory kv.Backend. Writes can be made to fail to simulate a full or disabled store.
package dummykv

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trezcool/schoolportal/storage/kv"
)

type entry struct {
	value     []byte
	updatedAt time.Time
}

type Backend struct {
	mu       sync.RWMutex
	data     map[string]entry
	writeErr error
}

var _ kv.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{data: make(map[string]entry)}
}

// FailWrites makes every Set return err; nil restores normal writes.
func (b *Backend) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeErr = err
}

// Put stores value as is, bypassing FailWrites.
func (b *Backend) Put(key string, value []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = entry{value: append([]byte(nil), value...), updatedAt: time.Now().UTC()}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mu.RLock()
	err := b.writeErr
	b.mu.RUnlock()
	if err != nil {
		return err
	}
	b.Put(key, value)
	return nil
}

func (b *Backend) List(context.Context) ([]kv.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]kv.Entry, 0, len(b.data))
	for key, e := range b.data {
		entries = append(entries, kv.Entry{Key: key, Size: len(e.value), UpdatedAt: e.updatedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (b *Backend) Close() error { return nil }
