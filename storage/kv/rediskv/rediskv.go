// Package rediskv is a kv.Backend on Redis. Every key is a hash holding the value and its update time.
package rediskv

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/schoolportal/storage/kv"
)

const (
	valueField   = "value"
	updatedField = "updated_at"
	scanCount    = 100
)

type Backend struct {
	client *redis.Client
	prefix string
}

var _ kv.Backend = (*Backend)(nil)

// New uses client; prefix namespaces the keys.
func New(client *redis.Client, prefix string) *Backend {
	return &Backend{client: client, prefix: prefix}
}

// Open connects to the server at addr and checks it answers.
func Open(ctx context.Context, opts *redis.Options, prefix string) (*Backend, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(client, prefix), nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.client.HGet(ctx, b.prefix+key, valueField).Bytes()
	if err == redis.Nil {
		return nil, kv.ErrNotFound
	}
	return raw, errors.Wrap(err, "reading hash")
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	err := b.client.HSet(ctx, b.prefix+key,
		valueField, value,
		updatedField, time.Now().UTC().Unix(),
	).Err()
	return errors.Wrap(err, "writing hash")
}

func (b *Backend) List(ctx context.Context) ([]kv.Entry, error) {
	var entries []kv.Entry
	iter := b.client.Scan(ctx, 0, b.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := b.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, errors.Wrap(err, "reading hash")
		}
		value, ok := fields[valueField]
		if !ok {
			continue
		}
		e := kv.Entry{Key: strings.TrimPrefix(key, b.prefix), Size: len(value)}
		if sec, err := strconv.ParseInt(fields[updatedField], 10, 64); err == nil {
			e.UpdatedAt = time.Unix(sec, 0).UTC()
		}
		entries = append(entries, e)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning keys")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

