// Package kv persists JSON values by key over a pluggable Backend.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolportal/core"
)

// ErrNotFound is returned by a Backend when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Entry describes a stored value.
type Entry struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backend stores raw values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// Adapter encodes values as JSON and never fails its callers: read problems make Decode report false,
// write problems are logged and dropped.
type Adapter struct {
	backend Backend
	logger  core.Logger
	timeout time.Duration
}

func NewAdapter(backend Backend, logger core.Logger, timeout time.Duration) (*Adapter, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(backend, "backend"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "checking adapter dependencies")
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Adapter{backend: backend, logger: logger, timeout: timeout}, nil
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// Decode reads key into dst. It reports false when the key is missing, unreadable or not valid JSON for dst.
func (a *Adapter) Decode(key string, dst interface{}) bool {
	ctx, cancel := a.context()
	defer cancel()

	raw, err := a.backend.Get(ctx, key)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			a.logger.Warn(fmt.Sprintf("kv: loading %q", key), errors.Wrap(err, "reading value"))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		a.logger.Warn(fmt.Sprintf("kv: loading %q", key), errors.Wrap(err, "decoding value"))
		return false
	}
	return true
}

// Save writes value under key. Failures are logged, not retried.
func (a *Adapter) Save(key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("kv: saving %q", key), errors.Wrap(err, "encoding value"))
		return
	}

	ctx, cancel := a.context()
	defer cancel()
	if err := a.backend.Set(ctx, key, raw); err != nil {
		a.logger.Warn(fmt.Sprintf("kv: saving %q", key), errors.Wrap(err, "writing value"))
	}
}

// Entries lists the stored values.
func (a *Adapter) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := a.backend.List(ctx)
	return entries, errors.Wrap(err, "listing entries")
}

func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Load returns the value stored under key, or fallback when Decode fails.
func Load[T any](a *Adapter, key string, fallback T) T {
	var v T
	if a.Decode(key, &v) {
		return v
	}
	return fallback
}
