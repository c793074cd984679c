package dummykv_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/schoolportal/storage/kv/dummykv"
	"github.com/trezcool/schoolportal/testutil"
)

func TestBackend(t *testing.T) {
	testutil.TestBackend(t, dummykv.New())
}

func TestBackend_FailWrites(t *testing.T) {
	b := dummykv.New()
	full := errors.New("full")
	b.FailWrites(full)
	assert.Equal(t, full, b.Set(context.Background(), "k", []byte("1")))

	b.Put("k", []byte("2"))
	got, err := b.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.Equal(t, "2", string(got))
}
