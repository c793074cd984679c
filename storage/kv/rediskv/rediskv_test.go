package rediskv

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolportal/testutil"
)

// Needs a server: REDIS_ADDR=localhost:6379 go test ./storage/kv/rediskv
func TestBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"
	b, err := Open(ctx, &redis.Options{Addr: addr}, prefix)
	require.NoError(t, err)
	t.Cleanup(func() {
		keys, _ := b.client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			b.client.Del(ctx, keys...)
		}
		_ = b.Close()
	})

	testutil.TestBackend(t, b)
}
