package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLockExclusive(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()
	locker := NewRedisLocker(client, time.Second)

	first := locker.NewLock("user:1")
	second := locker.NewLock("user:1")

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a non-owner release leaves the lock in place
	require.NoError(t, second.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockExpires(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "user:2", time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(lock.Key()))

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists(lock.Key()))

	// an expired lock can be taken by a new holder
	ok, err = NewRedisLock(client, "user:2", time.Second).Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
