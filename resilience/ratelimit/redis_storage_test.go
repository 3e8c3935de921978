//go:build unit

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisQuotaStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisQuotaStore(client)
	require.NotNil(t, store)

	return store, mr
}

func TestNewRedisQuotaStore_NilClient(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewRedisQuotaStore(nil))
}

func TestRedisQuotaStore_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	for i := 0; i < 3; i++ {
		decision, err := store.Allow(context.Background(), "/api/users", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 2-i, decision.Remaining)
	}
}

func TestRedisQuotaStore_DeniesOverLimit(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	for i := 0; i < 2; i++ {
		_, err := store.Allow(context.Background(), "/api/users", 2, time.Minute)
		require.NoError(t, err)
	}

	decision, err := store.Allow(context.Background(), "/api/users", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Zero(t, decision.Remaining)
}

func TestRedisQuotaStore_WindowExpiry(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)

	_, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)

	denied, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	mr.FastForward(time.Minute)

	decision, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisQuotaStore_ScopesAreIndependent(t *testing.T) {
	t.Parallel()

	store, _ := newRedisStore(t)

	_, err := store.Allow(context.Background(), "/a", 1, time.Minute)
	require.NoError(t, err)

	denied, err := store.Allow(context.Background(), "/a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	other, err := store.Allow(context.Background(), "/b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRedisQuotaStore_Reset(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)

	_, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Reset(context.Background()))
	assert.False(t, mr.Exists("ratelimit:/api/users"))

	decision, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisQuotaStore_ResetLeavesForeignKeys(t *testing.T) {
	t.Parallel()

	store, mr := newRedisStore(t)

	_, err := store.Allow(context.Background(), "/api/users", 1, time.Minute)
	require.NoError(t, err)

	require.NoError(t, mr.Set("session:abc", "1"))

	require.NoError(t, store.Reset(context.Background()))
	assert.True(t, mr.Exists("session:abc"))
}
