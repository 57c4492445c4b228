package lock

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/fraudreview/internal/lock/locktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNilLocker(t *testing.T) {
	var l *Locker
	_, _, err := l.TryLock(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, l.Release(context.Background(), "k", "t"))
	assert.Nil(t, NewLocker(nil))
}

func TestTryLockValidatesInput(t *testing.T) {
	l := NewLocker(unreachableClient(t))

	_, _, err := l.TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = l.TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestTryLockSurfacesRedisErrors(t *testing.T) {
	l := NewLocker(unreachableClient(t))

	_, ok, err := l.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDisabledOrderLockerGrantsEverything(t *testing.T) {
	ol := NewOrderLocker(nil, 0)
	assert.False(t, ol.Enabled())

	release, ok, err := ol.Acquire(context.Background(), "100000123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, release(context.Background()))
}

func TestOrderLockerSurfacesRedisErrors(t *testing.T) {
	ol := NewOrderLocker(NewLocker(unreachableClient(t)), time.Second)
	assert.True(t, ol.Enabled())

	release, ok, err := ol.Acquire(context.Background(), "100000123")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, release(context.Background()))
}

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "fraudreview:order:lock:100000123", OrderKey(" 100000123 "))
}

func TestTryLockAndRelease(t *testing.T) {
	client := locktest.NewClient()
	l := NewLocker(client)
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	held, _ := client.Holder("k")
	assert.Equal(t, token, held)

	_, ok, err = l.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "k", token))
	_, stillHeld := client.Holder("k")
	assert.False(t, stillHeld)

	_, ok, err = l.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseKeepsKeyOwnedByAnotherToken(t *testing.T) {
	client := locktest.NewClient()
	l := NewLocker(client)
	client.Hold("k", "someone-else")

	require.NoError(t, l.Release(context.Background(), "k", "stale-token"))

	held, ok := client.Holder("k")
	require.True(t, ok)
	assert.Equal(t, "someone-else", held)
}

func TestOrderLockerContention(t *testing.T) {
	client := locktest.NewClient()
	ol := NewOrderLocker(NewLocker(client), time.Second)
	ctx := context.Background()

	release, ok, err := ol.Acquire(ctx, "100000123")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = ol.Acquire(ctx, "100000123")
	require.NoError(t, err)
	assert.False(t, ok)

	other, ok, err := ol.Acquire(ctx, "100000124")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	_, held := client.Holder(OrderKey("100000123"))
	assert.False(t, held)

	again, ok, err := ol.Acquire(ctx, "100000123")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, again(ctx))
}
