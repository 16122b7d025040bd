package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestMutexAcquireRelease(t *testing.T) {
	client, mr := lockClient(t)
	ctx := context.Background()

	mu := NewMutex(client, "test:lock", time.Minute)
	require.NoError(t, mu.Acquire(ctx))
	assert.True(t, mr.Exists("test:lock"))

	require.NoError(t, mu.Release(ctx))
	assert.False(t, mr.Exists("test:lock"))
}

func TestMutexTryAcquireHeld(t *testing.T) {
	client, _ := lockClient(t)
	ctx := context.Background()

	first := NewMutex(client, "test:lock", time.Minute)
	require.NoError(t, first.TryAcquire(ctx))

	second := NewMutex(client, "test:lock", time.Minute)
	err := second.TryAcquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockHeld))

	require.NoError(t, first.Release(ctx))
	require.NoError(t, second.TryAcquire(ctx))
}

func TestMutexAcquireWaitsForRelease(t *testing.T) {
	client, _ := lockClient(t)
	ctx := context.Background()

	first := NewMutex(client, "test:lock", time.Minute)
	require.NoError(t, first.Acquire(ctx))

	done := make(chan error, 1)
	second := NewMutex(client, "test:lock", time.Minute)
	go func() {
		done <- second.Acquire(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, first.Release(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire never completed")
	}
}

func TestMutexReleaseDoesNotStealReacquiredLock(t *testing.T) {
	client, mr := lockClient(t)
	ctx := context.Background()

	first := NewMutex(client, "test:lock", 50*time.Millisecond)
	require.NoError(t, first.Acquire(ctx))

	// The lock expires and another holder takes it.
	mr.FastForward(time.Second)
	second := NewMutex(client, "test:lock", time.Minute)
	require.NoError(t, second.TryAcquire(ctx))

	// The stale holder's release must not remove the new holder's lock.
	require.NoError(t, first.Release(ctx))
	assert.True(t, mr.Exists("test:lock"))
}

func TestMutexAcquireCancelled(t *testing.T) {
	client, _ := lockClient(t)

	first := NewMutex(client, "test:lock", time.Minute)
	require.NoError(t, first.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	second := NewMutex(client, "test:lock", time.Minute)
	err := second.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
