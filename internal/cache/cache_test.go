package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func exerciseThrottle(t *testing.T, th Throttle) {
	ctx := context.Background()

	left, err := th.Blocked(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, left)

	require.NoError(t, th.Fail(ctx, "a@example.com"))
	require.NoError(t, th.Fail(ctx, "a@example.com"))
	left, err = th.Blocked(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, left, "below the limit")

	// a success clears the counter
	require.NoError(t, th.Reset(ctx, "a@example.com"))
	require.NoError(t, th.Fail(ctx, "a@example.com"))
	require.NoError(t, th.Fail(ctx, "a@example.com"))
	left, err = th.Blocked(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, left)

	require.NoError(t, th.Fail(ctx, "a@example.com"))
	left, err = th.Blocked(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Greater(t, left, time.Duration(0))

	left, err = th.Blocked(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Zero(t, left, "keys are independent")
}

func TestMemoryThrottle(t *testing.T) {
	exerciseThrottle(t, NewMemoryThrottle(3, time.Minute))
}

func TestRedisThrottle(t *testing.T) {
	_, client := newRedis(t)
	exerciseThrottle(t, NewRedisThrottle(client, "login", 3, time.Minute))
}

func TestRedisThrottle_CooldownExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	th := NewRedisThrottle(client, "login", 1, time.Minute)

	require.NoError(t, th.Fail(ctx, "k"))
	left, err := th.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, left)

	mr.FastForward(2 * time.Minute)
	left, err = th.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestMemoryThrottle_CooldownExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	th := NewMemoryThrottle(1, time.Minute)
	th.now = func() time.Time { return now }

	require.NoError(t, th.Fail(ctx, "k"))
	left, err := th.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, left)

	now = now.Add(61 * time.Second)
	left, err = th.Blocked(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, left)
}

func exerciseLocker(t *testing.T, l Locker) {
	ctx := context.Background()

	release, err := l.Acquire(ctx, "checkout:s1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "checkout:s1", time.Minute)
	require.ErrorIs(t, err, ErrLocked)

	other, err := l.Acquire(ctx, "checkout:s2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.Acquire(ctx, "checkout:s1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestMemoryLocker(t *testing.T) {
	exerciseLocker(t, NewMemoryLocker())
}

func TestRedisLocker(t *testing.T) {
	_, client := newRedis(t)
	exerciseLocker(t, NewRedisLocker(client))
}

func TestRedisLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	l := NewRedisLocker(client)

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the expired holder must not drop the new lock
	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, "k", time.Minute)
	require.ErrorIs(t, err, ErrLocked)
	require.NoError(t, fresh(ctx))
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }

	_, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	now = now.Add(2 * time.Second)
	release, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
