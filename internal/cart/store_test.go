package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	c, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Add("7", 2))
	require.NoError(t, s.Save(ctx, "sid-1", c))

	// other sessions never see this cart
	other, err := s.Load(ctx, "sid-2")
	require.NoError(t, err)
	assert.Equal(t, 0, other.Len())

	again, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	require.NoError(t, again.Add("7", 1))
	require.NoError(t, s.Save(ctx, "sid-1", again))

	final, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"7": 3}, final.Snapshot())

	require.NoError(t, s.Delete(ctx, "sid-1"))
	gone, err := s.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, 0, gone.Len())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t, time.Hour)
	exerciseStore(t, s)
}

func TestRedisStore_TTLAndEmptySave(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Minute)

	c := New()
	require.NoError(t, c.Add("1", 1))
	require.NoError(t, s.Save(ctx, "sid", c))
	assert.True(t, mr.Exists("cart:sid"))
	assert.Equal(t, time.Minute, mr.TTL("cart:sid"))

	mr.FastForward(2 * time.Minute)
	expired, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 0, expired.Len())

	require.NoError(t, s.Save(ctx, "sid", c))
	c.Clear()
	require.NoError(t, s.Save(ctx, "sid", c))
	assert.False(t, mr.Exists("cart:sid"))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set("cart:bad", "{not json"))
	_, err := s.Load(context.Background(), "bad")
	assert.Error(t, err)
}
