package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// --- Throttle ---

type RedisThrottle struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	cooldown    time.Duration
}

// NewRedisThrottle stores counters under "<prefix>_attempts:<key>" and
// cooldown markers under "<prefix>_cooldown:<key>".
func NewRedisThrottle(client *redis.Client, prefix string, maxAttempts int, cooldown time.Duration) *RedisThrottle {
	return &RedisThrottle{client: client, prefix: prefix, maxAttempts: maxAttempts, cooldown: cooldown}
}

var _ Throttle = (*RedisThrottle)(nil)

func (t *RedisThrottle) attemptsKey(key string) string { return t.prefix + "_attempts:" + key }
func (t *RedisThrottle) cooldownKey(key string) string { return t.prefix + "_cooldown:" + key }

func (t *RedisThrottle) Blocked(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := t.client.TTL(ctx, t.cooldownKey(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("throttle ttl: %w", err)
	}
	// -2: no key, -1: key without expiry
	switch {
	case ttl == -1:
		return t.cooldown, nil
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}

func (t *RedisThrottle) Fail(ctx context.Context, key string) error {
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, t.attemptsKey(key))
	pipe.Expire(ctx, t.attemptsKey(key), t.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle incr: %w", err)
	}
	if incr.Val() < int64(t.maxAttempts) {
		return nil
	}

	pipe = t.client.TxPipeline()
	pipe.Set(ctx, t.cooldownKey(key), "1", t.cooldown)
	pipe.Del(ctx, t.attemptsKey(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle cooldown: %w", err)
	}
	return nil
}

func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.attemptsKey(key)).Err()
}

// --- Locker ---

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisLocker struct{ client *redis.Client }

func NewRedisLocker(client *redis.Client) *RedisLocker { return &RedisLocker{client: client} }

var _ Locker = (*RedisLocker)(nil)

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{"lock:" + key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release %s: %w", key, err)
		}
		return nil
	}, nil
}
