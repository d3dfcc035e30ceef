// Package cache holds short-lived guard state: failed-login throttling and the
// per-session checkout lock. Redis backs both in production; the memory
// variants serve single-process deployments and tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned by Locker.Acquire when the key is already held.
var ErrLocked = errors.New("lock already held")

// Throttle counts failures per key and blocks the key for a cooldown once the
// limit is reached.
type Throttle interface {
	// Blocked returns the remaining cooldown, zero when the key is free.
	Blocked(ctx context.Context, key string) (time.Duration, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Locker hands out exclusive, expiring locks.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}
