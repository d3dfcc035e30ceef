package cache

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	count   int
	expires time.Time
}

type MemoryThrottle struct {
	mu          sync.Mutex
	now         func() time.Time
	maxAttempts int
	cooldown    time.Duration
	attempts    map[string]attempt
	blocked     map[string]time.Time
}

func NewMemoryThrottle(maxAttempts int, cooldown time.Duration) *MemoryThrottle {
	return &MemoryThrottle{
		now:         time.Now,
		maxAttempts: maxAttempts,
		cooldown:    cooldown,
		attempts:    make(map[string]attempt),
		blocked:     make(map[string]time.Time),
	}
}

var _ Throttle = (*MemoryThrottle)(nil)

func (t *MemoryThrottle) Blocked(_ context.Context, key string) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.blocked[key]
	if !ok {
		return 0, nil
	}
	left := until.Sub(t.now())
	if left <= 0 {
		delete(t.blocked, key)
		return 0, nil
	}
	return left, nil
}

func (t *MemoryThrottle) Fail(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	a := t.attempts[key]
	if now.After(a.expires) {
		a = attempt{}
	}
	a.count++
	a.expires = now.Add(t.cooldown)
	if a.count >= t.maxAttempts {
		t.blocked[key] = now.Add(t.cooldown)
		delete(t.attempts, key)
		return nil
	}
	t.attempts[key] = a
	return nil
}

func (t *MemoryThrottle) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, key)
	return nil
}

type MemoryLocker struct {
	mu    sync.Mutex
	now   func() time.Time
	seq   uint64
	locks map[string]lease
}

type lease struct {
	id      uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{now: time.Now, locks: make(map[string]lease)}
}

var _ Locker = (*MemoryLocker)(nil)

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if cur, ok := l.locks[key]; ok && now.Before(cur.expires) {
		return nil, ErrLocked
	}
	l.seq++
	mine := lease{id: l.seq, expires: now.Add(ttl)}
	l.locks[key] = mine
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.locks[key]; ok && cur.id == mine.id {
			delete(l.locks, key)
		}
		return nil
	}, nil
}
