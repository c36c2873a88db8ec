package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleTTL = 10 * time.Minute

type memoryEntry struct {
	limiter   *rate.Limiter
	perMinute int
	burst     int
	lastSeen  time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. It is used
// when no Redis is configured, so limits are per instance.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*memoryEntry
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (m *MemoryLimiter) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, perMinute, burst int) (Result, error) {
	if perMinute <= 0 {
		return Result{Allowed: true, Limit: burst, Remaining: burst}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	entry, ok := m.entries[key]
	if !ok || entry.perMinute != perMinute || entry.burst != burst {
		entry = &memoryEntry{
			limiter:   rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
			perMinute: perMinute,
			burst:     burst,
		}
		m.entries[key] = entry
	}
	entry.lastSeen = now

	if entry.limiter.AllowN(now, 1) {
		return Result{
			Allowed:   true,
			Limit:     perMinute,
			Remaining: int(math.Floor(entry.limiter.TokensAt(now))),
		}, nil
	}

	reservation := entry.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	return Result{
		Allowed:    false,
		Limit:      perMinute,
		Remaining:  0,
		RetryAfter: delay,
	}, nil
}

// Len reports how many keys are tracked.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < time.Minute {
		return
	}
	m.lastSweep = now
	for key, entry := range m.entries {
		if now.Sub(entry.lastSeen) > idleTTL {
			delete(m.entries, key)
		}
	}
}
