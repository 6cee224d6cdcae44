package auth

import (
	"strings"
	"sync"
	"time"
)

// Guard counts failed login attempts per (email, origin) pair and locks
// the pair out once a threshold is reached. Implementations must be safe
// for concurrent use.
type Guard interface {
	// IsLocked returns the lock expiry if the pair is currently locked.
	IsLocked(email, origin string) (time.Time, bool)
	// RecordFailure increments the failure count and starts a lock
	// window once the threshold is reached.
	RecordFailure(email, origin string)
	// Clear removes the entry, called after a successful login.
	Clear(email, origin string)
}

func lockoutKey(email, origin string) string {
	return strings.ToLower(email) + "|" + origin
}

type lockoutEntry struct {
	count     int
	lockUntil time.Time
}

// MemoryGuard is a process-local Guard. Lockout state is lost on restart
// and not shared across instances; use RedisGuard for that.
type MemoryGuard struct {
	mu        sync.Mutex
	entries   map[string]lockoutEntry
	threshold int
	duration  time.Duration

	now func() time.Time
}

func NewMemoryGuard(threshold int, duration time.Duration) *MemoryGuard {
	return &MemoryGuard{
		entries:   make(map[string]lockoutEntry),
		threshold: threshold,
		duration:  duration,
		now:       time.Now,
	}
}

func (g *MemoryGuard) IsLocked(email, origin string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[lockoutKey(email, origin)]
	if !ok {
		return time.Time{}, false
	}
	if entry.lockUntil.After(g.now()) {
		return entry.lockUntil, true
	}
	// An expired lock keeps its count; the next failure re-evaluates
	// the threshold and recomputes the window.
	return time.Time{}, false
}

func (g *MemoryGuard) RecordFailure(email, origin string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := lockoutKey(email, origin)
	entry := g.entries[key]
	entry.count++
	if entry.count >= g.threshold {
		entry.lockUntil = g.now().Add(g.duration)
	}
	g.entries[key] = entry
}

func (g *MemoryGuard) Clear(email, origin string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, lockoutKey(email, origin))
}
