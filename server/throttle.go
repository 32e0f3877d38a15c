// server/throttle.go
package server

import (
	"sync"
	"time"
)

type throttleEntry struct {
	windowStart time.Time
	count       int
}

// Throttle is a fixed-window per-user counter for the webhook path.
type Throttle struct {
	window  time.Duration
	limit   int
	entries map[int64]*throttleEntry
	mutex   sync.Mutex
}

func NewThrottle(window time.Duration, limit int) *Throttle {
	return &Throttle{
		window:  window,
		limit:   limit,
		entries: make(map[int64]*throttleEntry),
	}
}

// Allow counts one request for the user and reports whether it fits
// the current window.
func (t *Throttle) Allow(userID int64) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := time.Now()
	entry, exists := t.entries[userID]
	if !exists || now.Sub(entry.windowStart) > t.window {
		if len(t.entries) > 10000 {
			t.prune(now)
		}
		t.entries[userID] = &throttleEntry{windowStart: now, count: 1}
		return true
	}

	entry.count++
	return entry.count <= t.limit
}

// prune drops expired windows. Called with the mutex held.
func (t *Throttle) prune(now time.Time) {
	for id, entry := range t.entries {
		if now.Sub(entry.windowStart) > t.window {
			delete(t.entries, id)
		}
	}
}
