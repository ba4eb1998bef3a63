package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window hit counter keyed by caller, shielding
// the unauthenticated webhook endpoint. A key's window resets once its
// duration elapses.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*countingWindow
}

type countingWindow struct {
	openedAt time.Time
	hits     int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*countingWindow),
	}
}

// Allow records one hit for key and reports whether it fits the window.
// Unidentifiable callers are always refused.
func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windows[key]
	if w == nil || now.Sub(w.openedAt) > r.window {
		w = &countingWindow{openedAt: now}
		r.windows[key] = w
	}
	if w.hits >= r.limit {
		return false
	}
	w.hits++
	return true
}
