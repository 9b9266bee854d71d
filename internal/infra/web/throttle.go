package web

import (
	"sync"
	"time"
)

// Throttle bounds how often the gate re-checks a session against the store
// for the same identity. It is best-effort and non-authoritative: entries
// are lost on restart and only timestamps of successful checks are kept, so
// it can never turn a rejection into an acceptance older than one interval.
type Throttle struct {
	mu         sync.Mutex
	checked    map[string]time.Time
	interval   time.Duration
	maxEntries int
}

func NewThrottle(interval time.Duration, maxEntries int) *Throttle {
	return &Throttle{
		checked:    make(map[string]time.Time),
		interval:   interval,
		maxEntries: maxEntries,
	}
}

// ShouldCheck reports whether the identity's last successful check is old
// enough that the store must be consulted again.
func (t *Throttle) ShouldCheck(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.checked[key]
	if !ok {
		return true
	}
	return now.Sub(last) >= t.interval
}

// MarkChecked records a successful session check for the identity.
func (t *Throttle) MarkChecked(key string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.checked) >= t.maxEntries {
		// Coarse bound: drop everything rather than track LRU order.
		t.checked = make(map[string]time.Time)
	}
	t.checked[key] = now
}

// Forget drops the identity after a failed check so the next request hits
// the store again.
func (t *Throttle) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.checked, key)
}
