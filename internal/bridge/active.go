package bridge

import (
	"sort"
	"sync"
	"time"
)

// ActiveSet tracks UIDs that authenticated recently
type ActiveSet struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

// NewActiveSet creates a set whose entries expire ttl after they were last
// touched.
func NewActiveSet(ttl time.Duration) *ActiveSet {
	return &ActiveSet{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Touch marks uid active now. It reports whether uid was not active before.
func (a *ActiveSet) Touch(uid string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.seen[uid]
	a.seen[uid] = a.now()
	return !ok
}

// Expire drops entries older than the TTL and returns how many it dropped
func (a *ActiveSet) Expire() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	dropped := 0
	for uid, last := range a.seen {
		if now.Sub(last) > a.ttl {
			delete(a.seen, uid)
			dropped++
		}
	}
	return dropped
}

// Count returns the number of active UIDs
func (a *ActiveSet) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.seen)
}

// UIDs returns the active UIDs in sorted order
func (a *ActiveSet) UIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.seen))
	for uid := range a.seen {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}
