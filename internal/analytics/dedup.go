package analytics

import (
	"sync"
	"time"
)

// pruneThreshold is the guard size above which expired entries are swept.
const pruneThreshold = 256

// dedupGuard suppresses repeat submissions of the same signature within a
// short window, absorbing redundant re-renders from settled UI state.
// Double counts from genuine retries outside the window are an accepted
// risk; the store itself stays merge-safe either way.
type dedupGuard struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func newDedupGuard(window time.Duration, now func() time.Time) *dedupGuard {
	return &dedupGuard{
		window: window,
		now:    now,
		seen:   make(map[string]time.Time),
	}
}

// Allow reports whether a submission for the signature should proceed, and
// records it as the latest occurrence when it does.
func (g *dedupGuard) Allow(signature string, at time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.seen[signature]; ok && at.Sub(last) < g.window {
		return false
	}

	if len(g.seen) >= pruneThreshold {
		g.prune(at)
	}

	g.seen[signature] = at
	return true
}

// prune removes expired entries. Caller holds the lock.
func (g *dedupGuard) prune(at time.Time) {
	for signature, last := range g.seen {
		if at.Sub(last) >= g.window {
			delete(g.seen, signature)
		}
	}
}
