// Package cooldown suppresses repeated dispatches for the same
// (source, trigger kind) pair within a configurable window. This is the
// anti-spam control: Pub/Sub and other pushers deliver at least once, and a
// redelivered notification must not produce a second SMS.
//
// State lives in memory for the life of the process. A restart forgets all
// windows; the worst case is one duplicate dispatch right after a restart.
package cooldown

import (
	"sync"
	"time"
)

type entryKey struct {
	source string
	kind   string
}

// Guard tracks the last dispatch time per (source, trigger kind) pair.
// A single mutex over the map is enough at webhook request rates.
type Guard struct {
	mu        sync.Mutex
	window    time.Duration
	overrides map[string]time.Duration
	last      map[entryKey]time.Time
}

// New creates a Guard with the given default window.
func New(window time.Duration) *Guard {
	return &Guard{
		window:    window,
		overrides: make(map[string]time.Duration),
		last:      make(map[entryKey]time.Time),
	}
}

// SetSourceWindow overrides the window for one source. Must be called during
// startup wiring, before the guard sees traffic.
func (g *Guard) SetSourceWindow(source string, window time.Duration) {
	g.overrides[source] = window
}

// Allow reports whether a dispatch for (source, kind) may proceed at now.
// When it grants, it records now as the new last-dispatch time in the same
// critical section, so concurrent duplicates cannot both pass. When it
// suppresses, the existing record is left unchanged.
func (g *Guard) Allow(source, kind string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := entryKey{source: source, kind: kind}
	if last, ok := g.last[key]; ok {
		if now.Sub(last) <= g.windowFor(source) {
			return false
		}
	}

	g.last[key] = now
	return true
}

// Last returns the recorded last-dispatch time for (source, kind).
func (g *Guard) Last(source, kind string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.last[entryKey{source: source, kind: kind}]
	return t, ok
}

func (g *Guard) windowFor(source string) time.Duration {
	if d, ok := g.overrides[source]; ok {
		return d
	}
	return g.window
}
