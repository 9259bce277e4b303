// Package gate deduplicates rapid repeated toggle actions per entity id.
//
// A single physical click can fire multiple logical events under strict
// rendering modes, and users double-click. The gate admits at most one
// toggle per entity within its cooldown window, and keeps the entity
// in flight until settled. The settle timer clears the in-flight marker
// regardless of whether the network confirmation has returned; that race
// is accepted, the next refetch reconciles any drift.
package gate

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injected so cooldown windows are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	lastCall time.Time
	inFlight bool
}

// Gate tracks per-entity toggle bookkeeping. One Gate instance guards one
// kind of toggle (post likes and comment likes each get their own), and is
// constructed per session so no state leaks across controllers or tests.
type Gate struct {
	mu       sync.Mutex
	clock    Clock
	cooldown time.Duration
	entries  map[int64]*entry
}

func New(clock Clock, cooldown time.Duration) *Gate {
	return &Gate{
		clock:    clock,
		cooldown: cooldown,
		entries:  make(map[int64]*entry),
	}
}

// Admit reports whether a toggle for id may proceed now. A rejected call
// has no side effects. An admitted call records the call time and marks
// the id in flight until Settle.
func (g *Gate) Admit(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	e, exists := g.entries[id]
	if exists {
		if now.Sub(e.lastCall) < g.cooldown {
			return false
		}
		if e.inFlight {
			return false
		}
		e.lastCall = now
		e.inFlight = true
		return true
	}

	g.entries[id] = &entry{lastCall: now, inFlight: true}
	return true
}

// Settle clears all bookkeeping for id, making it eligible for a new
// toggle. Settling an unknown id is a no-op.
func (g *Gate) Settle(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, id)
}

// InFlight reports whether id has an admitted, unsettled toggle.
func (g *Gate) InFlight(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, exists := g.entries[id]
	return exists && e.inFlight
}
