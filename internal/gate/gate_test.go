package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestGateAdmitsAndRejects(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := New(clock, 20*time.Millisecond)

	// First call goes through and marks the entity in flight.
	assert.True(t, g.Admit(42))
	assert.True(t, g.InFlight(42))

	// A duplicate inside the cooldown window is rejected.
	clock.Advance(5 * time.Millisecond)
	assert.False(t, g.Admit(42))

	// Past the cooldown the entity is still in flight, so still rejected.
	clock.Advance(100 * time.Millisecond)
	assert.False(t, g.Admit(42))

	// Settle makes it eligible again.
	g.Settle(42)
	assert.False(t, g.InFlight(42))
	assert.True(t, g.Admit(42))
}

func TestGateRejectionHasNoSideEffects(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := New(clock, 20*time.Millisecond)

	admitted := clock.Now()
	assert.True(t, g.Admit(7))

	// Duplicates are rejected inside the cooldown window, and past it
	// while the toggle is still in flight.
	clock.Advance(5 * time.Millisecond)
	assert.False(t, g.Admit(7))
	clock.Advance(30 * time.Millisecond)
	assert.False(t, g.Admit(7))

	// The rejections recorded nothing: the call time still belongs to
	// the admitted toggle and the in-flight marker is untouched.
	g.mu.Lock()
	lastCall := g.entries[7].lastCall
	g.mu.Unlock()
	assert.Equal(t, admitted, lastCall)
	assert.True(t, g.InFlight(7))

	// Settle wipes the entry, so the next toggle is admitted at once.
	g.Settle(7)
	assert.True(t, g.Admit(7))
}

func TestGateTracksEntitiesIndependently(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := New(clock, 20*time.Millisecond)

	assert.True(t, g.Admit(1))
	assert.True(t, g.Admit(2))
	assert.False(t, g.Admit(1))
	assert.False(t, g.Admit(2))

	g.Settle(1)
	assert.True(t, g.Admit(1))
	assert.False(t, g.Admit(2))
}

func TestGateSettleUnknownIDIsNoop(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	g := New(clock, 20*time.Millisecond)

	g.Settle(999)
	assert.False(t, g.InFlight(999))
	assert.True(t, g.Admit(999))
}
