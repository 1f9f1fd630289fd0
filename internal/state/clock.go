package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var sessionID = uuid.NewString()

// SessionID identifies this annotator process. The preview hub stamps it on
// every snapshot so viewers can tell sessions apart.
func SessionID() string { return sessionID }

// Clock is a monotonic revision counter. Every store mutation ticks it.
type Clock struct {
	counter atomic.Uint64
}

// Tick advances the clock and returns the new revision.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

// Now returns the current revision without advancing it.
func (c *Clock) Now() uint64 {
	return c.counter.Load()
}

func newID() string {
	return uuid.NewString()
}
