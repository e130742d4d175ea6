package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced wall clock for tests.
//
// Telemetry timestamps taken from a FakeClock are reproducible, so the
// rendered "[+Nms]" offsets can be compared against golden files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default start time of a FakeClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewFakeClock creates a clock stopped at Epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset moves the clock back to Epoch.
//
// Used for test reuse. After Reset(), Now() returns Epoch.
func (c *FakeClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}

// TickingClock is a FakeClock that advances by a fixed step after every
// read, giving each telemetry entry a distinct timestamp.
type TickingClock struct {
	FakeClock
	step time.Duration
}

// NewTickingClock creates a clock starting at Epoch that advances by step
// after each call to Now.
func NewTickingClock(step time.Duration) *TickingClock {
	return &TickingClock{FakeClock: FakeClock{now: Epoch}, step: step}
}

// Now returns the current time and then advances by the step.
func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}
