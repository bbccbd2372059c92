package engine

import (
	"sync"
	"time"
)

// Clock provides simulation-relative timestamps in seconds. Each Manager
// owns one so that wait times are measured from the start of its session
// rather than the process. The zero value is not usable; call NewClock.
type Clock struct {
	mu    sync.Mutex
	epoch time.Time
	now   func() time.Time
}

// NewClock creates a clock anchored at the current wall time.
func NewClock() *Clock {
	return &Clock{epoch: time.Now(), now: time.Now}
}

// NewFakeClock creates a clock driven by the given time source. Tests use
// this to make enqueue and wait times deterministic.
func NewFakeClock(now func() time.Time) *Clock {
	return &Clock{epoch: now(), now: now}
}

// Now returns seconds elapsed since the clock epoch.
func (c *Clock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.epoch).Seconds()
}

// Reset moves the epoch to the current time.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch = c.now()
}
