package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven clock.
type Fake struct {
	lock *sync.RWMutex
	now  time.Time
}

// NewFake returns a clock stopped at the given time.
func NewFake(now time.Time) *Fake {
	return &Fake{&sync.RWMutex{}, now}
}

func (c *Fake) Now() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to the given time.
func (c *Fake) Set(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now
}
