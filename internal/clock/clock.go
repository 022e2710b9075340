// Package clock abstracts the two time operations the poller depends on:
// reading the current time and sleeping. Production code uses [Real]; tests
// use [Fake] so that ten-second retry delays and reconnect backoffs complete
// instantly and can be asserted on.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time and a cancellable sleep.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when interrupted and nil otherwise. A
	// non-positive d returns immediately.
	Sleep(ctx context.Context, d time.Duration) error
}

// ///////////////////////////////////////////////
// Real Clock
// ///////////////////////////////////////////////

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ///////////////////////////////////////////////
// Fake Clock
// ///////////////////////////////////////////////

// FakeClock is a deterministic Clock for tests. Sleep never blocks: it
// records the requested duration and advances the fake time by it.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	sleeps  []time.Duration
}

// Fake returns a FakeClock starting at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Sleep records d and advances the fake time. It still honors an already
// cancelled context so interrupt paths can be exercised.
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.current = c.current.Add(d)
	}
	return nil
}

// Advance moves the fake time forward without recording a sleep. Tests use
// it to simulate work done inside a tick.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Sleeps returns a copy of every duration passed to Sleep so far.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
