package beast

import "time"

const (
	counterHz = 12_000_000
	// maxDrift re-anchors the counter when it strays this far from wall time
	maxDrift = 2 * time.Second
)

// counterClock maps the free-running 12 MHz receiver counter onto wall time.
// The first counter value is anchored to the wall clock; later values are
// offset from the anchor until the counter resets or drifts.
type counterClock struct {
	now func() time.Time

	anchored      bool
	anchorWall    time.Time
	anchorCounter uint64
}

func newCounterClock(now func() time.Time) *counterClock {
	if now == nil {
		now = time.Now
	}
	return &counterClock{now: now}
}

func (c *counterClock) timestamp(counter uint64) time.Time {
	now := c.now()
	if counter == 0 {
		return now
	}
	if c.anchored && counter >= c.anchorCounter {
		// 1e9 / 12e6 ns per tick
		ts := c.anchorWall.Add(time.Duration((counter - c.anchorCounter) * 250 / 3))
		if d := ts.Sub(now); d < maxDrift && d > -maxDrift {
			return ts
		}
	}
	c.anchored = true
	c.anchorWall = now
	c.anchorCounter = counter
	return now
}
