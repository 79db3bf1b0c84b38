package ports

import "time"

// Clock supplies "now" to every status/outcome computation. Time is read
// once per call and passed down so derived state stays deterministic under
// test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock returns a preset instant; tests advance it directly.
type FixedClock struct {
	Instant time.Time
}

func (c *FixedClock) Now() time.Time { return c.Instant }

func (c *FixedClock) Advance(d time.Duration) { c.Instant = c.Instant.Add(d) }
