package match

import (
	"sync/atomic"
	"time"
)

// ManualClock is the virtual time source of a match: time since engine
// start, advanced only by the host loop. Reads are safe from any goroutine.
type ManualClock struct {
	now atomic.Int64
}

func NewManualClock() *ManualClock { return &ManualClock{} }

func (c *ManualClock) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Advance moves the clock forward; negative steps are ignored.
func (c *ManualClock) Advance(dt time.Duration) {
	if dt > 0 {
		c.now.Add(int64(dt))
	}
}

// MatchClock counts elapsed match time against the configured duration.
type MatchClock struct {
	elapsed  time.Duration
	duration time.Duration
}

func NewMatchClock(duration time.Duration) *MatchClock {
	return &MatchClock{duration: duration}
}

func (c *MatchClock) Advance(dt time.Duration) {
	if dt > 0 {
		c.elapsed += dt
	}
}

func (c *MatchClock) Reset() { c.elapsed = 0 }

// Set overrides the elapsed time, clamped at zero.
func (c *MatchClock) Set(elapsed time.Duration) {
	c.elapsed = max(elapsed, 0)
}

func (c *MatchClock) Elapsed() time.Duration  { return c.elapsed }
func (c *MatchClock) Duration() time.Duration { return c.duration }

// Remaining is never negative.
func (c *MatchClock) Remaining() time.Duration {
	return max(c.duration-c.elapsed, 0)
}

func (c *MatchClock) Expired() bool {
	return c.elapsed >= c.duration
}
