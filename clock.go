package perch

import "time"

// Clock measures elapsed wall-clock time for the frame loop. It starts on
// the first Tick.
type Clock struct {
	now     func() time.Time
	start   time.Time
	started bool
	prev    float64
}

// NewClock creates a clock reading now, or time.Now when now is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Tick returns the seconds since the first Tick and the seconds since the
// previous Tick. The first call returns (0, 0).
func (c *Clock) Tick() (elapsed, delta float64) {
	t := c.now()
	if !c.started {
		c.start = t
		c.started = true
	}
	elapsed = t.Sub(c.start).Seconds()
	delta = elapsed - c.prev
	c.prev = elapsed
	return elapsed, delta
}

// Elapsed returns the elapsed time recorded by the last Tick.
func (c *Clock) Elapsed() float64 {
	return c.prev
}
