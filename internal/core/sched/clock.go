package sched

import "time"

// Clock supplies the current simulation time in milliseconds.
// The game loop uses a wall clock; tests substitute a manual one.
type Clock interface {
	Now() int64
}

// WallClock reads the OS monotonic clock.
type WallClock struct{}

func (WallClock) Now() int64 {
	return time.Now().UnixMilli()
}

// ManualClock is advanced explicitly. For deterministic tests.
type ManualClock struct {
	ms int64
}

func (c *ManualClock) Now() int64 { return c.ms }

// Advance moves the clock forward by ms milliseconds.
func (c *ManualClock) Advance(ms int64) { c.ms += ms }

// Set jumps the clock to an absolute time.
func (c *ManualClock) Set(ms int64) { c.ms = ms }
