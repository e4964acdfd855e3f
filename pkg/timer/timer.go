package timer

import (
	"time"
)

// Logger is the subset of the service logger the timer needs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

// ---------------------------------------------------------
// Mode 1: Function Level (The "Defer" pattern)
// ---------------------------------------------------------

// Track returns a function that, when executed, logs the duration.
// Usage: defer timer.Track(log, "CreateUser")()
func Track(log Logger, name string) func() {
	start := time.Now()
	return func() {
		if log != nil {
			log.Debug("timing", "step", name, "took", time.Since(start).String())
		}
	}
}

// ---------------------------------------------------------
// Mode 2: Block Level (The "Stopwatch" pattern)
// ---------------------------------------------------------

// Stopwatch is useful for measuring multiple steps within one function.
type Stopwatch struct {
	log   Logger
	start time.Time
	last  time.Time
}

// NewStopwatch starts the clock.
func NewStopwatch(log Logger) *Stopwatch {
	now := time.Now()
	return &Stopwatch{log: log, start: now, last: now}
}

// Lap logs the time taken since the last Lap call and returns it.
func (s *Stopwatch) Lap(stepName string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(s.last)
	s.last = now
	if s.log != nil {
		s.log.Debug("timing", "step", stepName, "took", elapsed.String(), "total", now.Sub(s.start).String())
	}
	return elapsed
}

// Total logs the total time since the stopwatch started.
func (s *Stopwatch) Total(name string) time.Duration {
	total := time.Since(s.start)
	if s.log != nil {
		s.log.Debug("timing", "step", name, "total", total.String())
	}
	return total
}
