// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package clock abstracts wall-clock time and callback timers so that
// schedulers can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock interface for mocking time
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer interface for mocking time.Timer
type Timer interface {
	Stop() bool
}

// Real implements Clock using the standard time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Ticker invokes a callback every period until stopped.
// The first invocation happens one period after Every returns.
type Ticker struct {
	clock  Clock
	period time.Duration
	fn     func()

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Every starts a repeating callback on c. A non-positive period is treated as one second.
func Every(c Clock, period time.Duration, fn func()) *Ticker {
	if period <= 0 {
		period = time.Second
	}
	t := &Ticker{clock: c, period: period, fn: fn}
	t.mu.Lock()
	t.timer = c.AfterFunc(period, t.fire)
	t.mu.Unlock()
	return t
}

func (t *Ticker) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	// Re-arm before running so a slow callback does not shift the cadence.
	t.timer = t.clock.AfterFunc(t.period, t.fire)
	t.mu.Unlock()

	t.fn()
}

// Stop prevents further invocations. It reports whether the ticker was running.
func (t *Ticker) Stop() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}
