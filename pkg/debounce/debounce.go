// Package debounce provides a timer-reset debouncer: every new input resets
// the timer and only the latest input's callback runs, once no further input
// has arrived for a quiet period.
package debounce

import (
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// Debouncer coalesces bursts of inputs into a single callback invocation.
// It is safe for concurrent use.
type Debouncer struct {
	interval time.Duration
	clock    clock.Clock

	mtx sync.Mutex
	gen uint64
}

// New returns a Debouncer firing after the given quiet period.
func New(interval time.Duration) *Debouncer {
	return NewWithClock(interval, clock.NewDefaultClock())
}

// NewWithClock returns a Debouncer using the provided clock, letting tests
// drive time with a virtual clock.
func NewWithClock(interval time.Duration, c clock.Clock) *Debouncer {
	return &Debouncer{
		interval: interval,
		clock:    c,
	}
}

// Do schedules fn to run once the quiet period elapses with no further calls.
// A call made while a previous one is pending supersedes it: only the most
// recent fn ever runs.
func (d *Debouncer) Do(fn func()) {
	d.mtx.Lock()
	d.gen++
	gen := d.gen
	d.mtx.Unlock()

	go func() {
		<-d.clock.TickAfter(d.interval)

		d.mtx.Lock()
		stale := gen != d.gen
		d.mtx.Unlock()
		if stale {
			return
		}
		fn()
	}()
}
