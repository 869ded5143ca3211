package listview

import (
	"sync"
	"time"
)

// DefaultDebounce is the pause the search box waits for before filtering.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer delivers only the last value triggered within an interval.
// Every Trigger cancels the pending delivery and restarts the timer.
type Debouncer[T any] struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func(T)
	timer    *time.Timer
	seq      uint64
}

// NewDebouncer returns a Debouncer calling fn after interval of quiet.
func NewDebouncer[T any](interval time.Duration, fn func(T)) *Debouncer[T] {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Debouncer[T]{interval: interval, fn: fn}
}

// Trigger schedules v, replacing whatever was pending.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if seq != d.seq {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn(v)
	})
}

// Stop cancels any pending delivery.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
