package dashboard

import (
	"sync"
	"time"
)

// debouncer coalesces a burst of query changes into a single callback
// after a quiet period, and drops a value identical to the last one that
// fired.
type debouncer struct {
	delay time.Duration
	fn    func(value string)

	mu        sync.Mutex
	timer     *time.Timer
	pending   string
	lastFired string
	hasFired  bool
	stopped   bool
}

func newDebouncer(delay time.Duration, fn func(string)) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// Trigger records value and restarts the quiet-period timer.
func (d *debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if d.stopped || (d.hasFired && d.pending == d.lastFired) {
		d.mu.Unlock()
		return
	}
	value := d.pending
	d.lastFired = value
	d.hasFired = true
	d.mu.Unlock()

	d.fn(value)
}

// Stop cancels any pending callback permanently.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
