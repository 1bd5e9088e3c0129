package coordinator

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet period before a slider value is sent
const DefaultDebounceDelay = 350 * time.Millisecond

// Debouncer coalesces rapid updates into a single commit of the last value.
// Each Set restarts the quiet period; Flush commits immediately.
type Debouncer struct {
	delay  time.Duration
	commit func(value int)

	mu      sync.Mutex
	timer   *time.Timer
	value   int
	pending bool
	seq     uint64
}

// NewDebouncer returns a debouncer calling commit after delay of quiet
func NewDebouncer(delay time.Duration, commit func(value int)) *Debouncer {
	return &Debouncer{delay: delay, commit: commit}
}

// Set records v as the latest value and restarts the quiet period
func (d *Debouncer) Set(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.value = v
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// Pending returns the uncommitted value, if any
func (d *Debouncer) Pending() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.pending
}

// Flush cancels the timer and commits the pending value now. It returns
// false if nothing was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.pending = false
	d.seq++
	d.mu.Unlock()

	d.commit(v)
	return true
}

// Stop discards any pending value
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.seq++
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(v)
}
