package watcher

import (
	"sync"
	"time"
)

// Debouncer absorbs the write storms a sequence import or mask render
// produces on disk. Repeated events for the same file collapse into
// one, and the surviving batch is delivered once the tree has been
// quiet for a full window, or immediately when it reaches maxBatch.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]FileEvent)

	mu      sync.Mutex
	pending map[string]FileEvent
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		pending:  make(map[string]FileEvent),
		onFlush:  onFlush,
	}
}

// Add records an event, restarting the quiet window. The newest event
// for a path wins.
func (d *Debouncer) Add(ev FileEvent) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending[ev.Path] = ev

	if len(d.pending) >= d.maxBatch {
		batch := d.drainLocked()
		d.mu.Unlock()
		d.deliver(batch)
		return
	}

	d.timer = time.AfterFunc(d.window, d.flush)
	d.mu.Unlock()
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.mu.Unlock()
	d.deliver(batch)
}

// drainLocked empties the pending set and cancels the timer. The
// caller holds the mutex and delivers the batch after unlocking.
func (d *Debouncer) drainLocked() []FileEvent {
	batch := make([]FileEvent, 0, len(d.pending))
	for _, ev := range d.pending {
		batch = append(batch, ev)
	}
	d.pending = make(map[string]FileEvent)

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	return batch
}

func (d *Debouncer) deliver(batch []FileEvent) {
	if len(batch) > 0 && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// Stop delivers whatever is still pending and drops everything added
// afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true
	batch := d.drainLocked()
	d.mu.Unlock()

	d.deliver(batch)
}
