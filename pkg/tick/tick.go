// Package tick provides the deferral primitive used to run work "on the next
// tick": after the current synchronous block of code, before the next unit of
// host work.
//
// A Loop does not run on its own. The host decides where a tick boundary is
// (end of a request, end of an event handler, a test step) and calls Tick or
// Drain there.
package tick

import "sync"

// Scheduler defers fn to a later tick.
type Scheduler interface {
	Defer(fn func())
}

// Func adapts a plain function to Scheduler.
type Func func(fn func())

// Defer implements Scheduler.
func (f Func) Defer(fn func()) {
	if f != nil && fn != nil {
		f(fn)
	}
}

// Loop is a FIFO of deferred callbacks executed one tick at a time.
type Loop struct {
	mu    sync.Mutex // protects queue
	queue []func()
}

// NewLoop constructs an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Defer queues fn for the next Tick.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Tick runs the callbacks queued before the call. Callbacks deferred while the
// tick runs are left for the next tick. It returns the number of callbacks run.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Drain ticks until the queue is empty and returns the number of callbacks run.
func (l *Loop) Drain() int {
	total := 0
	for {
		n := l.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

var defaultLoop = NewLoop()

// Default returns the process-wide loop.
func Default() *Loop {
	return defaultLoop
}
