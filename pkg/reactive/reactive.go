// Package reactive provides the small set of host reactivity primitives the
// synchronizers plug into: dependency cells (Dep), auto-tracking effects
// (Effect), disposal scopes (Scope) and a plain value cell (Ref).
//
// The reactive graph is confined to a single goroutine. Tracking relies on the
// package-level active effect and active scope, the same way a single-threaded
// UI runtime does it; callers that need to touch the graph from several
// goroutines must funnel the work onto one (for example through a tick.Loop).
package reactive

var (
	activeEffect *Effect
	activeScope  *Scope
)

// Readable is anything that exposes a tracked value.
type Readable[T any] interface {
	Get() T
}

// Dep is a dependency cell: readers call Track, writers call Trigger.
type Dep struct {
	effects   []*Effect
	listeners []*listener
}

type listener struct {
	fn     func()
	active bool
}

// Track registers the currently running effect, if any, as a dependent.
func (d *Dep) Track() {
	e := activeEffect
	if e == nil || e.stopped {
		return
	}
	for _, existing := range d.effects {
		if existing == e {
			return
		}
	}
	d.effects = append(d.effects, e)
	e.deps = append(e.deps, d)
}

// Trigger re-runs every dependent effect and calls every listener once.
func (d *Dep) Trigger() {
	effects := append([]*Effect(nil), d.effects...)
	for _, e := range effects {
		if e == activeEffect {
			continue
		}
		e.run()
	}
	listeners := append([]*listener(nil), d.listeners...)
	for _, l := range listeners {
		if l.active {
			l.fn()
		}
	}
}

// Subscribe attaches an explicit observer. The returned function detaches it.
func (d *Dep) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	l := &listener{fn: fn, active: true}
	d.listeners = append(d.listeners, l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		for i, existing := range d.listeners {
			if existing == l {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// Reset drops every dependent effect and listener.
func (d *Dep) Reset() {
	for _, e := range d.effects {
		e.forget(d)
	}
	d.effects = nil
	for _, l := range d.listeners {
		l.active = false
	}
	d.listeners = nil
}

// Dependents reports how many effects and listeners observe the cell.
func (d *Dep) Dependents() int {
	return len(d.effects) + len(d.listeners)
}

func (d *Dep) remove(e *Effect) {
	for i, existing := range d.effects {
		if existing == e {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// Effect runs fn, records every Dep it reads, and runs it again whenever one of
// them triggers. Dependencies are re-collected on each run.
type Effect struct {
	fn      func()
	deps    []*Dep
	running bool
	stopped bool
}

// NewEffect creates and immediately runs an effect. When created inside a
// running Scope the effect is stopped together with the scope.
func NewEffect(fn func()) *Effect {
	e := &Effect{fn: fn}
	if activeScope != nil && !activeScope.stopped {
		activeScope.effects = append(activeScope.effects, e)
	}
	e.run()
	return e
}

func (e *Effect) run() {
	if e.stopped || e.running || e.fn == nil {
		return
	}
	e.clear()
	prev := activeEffect
	activeEffect = e
	e.running = true
	defer func() {
		activeEffect = prev
		e.running = false
	}()
	e.fn()
}

// Stop detaches the effect from all its dependencies. Stopped effects never run again.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.clear()
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool {
	return e.stopped
}

func (e *Effect) clear() {
	for _, d := range e.deps {
		d.remove(e)
	}
	e.deps = nil
}

func (e *Effect) forget(d *Dep) {
	for i, existing := range e.deps {
		if existing == d {
			e.deps = append(e.deps[:i], e.deps[i+1:]...)
			return
		}
	}
}

// Untracked runs fn without registering reads against the running effect.
func Untracked(fn func()) {
	prev := activeEffect
	activeEffect = nil
	defer func() { activeEffect = prev }()
	fn()
}
