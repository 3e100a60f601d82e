package routequery

import (
	"fmt"

	"github.com/goliatone/go-routequery/pkg/reactive"
)

// Synced mirrors one field of a Store as a typed, observable value.
//
// Local writes update the cache and notify observers immediately; the document
// is updated on the next flush of the shared write queue. Changes made to the
// document by anyone else are reflected synchronously. Both directions are
// gated on raw equality, so unchanged values are neither written back nor
// re-announced.
//
// Like the rest of the reactive graph, a Synced value belongs to one goroutine.
type Synced[T any] struct {
	name      string
	def       func() T
	mode      Mode
	store     Store
	queues    *Queues
	transform Transform[T]

	dep      reactive.Dep
	typed    T
	typedSet bool
	raw      RawValue

	disposed    bool
	scoped      bool
	unsubscribe func()
}

var _ reactive.Readable[int] = (*Synced[int])(nil)

// New builds a synchronizer for name with a static default.
func New[T any](name string, def T, opts ...Option) (*Synced[T], error) {
	return NewWithDefault(name, func() T { return def }, opts...)
}

// NewWithDefault builds a synchronizer whose default is re-evaluated on every
// read that falls back to it. Reads made by def are tracked like any other, so
// a default derived from another observable keeps observers up to date.
func NewWithDefault[T any](name string, def func() T, opts ...Option) (*Synced[T], error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	cfg := applyOptions(opts)
	if cfg.store == nil {
		return nil, ErrStoreRequired
	}
	transform, err := resolveTransform[T](cfg.transform)
	if err != nil {
		return nil, err
	}
	if def == nil {
		def = func() T {
			var zero T
			return zero
		}
	}

	s := &Synced[T]{
		name:      name,
		def:       def,
		mode:      cfg.mode,
		store:     cfg.store,
		queues:    cfg.queues,
		transform: transform,
	}
	if raw := cfg.store.Read(name); raw.Present() {
		typed, err := transform.FromRaw(raw)
		if err != nil {
			return nil, wrapTransformError(name, DirectionFromRaw, err)
		}
		s.raw = raw
		s.typed = typed
		s.typedSet = true
	}

	s.unsubscribe = cfg.store.Subscribe(name, s.receive)
	s.queues.attach(cfg.store)
	s.scoped = cfg.registrar.RegisterDisposal(s.Dispose)
	return s, nil
}

func resolveTransform[T any](configured any) (Transform[T], error) {
	if configured == nil {
		if identity, ok := any(Identity()).(Transform[T]); ok {
			return identity, nil
		}
		var zero T
		return Transform[T]{}, fmt.Errorf("%w: %T", ErrTransformRequired, zero)
	}
	transform, ok := configured.(Transform[T])
	if !ok {
		var zero T
		return Transform[T]{}, fmt.Errorf("%w: %T for %T", ErrTransformType, configured, zero)
	}
	if !transform.valid() {
		return Transform[T]{}, fmt.Errorf("%w: FromRaw and ToRaw must both be set", ErrTransformRequired)
	}
	return transform, nil
}

// Name returns the mirrored field name.
func (s *Synced[T]) Name() string {
	return s.name
}

// Mode returns the commit mode used for this field's writes.
func (s *Synced[T]) Mode() Mode {
	return s.mode
}

// Scoped reports whether disposal was registered with an enclosing scope.
// When false the caller must call Dispose.
func (s *Synced[T]) Scoped() bool {
	return s.scoped
}

// Disposed reports whether Dispose ran.
func (s *Synced[T]) Disposed() bool {
	return s.disposed
}

// Raw returns the last raw value written or observed.
func (s *Synced[T]) Raw() RawValue {
	return s.raw
}

// Get returns the cached value, or the default when the field is unset, and
// registers the running effect as an observer.
func (s *Synced[T]) Get() T {
	s.dep.Track()
	return s.Peek()
}

// Peek is Get without observer registration.
func (s *Synced[T]) Peek() T {
	if s.typedSet {
		return s.typed
	}
	return s.def()
}

// Set converts value and, when its raw form differs from the cached one,
// updates the cache, queues the document write and notifies observers.
// A value whose raw form is Missing clears the field.
func (s *Synced[T]) Set(value T) error {
	if s.disposed {
		return ErrDisposed
	}
	raw, err := s.transform.ToRaw(value)
	if err != nil {
		return wrapTransformError(s.name, DirectionToRaw, err)
	}
	if Equal(raw, s.raw) {
		return nil
	}
	s.raw = raw
	if raw.Present() {
		s.typed = value
		s.typedSet = true
	} else {
		s.clearTyped()
	}
	// Queue before notifying: an observer that writes this field again must
	// land after this write.
	s.queues.Enqueue(s.store, s.name, raw, s.mode)
	s.dep.Trigger()
	return nil
}

// Subscribe attaches an explicit observer called after every change.
func (s *Synced[T]) Subscribe(fn func()) func() {
	return s.dep.Subscribe(fn)
}

// receive handles a change of the field made through the store. It never
// queues a write. The raw cache always follows the store; when FromRaw fails
// the typed value falls back to the default and the error is returned.
func (s *Synced[T]) receive(raw RawValue) error {
	if s.disposed || Equal(raw, s.raw) {
		return nil
	}
	s.raw = raw
	var err error
	if raw.Present() {
		var typed T
		if typed, err = s.transform.FromRaw(raw); err == nil {
			s.typed = typed
			s.typedSet = true
		} else {
			s.clearTyped()
			err = wrapTransformError(s.name, DirectionFromRaw, err)
		}
	} else {
		s.clearTyped()
	}
	s.dep.Trigger()
	return err
}

// Dispose resets the cache, stops following the store and drops observers.
// Writes already queued are still committed. Dispose is idempotent.
func (s *Synced[T]) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.clearTyped()
	s.raw = Missing()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.queues.release(s.store)
	s.dep.Reset()
}

func (s *Synced[T]) clearTyped() {
	var zero T
	s.typed = zero
	s.typedSet = false
}
