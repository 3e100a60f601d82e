package reactive

// Ref is a plain observable value cell.
type Ref[T any] struct {
	value T
	dep   Dep
}

// NewRef wraps value.
func NewRef[T any](value T) *Ref[T] {
	return &Ref[T]{value: value}
}

// Get returns the value and tracks the reader.
func (r *Ref[T]) Get() T {
	r.dep.Track()
	return r.value
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.value
}

// Set stores value and notifies dependents. Refs do not compare values.
func (r *Ref[T]) Set(value T) {
	r.value = value
	r.dep.Trigger()
}

// Subscribe attaches an explicit observer.
func (r *Ref[T]) Subscribe(fn func()) func() {
	return r.dep.Subscribe(fn)
}
