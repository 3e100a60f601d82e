package reactive

// Scope groups effects and cleanup callbacks so they can be torn down together.
type Scope struct {
	parent   *Scope
	children []*Scope
	effects  []*Effect
	cleanups []func()
	stopped  bool
}

// NewScope creates a scope. A scope created while another one runs becomes its
// child and is stopped with it.
func NewScope() *Scope {
	s := &Scope{}
	if parent := activeScope; parent != nil && !parent.stopped {
		s.parent = parent
		parent.children = append(parent.children, s)
	}
	return s
}

// Run executes fn with s as the active scope.
func (s *Scope) Run(fn func()) {
	if s.stopped || fn == nil {
		return
	}
	prev := activeScope
	activeScope = s
	defer func() { activeScope = prev }()
	fn()
}

// OnDispose registers fn to run when the scope stops. It returns false when the
// scope has already stopped.
func (s *Scope) OnDispose(fn func()) bool {
	if s == nil || s.stopped || fn == nil {
		return false
	}
	s.cleanups = append(s.cleanups, fn)
	return true
}

// Active reports whether the scope has not been stopped.
func (s *Scope) Active() bool {
	return s != nil && !s.stopped
}

// Stop stops child scopes and effects, then runs cleanups newest first.
func (s *Scope) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	for _, child := range s.children {
		child.Stop()
	}
	for _, e := range s.effects {
		e.Stop()
	}
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.children = nil
	s.effects = nil
	s.cleanups = nil
	if s.parent != nil {
		s.parent.detach(s)
		s.parent = nil
	}
}

func (s *Scope) detach(child *Scope) {
	for i, existing := range s.children {
		if existing == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Current returns the running scope or nil.
func Current() *Scope {
	return activeScope
}

// OnScopeDispose registers fn with the running scope. It reports false when no
// scope is running, in which case fn is never called by this mechanism.
func OnScopeDispose(fn func()) bool {
	return activeScope.OnDispose(fn)
}
