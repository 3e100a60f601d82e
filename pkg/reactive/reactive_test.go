package reactive

import "testing"

func TestEffectTracksAndReruns(t *testing.T) {
	count := NewRef(1)
	var seen []int
	e := NewEffect(func() {
		seen = append(seen, count.Get())
	})

	count.Set(2)
	count.Set(3)
	if len(seen) != 3 || seen[2] != 3 {
		t.Fatalf("expected effect to observe [1 2 3], got %v", seen)
	}

	e.Stop()
	count.Set(4)
	if len(seen) != 3 {
		t.Fatalf("expected stopped effect to stay idle, got %v", seen)
	}
	if count.dep.Dependents() != 0 {
		t.Fatalf("expected stopped effect to be detached, got %d dependents", count.dep.Dependents())
	}
}

func TestEffectRecollectsDependencies(t *testing.T) {
	useA := NewRef(true)
	a := NewRef("a")
	b := NewRef("b")
	runs := 0
	NewEffect(func() {
		runs++
		if useA.Get() {
			a.Get()
			return
		}
		b.Get()
	})

	useA.Set(false)
	runs = 0
	a.Set("a2")
	if runs != 0 {
		t.Fatalf("expected stale dependency to be dropped, got %d runs", runs)
	}
	b.Set("b2")
	if runs != 1 {
		t.Fatalf("expected new dependency to trigger, got %d runs", runs)
	}
}

func TestUntrackedSkipsRegistration(t *testing.T) {
	value := NewRef(0)
	runs := 0
	NewEffect(func() {
		runs++
		Untracked(func() { value.Get() })
	})
	value.Set(1)
	if runs != 1 {
		t.Fatalf("expected untracked read not to subscribe, got %d runs", runs)
	}
}

func TestSubscribeAndCancel(t *testing.T) {
	value := NewRef(0)
	calls := 0
	cancel := value.Subscribe(func() { calls++ })
	value.Set(1)
	cancel()
	cancel()
	value.Set(2)
	if calls != 1 {
		t.Fatalf("expected exactly one notification, got %d", calls)
	}
}

func TestScopeStopRunsCleanupsAndStopsEffects(t *testing.T) {
	value := NewRef(0)
	runs := 0
	var order []string

	scope := NewScope()
	scope.Run(func() {
		NewEffect(func() {
			runs++
			value.Get()
		})
		if !OnScopeDispose(func() { order = append(order, "first") }) {
			t.Fatalf("expected registration inside a running scope")
		}
		OnScopeDispose(func() { order = append(order, "second") })
	})

	scope.Stop()
	value.Set(1)
	if runs != 1 {
		t.Fatalf("expected effect stopped with scope, got %d runs", runs)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected cleanups newest first, got %v", order)
	}
	if scope.Active() {
		t.Fatalf("expected scope inactive after Stop")
	}
	if scope.OnDispose(func() {}) {
		t.Fatalf("expected registration on stopped scope to fail")
	}
}

func TestOnScopeDisposeWithoutScope(t *testing.T) {
	if Current() != nil {
		t.Fatalf("expected no active scope")
	}
	if OnScopeDispose(func() {}) {
		t.Fatalf("expected registration without a scope to report false")
	}
}

func TestChildScopeStopsWithParent(t *testing.T) {
	parent := NewScope()
	stopped := false
	parent.Run(func() {
		child := NewScope()
		child.Run(func() {
			OnScopeDispose(func() { stopped = true })
		})
	})
	parent.Stop()
	if !stopped {
		t.Fatalf("expected child cleanup to run when parent stops")
	}
}
