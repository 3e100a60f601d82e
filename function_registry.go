package routequery

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Function is a helper callable from transform expressions. Arguments arrive
// as the engine exports them: strings, int64 or float64 numbers, []any lists.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the helpers exposed to expression transforms. Names
// are case insensitive and may be registered once.
type FunctionRegistry struct {
	mu        sync.RWMutex // protects functions and rev
	functions map[string]namedFunction
	rev       uint64
}

var registryRevisions atomic.Uint64

type namedFunction struct {
	name string
	fn   Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]namedFunction),
		rev:       registryRevisions.Add(1),
	}
}

// Builtins returns a registry preloaded with the query helpers:
//
//	clamp(n, lo, hi)       bound a numeric value
//	coalesce(a, b, ...)    first argument that is neither nil nor ""
//	splitList(s, sep)      split a scalar into a list, trimming items
//	joinList(list, sep)    join a list back into a scalar
func Builtins() *FunctionRegistry {
	return NewFunctionRegistry().
		MustRegister("clamp", clampFunction).
		MustRegister("coalesce", coalesceFunction).
		MustRegister("splitList", splitListFunction).
		MustRegister("joinList", joinListFunction)
}

// Register stores fn under name.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("routequery: function %q is nil", name)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("routequery: function name must not be empty")
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]namedFunction)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("routequery: function %q already registered", name)
	}
	r.functions[key] = namedFunction{name: name, fn: fn}
	r.rev = registryRevisions.Add(1)
	return nil
}

// MustRegister is Register that panics on error, for package-level setup.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Merge copies every function of other into r. Names already present in r
// are kept.
func (r *FunctionRegistry) Merge(other *FunctionRegistry) *FunctionRegistry {
	if other == nil || other == r {
		return r
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]namedFunction, len(other.functions))
	}
	added := false
	for key, entry := range other.functions {
		if _, exists := r.functions[key]; !exists {
			r.functions[key] = entry
			added = true
		}
	}
	if added {
		r.rev = registryRevisions.Add(1)
	}
	return r
}

// Revision identifies the registry's current contents. It changes on every
// registration and is shared by clones, which hold the same functions. A nil
// registry reports 0.
func (r *FunctionRegistry) Revision() uint64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rev
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[strings.ToLower(name)]
	return ok
}

// Clone returns a shallow copy with the same revision; evaluators keep a
// clone so later registrations do not leak into compiled programs.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]namedFunction, len(r.functions)),
		rev:       r.rev,
	}
	for key, entry := range r.functions {
		clone.functions[key] = entry
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("routequery: function registry is nil")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("routequery: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names returns the names as registered, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))
	for _, entry := range r.functions {
		names = append(names, entry.name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func clampFunction(args ...any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("clamp expects 3 arguments, got %d", len(args))
	}
	var (
		values   [3]float64
		integral = true
	)
	for i, arg := range args {
		n, isInt, err := toNumber(arg)
		if err != nil {
			return nil, fmt.Errorf("clamp argument %d: %w", i+1, err)
		}
		values[i] = n
		integral = integral && isInt
	}
	out := math.Min(math.Max(values[0], values[1]), values[2])
	if integral {
		return int64(out), nil
	}
	return out, nil
}

func coalesceFunction(args ...any) (any, error) {
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if s, ok := arg.(string); ok && s == "" {
			continue
		}
		return arg, nil
	}
	return nil, nil
}

func splitListFunction(args ...any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("splitList expects 1 or 2 arguments, got %d", len(args))
	}
	if args[0] == nil {
		return []any{}, nil
	}
	s, err := scalarString(args[0])
	if err != nil {
		return nil, err
	}
	sep := ","
	if len(args) == 2 {
		if sep, err = scalarString(args[1]); err != nil {
			return nil, err
		}
	}
	out := []any{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

func joinListFunction(args ...any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("joinList expects 1 or 2 arguments, got %d", len(args))
	}
	sep := ","
	if len(args) == 2 {
		var err error
		if sep, err = scalarString(args[1]); err != nil {
			return nil, err
		}
	}
	var items []string
	switch list := args[0].(type) {
	case nil:
		return "", nil
	case []string:
		items = list
	case []any:
		items = make([]string, 0, len(list))
		for _, item := range list {
			if item == nil {
				continue
			}
			s, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
	default:
		s, err := scalarString(list)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return strings.Join(items, sep), nil
}

func toNumber(value any) (float64, bool, error) {
	switch v := value.(type) {
	case int:
		return float64(v), true, nil
	case int32:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case uint64:
		return float64(v), true, nil
	case float32:
		return float64(v), false, nil
	case float64:
		return v, v == math.Trunc(v), nil
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return float64(n), true, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", v)
		}
		return f, false, nil
	case fmt.Stringer:
		return toNumber(v.String())
	default:
		return 0, false, fmt.Errorf("not a number: %T", value)
	}
}
