package history

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	routequery "github.com/goliatone/go-routequery"
)

// Memory is a navigable history of locations.
type Memory struct {
	now    func() time.Time
	nextID func() string

	mu          sync.RWMutex // protects entries, index, commits and subscribers
	entries     []Entry
	index       int
	commits     int
	subscribers map[string]map[int]func(routequery.RawValue) error
	nextSub     int
}

var _ routequery.Store = (*Memory)(nil)

// NewMemory starts a history at location ("/path?query").
func NewMemory(location string, opts ...MemoryOption) (*Memory, error) {
	m := &Memory{
		now:         time.Now,
		nextID:      uuid.NewString,
		subscribers: map[string]map[int]func(routequery.RawValue) error{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	entry, err := m.parse(location)
	if err != nil {
		return nil, err
	}
	if entry.Path == "" {
		entry.Path = "/"
	}
	m.entries = []Entry{entry}
	return m, nil
}

// MustMemory is NewMemory that panics on a malformed location.
func MustMemory(location string, opts ...MemoryOption) *Memory {
	m, err := NewMemory(location, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Memory) parse(location string) (Entry, error) {
	if location == "" {
		return Entry{}, ErrLocationRequired
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return Entry{}, fmt.Errorf("history: parse location %q: %w", location, err)
	}
	query, err := routequery.ParseQuery(parsed.RawQuery)
	if err != nil {
		return Entry{}, fmt.Errorf("history: parse location %q: %w", location, err)
	}
	return Entry{
		ID:        m.nextID(),
		Path:      parsed.Path,
		Query:     query,
		CreatedAt: m.now(),
	}, nil
}

// Read returns the current value of name.
func (m *Memory) Read(name string) routequery.RawValue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.index].Query.Get(name)
}

// Query returns a copy of the current document.
func (m *Memory) Query() routequery.Query {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.index].Query.Clone()
}

// Subscribe registers fn for changes of name.
func (m *Memory) Subscribe(name string, fn func(routequery.RawValue) error) func() {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	if m.subscribers[name] == nil {
		m.subscribers[name] = map[int]func(routequery.RawValue) error{}
	}
	m.subscribers[name][id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers[name], id)
			if len(m.subscribers[name]) == 0 {
				delete(m.subscribers, name)
			}
			m.mu.Unlock()
		})
	}
}

// Commit replaces the current document with fields, in a new entry for
// ModePush or in place for ModeReplace.
func (m *Memory) Commit(ctx context.Context, fields routequery.Query, mode routequery.Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.commits++
	path := m.entries[m.index].Path
	m.mu.Unlock()
	return m.apply(Entry{Path: path, Query: fields.Clone()}, mode)
}

// Navigate moves to location as an external change. A location without a
// path ("?page=2") keeps the current path.
func (m *Memory) Navigate(location string, mode routequery.Mode) error {
	entry, err := m.parse(location)
	if err != nil {
		return err
	}
	if entry.Path == "" {
		m.mu.RLock()
		entry.Path = m.entries[m.index].Path
		m.mu.RUnlock()
	}
	return m.apply(entry, mode)
}

// Set changes one field of the current entry in place as an external change.
// A Missing value removes the field.
func (m *Memory) Set(name string, value routequery.RawValue) error {
	m.mu.RLock()
	current := m.entries[m.index].clone()
	m.mu.RUnlock()
	current.Query[name] = value
	current.Query.Compact()
	return m.apply(current, routequery.ModeReplace)
}

func (m *Memory) apply(entry Entry, mode routequery.Mode) error {
	m.mu.Lock()
	previous := m.entries[m.index].Query
	if entry.ID == "" {
		entry.ID = m.nextID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	if entry.Query == nil {
		entry.Query = routequery.Query{}
	}
	if mode == routequery.ModePush {
		m.entries = append(m.entries[:m.index+1], entry)
		m.index++
	} else {
		entry.ID = m.entries[m.index].ID
		m.entries[m.index] = entry
	}
	m.mu.Unlock()
	return m.notify(previous, entry.Query)
}

// Back moves to the previous entry.
func (m *Memory) Back() error {
	return m.move(-1)
}

// Forward moves to the next entry.
func (m *Memory) Forward() error {
	return m.move(1)
}

func (m *Memory) move(delta int) error {
	m.mu.Lock()
	target := m.index + delta
	if target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return ErrHistoryBoundary
	}
	previous := m.entries[m.index].Query
	m.index = target
	next := m.entries[m.index].Query
	m.mu.Unlock()
	return m.notify(previous, next)
}

func (m *Memory) notify(previous, next routequery.Query) error {
	changed := previous.Diff(next)
	if len(changed) == 0 {
		return nil
	}

	type delivery struct {
		value routequery.RawValue
		fns   []func(routequery.RawValue) error
	}
	m.mu.RLock()
	deliveries := make([]delivery, 0, len(changed))
	for _, name := range changed {
		subs := m.subscribers[name]
		if len(subs) == 0 {
			continue
		}
		ids := make([]int, 0, len(subs))
		for id := range subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fns := make([]func(routequery.RawValue) error, len(ids))
		for i, id := range ids {
			fns[i] = subs[id]
		}
		deliveries = append(deliveries, delivery{value: next.Get(name), fns: fns})
	}
	m.mu.RUnlock()

	var errs []error
	for _, d := range deliveries {
		for _, fn := range d.fns {
			if err := fn(d.value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return routequery.DeliveryErrors(errs...)
}

// Location renders the current entry.
func (m *Memory) Location() string {
	return m.Current().Location()
}

// Current returns a copy of the current entry.
func (m *Memory) Current() Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[m.index].clone()
}

// Entries returns copies of every entry, oldest first.
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	for i, entry := range m.entries {
		out[i] = entry.clone()
	}
	return out
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index
}

// Commits returns how many times Commit was called.
func (m *Memory) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}
