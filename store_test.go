package routequery

import (
	"context"
	"sort"
)

type commitRecord struct {
	fields Query
	mode   Mode
}

// fakeStore is a minimal Store that records commits and delivers changes
// synchronously.
type fakeStore struct {
	doc       Query
	commits   []commitRecord
	commitErr error
	subs      map[string][]*fakeSub
}

type fakeSub struct {
	fn     func(RawValue) error
	active bool
}

func newFakeStore(doc Query) *fakeStore {
	if doc == nil {
		doc = Query{}
	}
	return &fakeStore{doc: doc, subs: map[string][]*fakeSub{}}
}

func (s *fakeStore) Read(name string) RawValue {
	return s.doc.Get(name)
}

func (s *fakeStore) Query() Query {
	return s.doc.Clone()
}

func (s *fakeStore) Subscribe(name string, fn func(RawValue) error) func() {
	sub := &fakeSub{fn: fn, active: true}
	s.subs[name] = append(s.subs[name], sub)
	return func() { sub.active = false }
}

func (s *fakeStore) Commit(_ context.Context, fields Query, mode Mode) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.commits = append(s.commits, commitRecord{fields: fields.Clone(), mode: mode})
	return s.replace(fields.Clone())
}

// set mutates one field from outside any synchronizer.
func (s *fakeStore) set(name string, value RawValue) error {
	next := s.doc.Clone()
	next[name] = value
	return s.replace(next.Compact())
}

func (s *fakeStore) replace(next Query) error {
	previous := s.doc
	s.doc = next
	var errs []error
	for _, name := range previous.Diff(next) {
		for _, sub := range s.subs[name] {
			if sub.active {
				if err := sub.fn(next.Get(name)); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return DeliveryErrors(errs...)
}

func (s *fakeStore) activeSubscribers() []string {
	var names []string
	for name, subs := range s.subs {
		for _, sub := range subs {
			if sub.active {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}
