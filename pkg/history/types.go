package history

import (
	"errors"
	"time"

	routequery "github.com/goliatone/go-routequery"
)

var (
	// ErrHistoryBoundary indicates Back or Forward past the first or last entry.
	ErrHistoryBoundary = errors.New("history: no entry in that direction")
	// ErrLocationRequired indicates an empty location.
	ErrLocationRequired = errors.New("history: location is required")
)

// Entry is one navigable location.
type Entry struct {
	ID        string
	Path      string
	Query     routequery.Query
	CreatedAt time.Time
}

// Location renders the entry as path?query.
func (e Entry) Location() string {
	encoded := e.Query.Encode()
	if encoded == "" {
		return e.Path
	}
	return e.Path + "?" + encoded
}

func (e Entry) clone() Entry {
	out := e
	out.Query = e.Query.Clone()
	return out
}

// MemoryOption configures a Memory history.
type MemoryOption func(*Memory)

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides the entry id source (default random UUIDs).
func WithIDGenerator(next func() string) MemoryOption {
	return func(m *Memory) {
		if next != nil {
			m.nextID = next
		}
	}
}
