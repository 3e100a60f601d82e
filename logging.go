package routequery

import "time"

// FlushEvent describes one coalesced commit attempt.
type FlushEvent struct {
	Batch    string
	Store    Store
	Fields   []string
	Mode     Mode
	Query    Query
	Duration time.Duration
	// Err is the commit error.
	Err error
	// DeliveryErr is returned by store subscribers after the commit landed.
	DeliveryErr error
	// ActivityErr is returned by activity hooks; it never fails a commit.
	ActivityErr error
}

// Logger records flush events.
type Logger interface {
	LogFlush(FlushEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(FlushEvent)

// LogFlush implements Logger.
func (f LoggerFunc) LogFlush(event FlushEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogFlush(FlushEvent) {}
