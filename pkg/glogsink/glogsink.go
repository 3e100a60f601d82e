// Package glogsink writes routequery flush events to github.com/golang/glog.
package glogsink

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	routequery "github.com/goliatone/go-routequery"
)

// Logger implements routequery.Logger. Successful flushes are logged at the
// configured verbosity, failures always through glog.Errorf.
type Logger struct {
	tag    string
	level  glog.Level
	infof  func(level glog.Level, format string, args ...any)
	errorf func(format string, args ...any)
}

// Option configures a Logger.
type Option func(*Logger)

// WithTag sets the bracketed prefix (default "rq").
func WithTag(tag string) Option {
	return func(l *Logger) {
		if tag != "" {
			l.tag = tag
		}
	}
}

// WithVerbosity sets the glog verbosity of successful flushes (default 2).
func WithVerbosity(level glog.Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// New builds a glog backed flush logger.
func New(opts ...Option) *Logger {
	l := &Logger{
		tag:   "rq",
		level: 2,
		infof: func(level glog.Level, format string, args ...any) {
			glog.V(level).Infof(format, args...)
		},
		errorf: glog.Errorf,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

var _ routequery.Logger = (*Logger)(nil)

// LogFlush implements routequery.Logger.
func (l *Logger) LogFlush(event routequery.FlushEvent) {
	fields := strings.Join(event.Fields, ",")
	if event.Err != nil {
		l.errorf("[%s]%s commit %s (%s) error = %s\n", l.tag, event.Batch, fields, event.Mode, event.Err)
	} else if event.Batch != "" {
		l.infof(l.level, "[%s]%s commit %s (%s) = %s in %s\n", l.tag, event.Batch, fields, event.Mode, event.Query.Encode(), event.Duration)
	}
	if event.DeliveryErr != nil {
		l.errorf("[%s]%s delivery %s error = %s\n", l.tag, batchOrField(event), fields, event.DeliveryErr)
	}
	if event.ActivityErr != nil {
		l.errorf("[%s]%s activity %s error = %s\n", l.tag, batchOrField(event), fields, event.ActivityErr)
	}
}

func batchOrField(event routequery.FlushEvent) string {
	if event.Batch != "" {
		return event.Batch
	}
	return fmt.Sprintf("queue(%d)", len(event.Fields))
}
