package activity

import (
	"context"
	"strings"
)

// Config controls activity emission. An empty Verbs list emits every verb.
type Config struct {
	Enabled bool
	Channel string
	Verbs   []string
}

// Emitter fans out events to hooks while applying defaults.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	verbs   map[string]struct{}
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "routequery"
	}
	var verbs map[string]struct{}
	for _, verb := range cfg.Verbs {
		if verb = strings.TrimSpace(verb); verb == "" {
			continue
		}
		if verbs == nil {
			verbs = map[string]struct{}{}
		}
		verbs[verb] = struct{}{}
	}
	normalizedHooks := cloneHooks(hooks)
	return &Emitter{
		hooks:   normalizedHooks,
		enabled: cfg.Enabled && len(normalizedHooks) > 0,
		channel: channel,
		verbs:   verbs,
	}
}

// Allows reports whether events with verb are forwarded.
func (e *Emitter) Allows(verb string) bool {
	if !e.Enabled() {
		return false
	}
	if e.verbs == nil {
		return true
	}
	_, ok := e.verbs[strings.TrimSpace(verb)]
	return ok
}

// Channel returns the channel applied to events that carry none.
func (e *Emitter) Channel() string {
	if e == nil {
		return ""
	}
	return e.channel
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit forwards the event to all hooks, applying default channel when missing.
// Filtered verbs are dropped silently.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Allows(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" && e.channel != "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

func cloneHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	return Hooks(normalized)
}
