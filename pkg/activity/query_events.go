package activity

import (
	"strings"
	"time"
)

// Verbs emitted for query documents.
const (
	VerbQueryCommitted   = "query.committed"
	VerbQueryFieldQueued = "query.field.queued"
)

// QueryEventInput describes the common fields for query document events.
type QueryEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Batch      string
	Field      string
	Fields     []string
	Mode       string
	Location   string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildQueryCommittedEvent describes one coalesced commit of pending fields.
func BuildQueryCommittedEvent(input QueryEventInput) Event {
	return buildQueryEvent(VerbQueryCommitted, "query", input)
}

// BuildFieldQueuedEvent describes a single field write entering the queue.
func BuildFieldQueuedEvent(input QueryEventInput) Event {
	return buildQueryEvent(VerbQueryFieldQueued, "query.field", input)
}

func buildQueryEvent(verb, objectType string, input QueryEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.Batch != "" {
		set("batch", input.Batch)
	}
	if input.Field != "" {
		set("field", input.Field)
	}
	if len(input.Fields) > 0 {
		set("fields", append([]string{}, input.Fields...))
	}
	if input.Mode != "" {
		set("mode", input.Mode)
	}
	if input.Location != "" {
		set("location", input.Location)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectID := strings.TrimSpace(input.Batch)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Field)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
