package activity

import (
	"context"
	"testing"
)

func TestBuildQueryCommittedEventCarriesBatchMetadata(t *testing.T) {
	fields := []string{"page", "sort"}
	meta := map[string]any{"custom": "value"}
	event := BuildQueryCommittedEvent(QueryEventInput{
		ActorID:  " actor ",
		Batch:    "01HZX",
		Fields:   fields,
		Mode:     "push",
		Location: "page=2&sort=asc",
		Metadata: meta,
	})

	if event.Verb != "query.committed" {
		t.Fatalf("expected verb query.committed, got %s", event.Verb)
	}
	if event.ObjectType != "query" || event.ObjectID != "01HZX" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["mode"] != "push" || event.Metadata["location"] != "page=2&sort=asc" {
		t.Fatalf("expected mode and location metadata, got %+v", event.Metadata)
	}
	got, ok := event.Metadata["fields"].([]string)
	if !ok || len(got) != 2 {
		t.Fatalf("expected fields metadata, got %v", event.Metadata["fields"])
	}
	got[0] = "changed"
	if fields[0] != "page" {
		t.Fatalf("expected input fields untouched, got %v", fields)
	}
	if _, exists := meta["batch"]; exists {
		t.Fatalf("expected input metadata untouched, got %v", meta)
	}
}

func TestBuildFieldQueuedEventFallsBackToField(t *testing.T) {
	event := BuildFieldQueuedEvent(QueryEventInput{Field: "page", NewValue: "2"})
	if event.Verb != "query.field.queued" || event.ObjectType != "query.field" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.ObjectID != "page" {
		t.Fatalf("expected field as object id, got %q", event.ObjectID)
	}
	if event.Metadata["new_value"] != "2" {
		t.Fatalf("expected new_value metadata, got %+v", event.Metadata)
	}
}

func TestBuildQueryEventDefaultsObjectID(t *testing.T) {
	event := BuildQueryCommittedEvent(QueryEventInput{})
	if event.ObjectID != "query" {
		t.Fatalf("expected fallback object id, got %q", event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected no metadata, got %+v", event.Metadata)
	}
}

func TestQueryEventsWorkWithHooks(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), BuildFieldQueuedEvent(QueryEventInput{Field: "q"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	verbs := capture.Verbs()
	if len(verbs) != 1 || verbs[0] != "query.field.queued" {
		t.Fatalf("expected captured verb, got %v", verbs)
	}
}
