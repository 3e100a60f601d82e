package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-routequery/pkg/activity"
	"github.com/goliatone/go-routequery/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsCommittedEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	event := activity.BuildQueryCommittedEvent(activity.QueryEventInput{
		UserID:     userID.String(),
		Batch:      "01HZXBATCH",
		Fields:     []string{"page", "sort"},
		Mode:       "push",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, record.UserID)
	}
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor, got %s", record.ActorID)
	}
	if record.Verb != "query.committed" || record.ObjectType != "query" || record.ObjectID != "01HZXBATCH" {
		t.Fatalf("unexpected record identity: %+v", record)
	}
	if record.Data["fields"] != "page,sort" {
		t.Fatalf("expected flattened fields, got %v", record.Data["fields"])
	}
	if record.Data["mode"] != "push" {
		t.Fatalf("expected mode data, got %v", record.Data["mode"])
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v, got %v", now, record.OccurredAt)
	}
}

func TestHookFallsBackToConfiguredActor(t *testing.T) {
	sink := &recordingSink{}
	actor := uuid.New()
	hook := usersink.Hook{Sink: sink, ActorID: actor.String()}

	event := activity.BuildFieldQueuedEvent(activity.QueryEventInput{Field: "page"})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != actor {
		t.Fatalf("expected fallback actor %s, got %s", actor, sink.records[0].ActorID)
	}
}

func TestHookSkipsIncompleteEventsAndNilSink(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("expected nil sink to be a no-op, got %v", err)
	}
	sink := &recordingSink{}
	if err := (usersink.Hook{Sink: sink}).Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("expected incomplete event to be skipped, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func TestHookReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	err := (usersink.Hook{Sink: sink}).Notify(context.Background(), activity.BuildQueryCommittedEvent(activity.QueryEventInput{Batch: "b"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
