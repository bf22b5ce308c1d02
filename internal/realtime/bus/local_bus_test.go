package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

func TestLocalBusDeliversToSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewLocalBus()
	var (
		mu  sync.Mutex
		got []realtime.PublicationEvent
	)
	if err := b.StartForwarder(ctx, func(ev realtime.PublicationEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	ev := realtime.PublicationEvent{
		Kind:   realtime.LessonPublished,
		ID:     uuid.New(),
		At:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source: realtime.SourceScheduler,
	}
	if err := b.Publish(ctx, ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != ev {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
}

func TestLocalBusClosedRejectsPublish(t *testing.T) {
	b := NewLocalBus()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Publish(context.Background(), realtime.PublicationEvent{Kind: realtime.ProgramPublished, ID: uuid.New()}); err == nil {
		t.Fatalf("expected error publishing on closed bus")
	}
}

func TestLocalBusRejectsInvalidEvents(t *testing.T) {
	b := NewLocalBus()
	delivered := 0
	if err := b.StartForwarder(context.Background(), func(realtime.PublicationEvent) { delivered++ }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	for _, ev := range []realtime.PublicationEvent{
		{Kind: realtime.LessonPublished},
		{Kind: "lesson.archived", ID: uuid.New()},
	} {
		if err := b.Publish(context.Background(), ev); err == nil {
			t.Fatalf("expected %+v to be rejected", ev)
		}
	}
	if delivered != 0 {
		t.Fatalf("invalid events delivered: %d", delivered)
	}
}
