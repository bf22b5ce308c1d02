package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

// Notifier receives publication events after the write that caused them has committed.
type Notifier interface {
	Publish(ctx context.Context, ev realtime.PublicationEvent) error
}

// notify never fails the caller: the write is already durable.
func notify(ctx context.Context, deps BaseDeps, n Notifier, kind realtime.EventKind, id uuid.UUID, at time.Time, source realtime.EventSource) {
	if n == nil {
		return
	}
	if source == "" {
		source = realtime.SourceManual
	}
	ev := realtime.PublicationEvent{Kind: kind, ID: id, At: at.UTC(), Source: source}
	if err := n.Publish(ctx, ev); err != nil {
		deps.Hooks.IncEvent(string(kind), "failed")
		deps.Log.Warn("publication event not delivered", "kind", kind, "id", id, "error", err)
		return
	}
	deps.Hooks.IncEvent(string(kind), "sent")
}
