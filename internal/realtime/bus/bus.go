package bus

import (
	"context"

	"github.com/yungbote/curriculum-backend/internal/realtime"
)

// Bus carries publication events from the writers (API and scheduler) to every API process.
type Bus interface {
	// Publish rejects invalid events; delivery is at most once.
	Publish(ctx context.Context, ev realtime.PublicationEvent) error
	// StartForwarder subscribes onEvent until ctx ends. It returns once the subscription is live.
	StartForwarder(ctx context.Context, onEvent func(ev realtime.PublicationEvent)) error
	Close() error
}
