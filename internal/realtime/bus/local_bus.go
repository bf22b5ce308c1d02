package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/curriculum-backend/internal/realtime"
)

// localBus fans events out to in-process subscribers. Used when no redis is configured.
type localBus struct {
	mu     sync.RWMutex
	subs   map[int]func(realtime.PublicationEvent)
	nextID int
	closed bool
}

func NewLocalBus() Bus {
	return &localBus{subs: map[int]func(realtime.PublicationEvent){}}
}

func (b *localBus) Publish(ctx context.Context, ev realtime.PublicationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("local bus closed")
	}
	for _, fn := range b.subs {
		fn(ev)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.PublicationEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("local bus closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(realtime.PublicationEvent){}
	return nil
}
