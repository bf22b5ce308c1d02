// Package realtime carries publication events between the writers and the catalog readers.
package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	LessonPublished  EventKind = "lesson.published"
	ProgramPublished EventKind = "program.published"
)

type EventSource string

const (
	SourceManual    EventSource = "manual"
	SourceScheduler EventSource = "scheduler"
)

// PublicationEvent is emitted after an entity has committed a transition into PUBLISHED.
type PublicationEvent struct {
	Kind   EventKind   `json:"kind"`
	ID     uuid.UUID   `json:"id"`
	At     time.Time   `json:"at"`
	Source EventSource `json:"source"`
}

// Validate rejects events a reader could not act on.
func (e PublicationEvent) Validate() error {
	switch e.Kind {
	case LessonPublished, ProgramPublished:
	default:
		return fmt.Errorf("unknown publication event kind %q", e.Kind)
	}
	if e.ID == uuid.Nil {
		return fmt.Errorf("%s event without id", e.Kind)
	}
	return nil
}
