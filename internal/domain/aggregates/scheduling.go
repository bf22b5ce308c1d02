package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
)

var SchedulingAggregateContract = Contract{
	Name:                  "Catalog.SchedulingAggregate",
	TxScope:               TxPerStep,
	RunsPublishValidators: false,
	Notes:                 "Claim-and-publish of due lessons is one statement; each program cascade commits separately.",
}

// SchedulingAggregate owns time-triggered publication. Its writes skip the publish validators:
// a SCHEDULED lesson was accepted when it was scheduled, and a program cascades on its lessons alone.
type SchedulingAggregate interface {
	Aggregate

	// ClaimDueLessons moves up to Limit due SCHEDULED lessons to PUBLISHED. Rows another
	// claimant holds are skipped.
	ClaimDueLessons(ctx context.Context, in ClaimDueLessonsInput) (ClaimDueLessonsResult, error)

	// CascadeProgramPublished promotes a non-published program to PUBLISHED, keeping any existing publishedAt.
	CascadeProgramPublished(ctx context.Context, in CascadeProgramInput) (CascadeProgramResult, error)
}

type ClaimDueLessonsInput struct {
	Now   time.Time
	Limit int
}

type ClaimDueLessonsResult struct {
	Lessons []catalog.LessonRef
	// ProgramIDs are the distinct parents of Lessons.
	ProgramIDs []uuid.UUID
}

type CascadeProgramInput struct {
	ProgramID uuid.UUID
	Now       time.Time
}

type CascadeProgramResult struct {
	// Promoted is false when the program was already PUBLISHED (or gone).
	Promoted bool
}
