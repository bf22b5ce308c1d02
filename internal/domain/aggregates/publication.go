package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
)

var PublicationAggregateContract = Contract{
	Name:                  "Catalog.PublicationAggregate",
	TxScope:               TxPerCall,
	RunsPublishValidators: true,
	Notes:                 "Owns atomic field/asset/topic updates and status transitions for lessons and programs.",
}

// PublicationAggregate owns lesson and program status transitions.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation (Reason set), CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type PublicationAggregate interface {
	Aggregate

	// UpdateLesson applies the patch, reconciles thumbnails and validates a PUBLISHED target
	// in one transaction. Nothing is written when any step fails.
	UpdateLesson(ctx context.Context, in UpdateLessonInput) (UpdateLessonResult, error)

	// UpdateProgram applies the patch, upserts posters, replaces topics and validates a PUBLISHED
	// target in one transaction.
	UpdateProgram(ctx context.Context, in UpdateProgramInput) (UpdateProgramResult, error)
}

// UpdateLessonInput is a sparse patch: nil fields are left untouched.
type UpdateLessonInput struct {
	LessonID uuid.UUID

	Title        *string
	Description  *string
	LessonNumber *int
	DurationMs   *int64
	IsPaid       *bool

	ContentLanguagesAvailable *[]catalog.LanguageCode
	ContentURLs               *catalog.LanguageURLs
	SubtitleLanguages         *[]catalog.LanguageCode
	SubtitleURLs              *catalog.LanguageURLs

	Status    *catalog.LessonStatus
	PublishAt *time.Time

	// Thumbnails, when set, is the full desired THUMBNAIL set; absent (language, variant) pairs are deleted.
	Thumbnails *[]catalog.AssetInput

	// Source tags publication events ("manual" when empty).
	Source string
}

type UpdateLessonResult struct {
	Lesson catalog.Lesson
	// Published is true when this call moved the lesson into PUBLISHED.
	Published bool
}

type UpdateProgramInput struct {
	ProgramID uuid.UUID

	Title              *string
	Description        *string
	LanguagePrimary    *catalog.LanguageCode
	LanguagesAvailable *[]catalog.LanguageCode

	Status *catalog.ProgramStatus

	// TopicIDs, when set, replaces the program's topic set.
	TopicIDs *[]uuid.UUID
	// Posters are upserted by (language, variant); existing posters not listed are kept.
	Posters *[]catalog.AssetInput

	Source string
}

type UpdateProgramResult struct {
	Program   catalog.Program
	Published bool
}
