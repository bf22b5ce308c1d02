package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *catalog.Topic {
	tb.Helper()
	t := &catalog.Topic{ID: uuid.New(), Name: name}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

func SeedProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, primary catalog.LanguageCode) *catalog.Program {
	tb.Helper()
	p := &catalog.Program{
		ID:                 uuid.New(),
		Title:              "program",
		Description:        "description",
		LanguagePrimary:    primary,
		LanguagesAvailable: datatypes.NewJSONSlice([]catalog.LanguageCode{primary}),
		Status:             catalog.ProgramDraft,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed program: %v", err)
	}
	return p
}

func SeedProgramPoster(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, lang catalog.LanguageCode, variant catalog.AssetVariant) *catalog.ProgramAsset {
	tb.Helper()
	a := &catalog.ProgramAsset{
		ID:        uuid.New(),
		ProgramID: programID,
		Language:  lang,
		Variant:   variant,
		AssetType: catalog.AssetPoster,
		URL:       "https://cdn.example/poster/" + string(lang) + "/" + string(variant),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed program poster: %v", err)
	}
	return a
}

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, programID uuid.UUID, number int) *catalog.Term {
	tb.Helper()
	t := &catalog.Term{
		ID:         uuid.New(),
		ProgramID:  programID,
		TermNumber: number,
		Title:      "term",
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return t
}

// SeedLesson creates a DRAFT lesson with a content URL for primary.
func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, termID uuid.UUID, number int, primary catalog.LanguageCode) *catalog.Lesson {
	tb.Helper()
	l := &catalog.Lesson{
		ID:                        uuid.New(),
		TermID:                    termID,
		LessonNumber:              number,
		Title:                     "lesson",
		Description:               "description",
		ContentType:               catalog.ContentVideo,
		ContentLanguagePrimary:    primary,
		ContentLanguagesAvailable: datatypes.NewJSONSlice([]catalog.LanguageCode{primary}),
		ContentURLsByLanguage:     datatypes.NewJSONType(catalog.LanguageURLs{primary: "https://cdn.example/video/" + string(primary)}),
		SubtitleLanguages:         datatypes.NewJSONSlice([]catalog.LanguageCode{}),
		SubtitleURLsByLanguage:    datatypes.NewJSONType(catalog.LanguageURLs{}),
		Status:                    catalog.LessonDraft,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedScheduledLesson creates a lesson already SCHEDULED for publishAt.
func SeedScheduledLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, termID uuid.UUID, number int, publishAt time.Time) *catalog.Lesson {
	tb.Helper()
	l := SeedLesson(tb, ctx, tx, termID, number, "en")
	at := publishAt.UTC()
	if err := tx.WithContext(ctx).Model(&catalog.Lesson{}).
		Where("id = ?", l.ID).
		Updates(map[string]interface{}{"status": catalog.LessonScheduled, "publish_at": at}).Error; err != nil {
		tb.Fatalf("schedule lesson: %v", err)
	}
	l.Status = catalog.LessonScheduled
	l.PublishAt = &at
	return l
}

func SeedLessonThumbnail(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, lang catalog.LanguageCode, variant catalog.AssetVariant) *catalog.LessonAsset {
	tb.Helper()
	a := &catalog.LessonAsset{
		ID:        uuid.New(),
		LessonID:  lessonID,
		Language:  lang,
		Variant:   variant,
		AssetType: catalog.AssetThumbnail,
		URL:       "https://cdn.example/thumb/" + string(lang) + "/" + string(variant),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed lesson thumbnail: %v", err)
	}
	return a
}
