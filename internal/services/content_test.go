package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
)

func newContentService(t *testing.T) (ContentService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	programs := catalogrepo.NewProgramRepo(db, log)
	lessons := catalogrepo.NewLessonRepo(db, log)
	assets := catalogrepo.NewAssetRepo(db, log)
	topics := catalogrepo.NewTopicRepo(db, log)
	pub := aggregates.NewPublicationAggregate(aggregates.PublicationDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log},
		Programs: programs,
		Lessons:  lessons,
		Assets:   assets,
		Topics:   topics,
	})
	return NewContentService(ContentServiceDeps{
		DB:          db,
		Log:         log,
		Topics:      topics,
		Programs:    programs,
		Terms:       catalogrepo.NewTermRepo(db, log),
		Lessons:     lessons,
		Assets:      assets,
		Publication: pub,
	}), db
}

func TestCreateProgramAddsPrimaryLanguageAndTopics(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()
	topic, err := svc.CreateTopic(ctx, "Science")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	p, err := svc.CreateProgram(ctx, CreateProgramInput{
		Title:              "Physics",
		LanguagePrimary:    "en",
		LanguagesAvailable: []catalog.LanguageCode{"te"},
		TopicIDs:           []uuid.UUID{topic.ID, topic.ID},
		Posters: []catalog.AssetInput{
			{Language: "en", Variant: catalog.VariantPortrait, URL: "https://cdn.example/p.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if p.Status != catalog.ProgramDraft {
		t.Fatalf("status=%s", p.Status)
	}
	langs := p.Languages()
	if len(langs) != 2 || langs[0] != "en" {
		t.Fatalf("languages=%v", langs)
	}
	if len(p.Topics) != 1 || len(p.Assets) != 1 {
		t.Fatalf("topics=%d assets=%d", len(p.Topics), len(p.Assets))
	}
}

func TestCreateTopicDuplicateIsConflict(t *testing.T) {
	svc, _ := newContentService(t)
	ctx := context.Background()
	if _, err := svc.CreateTopic(ctx, "Math"); err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	_, err := svc.CreateTopic(ctx, "Math")
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateLessonRejectsUrlOutsideLanguages(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, db, "en")
	term := testutil.SeedTerm(t, ctx, db, program.ID, 1)

	_, err := svc.CreateLesson(ctx, CreateLessonInput{
		TermID:                 term.ID,
		LessonNumber:           1,
		Title:                  "Intro",
		ContentLanguagePrimary: "en",
		ContentURLs:            catalog.LanguageURLs{"hi": "https://x"},
	})
	if got := domainagg.ReasonOf(err); got != string(publishing.ReasonInvalidLanguages) {
		t.Fatalf("reason=%q err=%v", got, err)
	}

	l, err := svc.CreateLesson(ctx, CreateLessonInput{
		TermID:                 term.ID,
		LessonNumber:           1,
		Title:                  "Intro",
		ContentLanguagePrimary: "en",
		ContentURLs:            catalog.LanguageURLs{"en": "https://x"},
		Thumbnails: []catalog.AssetInput{
			{Language: "en", Variant: catalog.VariantPortrait, URL: "https://cdn.example/p.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	if l.Status != catalog.LessonDraft || !l.ContentLanguages().Contains("en") || len(l.Assets) != 1 {
		t.Fatalf("lesson: %+v", l)
	}
}

func TestCreateLessonUnknownTermIsNotFound(t *testing.T) {
	svc, _ := newContentService(t)
	_, err := svc.CreateLesson(context.Background(), CreateLessonInput{
		TermID:                 uuid.New(),
		LessonNumber:           1,
		Title:                  "Intro",
		ContentLanguagePrimary: "en",
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestGetLessonNeighboursFollowReadingOrder(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, db, "en")
	term2 := testutil.SeedTerm(t, ctx, db, program.ID, 2)
	term1 := testutil.SeedTerm(t, ctx, db, program.ID, 1)
	a := testutil.SeedLesson(t, ctx, db, term1.ID, 1, "en")
	b := testutil.SeedLesson(t, ctx, db, term1.ID, 2, "en")
	c := testutil.SeedLesson(t, ctx, db, term2.ID, 1, "en")
	for _, id := range []uuid.UUID{a.ID, c.ID} {
		if err := db.Model(&catalog.Lesson{}).Where("id = ?", id).Update("status", catalog.LessonPublished).Error; err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	detail, err := svc.GetLesson(ctx, b.ID, RoleEditor)
	if err != nil {
		t.Fatalf("GetLesson editor: %v", err)
	}
	if detail.PrevLessonID == nil || *detail.PrevLessonID != a.ID || detail.NextLessonID == nil || *detail.NextLessonID != c.ID {
		t.Fatalf("editor neighbours: prev=%v next=%v", detail.PrevLessonID, detail.NextLessonID)
	}

	detail, err = svc.GetLesson(ctx, a.ID, RoleViewer)
	if err != nil {
		t.Fatalf("GetLesson viewer: %v", err)
	}
	if detail.PrevLessonID != nil || detail.NextLessonID == nil || *detail.NextLessonID != c.ID {
		t.Fatalf("viewer should skip the draft lesson: prev=%v next=%v", detail.PrevLessonID, detail.NextLessonID)
	}

	_, err = svc.GetLesson(ctx, b.ID, RoleViewer)
	apiErr, ok := err.(*apierr.Error)
	if !ok || apiErr.Status != http.StatusForbidden {
		t.Fatalf("viewer on draft lesson: %v", err)
	}
}

func TestGetProgramHidesDraftLessonsFromViewers(t *testing.T) {
	svc, db := newContentService(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, db, "en")
	term := testutil.SeedTerm(t, ctx, db, program.ID, 1)
	published := testutil.SeedLesson(t, ctx, db, term.ID, 1, "en")
	testutil.SeedLesson(t, ctx, db, term.ID, 2, "en")
	if err := db.Model(&catalog.Lesson{}).Where("id = ?", published.ID).Update("status", catalog.LessonPublished).Error; err != nil {
		t.Fatalf("publish: %v", err)
	}

	editorView, err := svc.GetProgram(ctx, program.ID, RoleAdmin)
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	viewerView, err := svc.GetProgram(ctx, program.ID, RoleViewer)
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if n := len(editorView.Terms[0].Lessons); n != 2 {
		t.Fatalf("editor lessons=%d", n)
	}
	if n := len(viewerView.Terms[0].Lessons); n != 1 {
		t.Fatalf("viewer lessons=%d", n)
	}

	if _, err := svc.GetProgram(ctx, uuid.New(), RoleAdmin); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
