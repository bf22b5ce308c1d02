package aggregates_test

import (
	"context"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
)

func newSchedulingAggregate(t *testing.T) (domainagg.SchedulingAggregate, *testutil.Env) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.NewMock()
	clk.Add(baseTime.Sub(clk.Now()))
	agg := aggregates.NewSchedulingAggregate(aggregates.SchedulingDeps{
		BaseDeps: aggregates.BaseDeps{DB: db, Log: log, Clock: clk},
		Lessons:  catalogrepo.NewLessonRepo(db, log),
		Terms:    catalogrepo.NewTermRepo(db, log),
	})
	return agg, &testutil.Env{Ctx: context.Background(), DB: db}
}

func TestClaimDueLessonsClaimsOnlyDueScheduledRows(t *testing.T) {
	agg, env := newSchedulingAggregate(t)
	programA := testutil.SeedProgram(t, env.Ctx, env.DB, "en")
	programB := testutil.SeedProgram(t, env.Ctx, env.DB, "en")
	termA := testutil.SeedTerm(t, env.Ctx, env.DB, programA.ID, 1)
	termB := testutil.SeedTerm(t, env.Ctx, env.DB, programB.ID, 1)

	dueA := testutil.SeedScheduledLesson(t, env.Ctx, env.DB, termA.ID, 1, baseTime.Add(-time.Second))
	dueA2 := testutil.SeedScheduledLesson(t, env.Ctx, env.DB, termA.ID, 2, baseTime.Add(-time.Hour))
	dueB := testutil.SeedScheduledLesson(t, env.Ctx, env.DB, termB.ID, 1, baseTime)
	future := testutil.SeedScheduledLesson(t, env.Ctx, env.DB, termB.ID, 2, baseTime.Add(time.Minute))
	testutil.SeedLesson(t, env.Ctx, env.DB, termB.ID, 3, "en")

	res, err := agg.ClaimDueLessons(env.Ctx, domainagg.ClaimDueLessonsInput{Now: baseTime})
	if err != nil {
		t.Fatalf("ClaimDueLessons: %v", err)
	}
	claimed := map[string]bool{}
	for _, l := range res.Lessons {
		claimed[l.ID.String()] = true
	}
	if len(claimed) != 3 || !claimed[dueA.ID.String()] || !claimed[dueA2.ID.String()] || !claimed[dueB.ID.String()] {
		t.Fatalf("claimed: %+v", res.Lessons)
	}
	if len(res.ProgramIDs) != 2 {
		t.Fatalf("programs: %+v", res.ProgramIDs)
	}

	var got catalog.Lesson
	if err := env.DB.First(&got, "id = ?", dueA.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != catalog.LessonPublished || got.PublishedAt == nil || !got.PublishedAt.Equal(baseTime) {
		t.Fatalf("claimed lesson: status=%s publishedAt=%v", got.Status, got.PublishedAt)
	}
	var stillScheduled catalog.Lesson
	if err := env.DB.First(&stillScheduled, "id = ?", future.ID).Error; err != nil {
		t.Fatalf("reload future: %v", err)
	}
	if stillScheduled.Status != catalog.LessonScheduled {
		t.Fatalf("future lesson claimed early")
	}

	again, err := agg.ClaimDueLessons(env.Ctx, domainagg.ClaimDueLessonsInput{Now: baseTime})
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if len(again.Lessons) != 0 || len(again.ProgramIDs) != 0 {
		t.Fatalf("second claim should be empty: %+v", again)
	}
}

func TestClaimDueLessonsRespectsLimit(t *testing.T) {
	agg, env := newSchedulingAggregate(t)
	program := testutil.SeedProgram(t, env.Ctx, env.DB, "en")
	term := testutil.SeedTerm(t, env.Ctx, env.DB, program.ID, 1)
	first := testutil.SeedScheduledLesson(t, env.Ctx, env.DB, term.ID, 1, baseTime.Add(-2*time.Hour))
	testutil.SeedScheduledLesson(t, env.Ctx, env.DB, term.ID, 2, baseTime.Add(-time.Hour))

	res, err := agg.ClaimDueLessons(env.Ctx, domainagg.ClaimDueLessonsInput{Now: baseTime, Limit: 1})
	if err != nil {
		t.Fatalf("ClaimDueLessons: %v", err)
	}
	if len(res.Lessons) != 1 || res.Lessons[0].ID != first.ID {
		t.Fatalf("oldest due lesson should be claimed first: %+v", res.Lessons)
	}
}

func TestCascadeProgramPublishedSkipsPosterGate(t *testing.T) {
	agg, env := newSchedulingAggregate(t)
	program := testutil.SeedProgram(t, env.Ctx, env.DB, "en")

	res, err := agg.CascadeProgramPublished(env.Ctx, domainagg.CascadeProgramInput{ProgramID: program.ID, Now: baseTime})
	if err != nil {
		t.Fatalf("CascadeProgramPublished: %v", err)
	}
	if !res.Promoted {
		t.Fatalf("program without posters should still be promoted")
	}
	var got catalog.Program
	if err := env.DB.First(&got, "id = ?", program.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != catalog.ProgramPublished || got.PublishedAt == nil || !got.PublishedAt.Equal(baseTime) {
		t.Fatalf("program: status=%s publishedAt=%v", got.Status, got.PublishedAt)
	}

	again, err := agg.CascadeProgramPublished(env.Ctx, domainagg.CascadeProgramInput{ProgramID: program.ID, Now: baseTime.Add(time.Hour)})
	if err != nil {
		t.Fatalf("second cascade: %v", err)
	}
	if again.Promoted {
		t.Fatalf("already published program must not be promoted twice")
	}
}

func TestCascadeProgramPublishedKeepsExistingPublishedAt(t *testing.T) {
	agg, env := newSchedulingAggregate(t)
	program := testutil.SeedProgram(t, env.Ctx, env.DB, "en")
	first := baseTime.Add(-30 * 24 * time.Hour)
	if err := env.DB.Model(&catalog.Program{}).Where("id = ?", program.ID).
		Updates(map[string]interface{}{"status": catalog.ProgramArchived, "published_at": first}).Error; err != nil {
		t.Fatalf("archive: %v", err)
	}

	res, err := agg.CascadeProgramPublished(env.Ctx, domainagg.CascadeProgramInput{ProgramID: program.ID, Now: baseTime})
	if err != nil || !res.Promoted {
		t.Fatalf("cascade: promoted=%v err=%v", res.Promoted, err)
	}
	var got catalog.Program
	if err := env.DB.First(&got, "id = ?", program.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(first) {
		t.Fatalf("publishedAt overwritten: %v", got.PublishedAt)
	}
}
