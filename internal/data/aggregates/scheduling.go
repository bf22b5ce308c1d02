package aggregates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
)

type SchedulingDeps struct {
	BaseDeps
	Lessons catalogrepo.LessonRepo
	Terms   catalogrepo.TermRepo
}

type schedulingAggregate struct {
	deps SchedulingDeps
}

func NewSchedulingAggregate(deps SchedulingDeps) domainagg.SchedulingAggregate {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	return &schedulingAggregate{deps: deps}
}

func (a *schedulingAggregate) Contract() domainagg.Contract {
	return domainagg.SchedulingAggregateContract
}

func (a *schedulingAggregate) ClaimDueLessons(ctx context.Context, in domainagg.ClaimDueLessonsInput) (domainagg.ClaimDueLessonsResult, error) {
	const op = "catalog.claim_due_lessons"
	now := in.Now
	if now.IsZero() {
		now = a.deps.Clock.Now()
	}
	now = now.UTC()

	var out domainagg.ClaimDueLessonsResult
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		claimed, err := a.deps.Lessons.ClaimDue(dbc, now, in.Limit)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		refs := make([]catalog.LessonRef, 0, len(claimed))
		termIDs := make([]uuid.UUID, 0, len(claimed))
		for _, l := range claimed {
			refs = append(refs, catalog.LessonRef{ID: l.ID, TermID: l.TermID})
			termIDs = append(termIDs, l.TermID)
		}
		programIDs, err := a.deps.Terms.ProgramIDsForTerms(dbc, termIDs)
		if err != nil {
			return err
		}
		out.Lessons = refs
		out.ProgramIDs = programIDs
		return nil
	})
	if err != nil {
		return domainagg.ClaimDueLessonsResult{}, err
	}
	return out, nil
}

func (a *schedulingAggregate) CascadeProgramPublished(ctx context.Context, in domainagg.CascadeProgramInput) (domainagg.CascadeProgramResult, error) {
	const op = "catalog.cascade_program_published"
	if in.ProgramID == uuid.Nil {
		return domainagg.CascadeProgramResult{}, MapError(op, ValidationError("program id is required"))
	}
	now := in.Now
	if now.IsZero() {
		now = a.deps.Clock.Now()
	}
	now = now.UTC()

	var out domainagg.CascadeProgramResult
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		promoted, err := Transition(a.deps.Guard, dbc, catalog.Program{}, in.ProgramID,
			[]catalog.ProgramStatus{catalog.ProgramDraft, catalog.ProgramArchived},
			map[string]any{
				"status":       string(catalog.ProgramPublished),
				"published_at": gorm.Expr("COALESCE(published_at, ?)", now),
				"updated_at":   now,
			})
		if err != nil {
			return err
		}
		out.Promoted = promoted
		return nil
	})
	if err != nil {
		return domainagg.CascadeProgramResult{}, err
	}
	return out, nil
}
