package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type CreateProgramInput struct {
	Title              string
	Description        string
	LanguagePrimary    catalog.LanguageCode
	LanguagesAvailable []catalog.LanguageCode
	TopicIDs           []uuid.UUID
	Posters            []catalog.AssetInput
}

type CreateTermInput struct {
	ProgramID   uuid.UUID
	TermNumber  int
	Title       string
	Description string
}

type UpdateTermInput struct {
	TermNumber  *int
	Title       *string
	Description *string
}

type CreateLessonInput struct {
	TermID                    uuid.UUID
	LessonNumber              int
	Title                     string
	Description               string
	ContentType               catalog.ContentType
	DurationMs                *int64
	IsPaid                    bool
	ContentLanguagePrimary    catalog.LanguageCode
	ContentLanguagesAvailable []catalog.LanguageCode
	ContentURLs               catalog.LanguageURLs
	SubtitleLanguages         []catalog.LanguageCode
	SubtitleURLs              catalog.LanguageURLs
	Thumbnails                []catalog.AssetInput
}

// LessonDetail is a lesson with its neighbours in program reading order.
type LessonDetail struct {
	Lesson       *catalog.Lesson
	ProgramID    uuid.UUID
	PrevLessonID *uuid.UUID
	NextLessonID *uuid.UUID
}

// ContentService is the editor-facing CRUD surface. Updates go through the publication aggregate.
type ContentService interface {
	ListTopics(ctx context.Context) ([]*catalog.Topic, error)
	CreateTopic(ctx context.Context, name string) (*catalog.Topic, error)

	ListPrograms(ctx context.Context, filter catalogrepo.ProgramFilter) ([]*catalog.Program, error)
	GetProgram(ctx context.Context, id uuid.UUID, role Role) (*catalog.Program, error)
	CreateProgram(ctx context.Context, in CreateProgramInput) (*catalog.Program, error)
	UpdateProgram(ctx context.Context, in domainagg.UpdateProgramInput) (domainagg.UpdateProgramResult, error)

	CreateTerm(ctx context.Context, in CreateTermInput) (*catalog.Term, error)
	UpdateTerm(ctx context.Context, id uuid.UUID, in UpdateTermInput) (*catalog.Term, error)

	GetLesson(ctx context.Context, id uuid.UUID, role Role) (LessonDetail, error)
	CreateLesson(ctx context.Context, in CreateLessonInput) (*catalog.Lesson, error)
	UpdateLesson(ctx context.Context, in domainagg.UpdateLessonInput) (domainagg.UpdateLessonResult, error)
}

type ContentServiceDeps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Topics      catalogrepo.TopicRepo
	Programs    catalogrepo.ProgramRepo
	Terms       catalogrepo.TermRepo
	Lessons     catalogrepo.LessonRepo
	Assets      catalogrepo.AssetRepo
	Publication domainagg.PublicationAggregate
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	topics      catalogrepo.TopicRepo
	programs    catalogrepo.ProgramRepo
	terms       catalogrepo.TermRepo
	lessons     catalogrepo.LessonRepo
	assets      catalogrepo.AssetRepo
	publication domainagg.PublicationAggregate
}

func NewContentService(deps ContentServiceDeps) ContentService {
	return &contentService{
		db:          deps.DB,
		log:         deps.Log.With("service", "ContentService"),
		topics:      deps.Topics,
		programs:    deps.Programs,
		terms:       deps.Terms,
		lessons:     deps.Lessons,
		assets:      deps.Assets,
		publication: deps.Publication,
	}
}

func (s *contentService) ListTopics(ctx context.Context) ([]*catalog.Topic, error) {
	return s.topics.List(dbctx.Context{Ctx: ctx})
}

func (s *contentService) CreateTopic(ctx context.Context, name string) (*catalog.Topic, error) {
	const op = "catalog.create_topic"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, aggregates.MapError(op, aggregates.ValidationError("topic name is required"))
	}
	topic := &catalog.Topic{Name: name}
	if err := s.topics.Create(dbctx.Context{Ctx: ctx}, topic); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return topic, nil
}

func (s *contentService) ListPrograms(ctx context.Context, filter catalogrepo.ProgramFilter) ([]*catalog.Program, error) {
	return s.programs.List(dbctx.Context{Ctx: ctx}, filter)
}

func (s *contentService) GetProgram(ctx context.Context, id uuid.UUID, role Role) (*catalog.Program, error) {
	p, err := s.programs.GetTree(dbctx.Context{Ctx: ctx}, id, catalogrepo.TreeOptions{
		PublishedLessonsOnly: !role.CanEdit(),
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, aggregates.NotFoundError("catalog.get_program", "program")
	}
	return p, nil
}

func (s *contentService) CreateProgram(ctx context.Context, in CreateProgramInput) (*catalog.Program, error) {
	const op = "catalog.create_program"
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, aggregates.MapError(op, aggregates.ValidationError("title is required"))
	}
	if in.LanguagePrimary == "" {
		return nil, aggregates.MapError(op, publishing.Invalid(publishing.ReasonInvalidLanguages, "languagePrimary is required"))
	}
	languages := uniqueLanguages(in.LanguagesAvailable).WithPrimary(in.LanguagePrimary)

	program := &catalog.Program{
		Title:              title,
		Description:        strings.TrimSpace(in.Description),
		LanguagePrimary:    in.LanguagePrimary,
		LanguagesAvailable: datatypes.NewJSONSlice([]catalog.LanguageCode(languages)),
		Status:             catalog.ProgramDraft,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.programs.Create(dbc, program); err != nil {
			return err
		}
		if len(in.TopicIDs) > 0 {
			ids := uniqueIDs(in.TopicIDs)
			topics, err := s.topics.GetByIDs(dbc, ids)
			if err != nil {
				return err
			}
			if len(topics) != len(ids) {
				return publishing.Invalid(publishing.ReasonUnknownTopic, "one or more topics do not exist")
			}
			if err := s.programs.ReplaceTopics(dbc, program.ID, topics); err != nil {
				return err
			}
		}
		if len(in.Posters) > 0 {
			rows := make([]*catalog.ProgramAsset, 0, len(in.Posters))
			for _, p := range in.Posters {
				rows = append(rows, &catalog.ProgramAsset{
					ProgramID: program.ID,
					Language:  p.Language,
					Variant:   p.Variant,
					AssetType: catalog.AssetPoster,
					URL:       strings.TrimSpace(p.URL),
				})
			}
			if err := s.assets.UpsertProgramAssets(dbc, rows); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.programs.GetByID(dbctx.Context{Ctx: ctx}, program.ID)
}

func (s *contentService) UpdateProgram(ctx context.Context, in domainagg.UpdateProgramInput) (domainagg.UpdateProgramResult, error) {
	return s.publication.UpdateProgram(ctx, in)
}

func (s *contentService) CreateTerm(ctx context.Context, in CreateTermInput) (*catalog.Term, error) {
	const op = "catalog.create_term"
	if in.TermNumber <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("termNumber must be positive"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	program, err := s.programs.GetByID(dbc, in.ProgramID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if program == nil {
		return nil, aggregates.NotFoundError(op, "program")
	}
	term := &catalog.Term{
		ProgramID:   in.ProgramID,
		TermNumber:  in.TermNumber,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.terms.Create(dbc, term); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return term, nil
}

func (s *contentService) UpdateTerm(ctx context.Context, id uuid.UUID, in UpdateTermInput) (*catalog.Term, error) {
	const op = "catalog.update_term"
	updates := map[string]interface{}{}
	if in.TermNumber != nil {
		if *in.TermNumber <= 0 {
			return nil, aggregates.MapError(op, aggregates.ValidationError("termNumber must be positive"))
		}
		updates["term_number"] = *in.TermNumber
	}
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	dbc := dbctx.Context{Ctx: ctx}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := s.terms.UpdateFields(dbc, id, updates); err != nil {
			return nil, aggregates.MapError(op, err)
		}
	}
	term, err := s.terms.GetByID(dbc, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if term == nil {
		return nil, aggregates.NotFoundError(op, "term")
	}
	return term, nil
}

func (s *contentService) GetLesson(ctx context.Context, id uuid.UUID, role Role) (LessonDetail, error) {
	const op = "catalog.get_lesson"
	dbc := dbctx.Context{Ctx: ctx}
	lesson, err := s.lessons.GetByID(dbc, id)
	if err != nil {
		return LessonDetail{}, aggregates.MapError(op, err)
	}
	if lesson == nil {
		return LessonDetail{}, aggregates.NotFoundError(op, "lesson")
	}
	if !role.CanEdit() && lesson.Status != catalog.LessonPublished {
		return LessonDetail{}, apierr.Forbidden("lesson is not published")
	}

	programID, err := s.lessons.ProgramIDOf(dbc, id)
	if err != nil {
		return LessonDetail{}, aggregates.MapError(op, err)
	}
	seq, err := s.lessons.ProgramSequence(dbc, programID)
	if err != nil {
		return LessonDetail{}, aggregates.MapError(op, err)
	}
	out := LessonDetail{Lesson: lesson, ProgramID: programID}
	out.PrevLessonID, out.NextLessonID = neighbours(seq, id, !role.CanEdit())
	return out, nil
}

// neighbours finds the lessons before and after id in reading order, skipping unpublished
// lessons when publishedOnly is set.
func neighbours(seq []catalogrepo.LessonPosition, id uuid.UUID, publishedOnly bool) (*uuid.UUID, *uuid.UUID) {
	visible := make([]catalogrepo.LessonPosition, 0, len(seq))
	for _, p := range seq {
		if p.ID == id || !publishedOnly || p.Status == catalog.LessonPublished {
			visible = append(visible, p)
		}
	}
	for i, p := range visible {
		if p.ID != id {
			continue
		}
		var prev, next *uuid.UUID
		if i > 0 {
			v := visible[i-1].ID
			prev = &v
		}
		if i+1 < len(visible) {
			v := visible[i+1].ID
			next = &v
		}
		return prev, next
	}
	return nil, nil
}

func (s *contentService) CreateLesson(ctx context.Context, in CreateLessonInput) (*catalog.Lesson, error) {
	const op = "catalog.create_lesson"
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, aggregates.MapError(op, aggregates.ValidationError("title is required"))
	}
	if in.LessonNumber <= 0 {
		return nil, aggregates.MapError(op, aggregates.ValidationError("lessonNumber must be positive"))
	}
	if in.ContentLanguagePrimary == "" {
		return nil, aggregates.MapError(op, publishing.Invalid(publishing.ReasonInvalidLanguages, "contentLanguagePrimary is required"))
	}
	if in.ContentType == "" {
		in.ContentType = catalog.ContentVideo
	}
	contentLangs := uniqueLanguages(in.ContentLanguagesAvailable).WithPrimary(in.ContentLanguagePrimary)
	if in.ContentURLs == nil {
		in.ContentURLs = catalog.LanguageURLs{}
	}
	if lang, ok := in.ContentURLs.KeysWithin(contentLangs); !ok {
		return nil, aggregates.MapError(op, publishing.Invalid(publishing.ReasonInvalidLanguages,
			"content url language %s is not in contentLanguagesAvailable", lang))
	}
	subtitleLangs := uniqueLanguages(in.SubtitleLanguages)
	if in.SubtitleURLs == nil {
		in.SubtitleURLs = catalog.LanguageURLs{}
	}
	if lang, ok := in.SubtitleURLs.KeysWithin(subtitleLangs); !ok {
		return nil, aggregates.MapError(op, publishing.Invalid(publishing.ReasonInvalidLanguages,
			"subtitle url language %s is not in subtitleLanguages", lang))
	}

	lesson := &catalog.Lesson{
		TermID:                    in.TermID,
		LessonNumber:              in.LessonNumber,
		Title:                     title,
		Description:               strings.TrimSpace(in.Description),
		ContentType:               in.ContentType,
		DurationMs:                in.DurationMs,
		IsPaid:                    in.IsPaid,
		ContentLanguagePrimary:    in.ContentLanguagePrimary,
		ContentLanguagesAvailable: datatypes.NewJSONSlice([]catalog.LanguageCode(contentLangs)),
		ContentURLsByLanguage:     datatypes.NewJSONType(in.ContentURLs),
		SubtitleLanguages:         datatypes.NewJSONSlice([]catalog.LanguageCode(subtitleLangs)),
		SubtitleURLsByLanguage:    datatypes.NewJSONType(in.SubtitleURLs),
		Status:                    catalog.LessonDraft,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		term, err := s.terms.GetByID(dbc, in.TermID)
		if err != nil {
			return err
		}
		if term == nil {
			return aggregates.NotFoundError(op, "term")
		}
		if err := s.lessons.Create(dbc, lesson); err != nil {
			return err
		}
		if len(in.Thumbnails) == 0 {
			return nil
		}
		rows := make([]*catalog.LessonAsset, 0, len(in.Thumbnails))
		for _, t := range in.Thumbnails {
			rows = append(rows, &catalog.LessonAsset{
				LessonID:  lesson.ID,
				Language:  t.Language,
				Variant:   t.Variant,
				AssetType: catalog.AssetThumbnail,
				URL:       strings.TrimSpace(t.URL),
			})
		}
		return s.assets.UpsertLessonAssets(dbc, rows)
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return s.lessons.GetByID(dbctx.Context{Ctx: ctx}, lesson.ID)
}

func (s *contentService) UpdateLesson(ctx context.Context, in domainagg.UpdateLessonInput) (domainagg.UpdateLessonResult, error) {
	return s.publication.UpdateLesson(ctx, in)
}

func uniqueLanguages(codes []catalog.LanguageCode) catalog.LanguageSet {
	out := make(catalog.LanguageSet, 0, len(codes))
	for _, c := range codes {
		if c != "" && !out.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
