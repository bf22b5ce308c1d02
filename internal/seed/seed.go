package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/realtime"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type Summary struct {
	Topics   int
	Programs int
	Terms    int
	Lessons  int
	// Published counts lessons and programs moved to PUBLISHED by the status pass.
	Published int
}

type Seeder struct {
	content services.ContentService
	log     *logger.Logger
}

func New(log *logger.Logger, content services.ContentService) *Seeder {
	return &Seeder{content: content, log: log.With("component", "Seeder")}
}

type pendingLesson struct {
	id      uuid.UUID
	fixture LessonFixture
}

type pendingProgram struct {
	id     uuid.UUID
	status string
}

// Apply creates everything as DRAFT, then moves lessons and programs to their fixture status.
// Lessons go first so a program's status never depends on its lessons being in place.
func (s *Seeder) Apply(ctx context.Context, fx Fixture) (Summary, error) {
	var sum Summary

	topicIDs, created, err := s.ensureTopics(ctx, fx)
	if err != nil {
		return sum, err
	}
	sum.Topics = created

	var lessons []pendingLesson
	var programs []pendingProgram
	for i, pf := range fx.Programs {
		program, err := s.createProgram(ctx, pf, topicIDs)
		if err != nil {
			return sum, fmt.Errorf("program %d (%s): %w", i, pf.Title, err)
		}
		sum.Programs++
		programs = append(programs, pendingProgram{id: program.ID, status: pf.Status})

		for _, tf := range pf.Terms {
			term, err := s.content.CreateTerm(ctx, services.CreateTermInput{
				ProgramID:   program.ID,
				TermNumber:  tf.Number,
				Title:       tf.Title,
				Description: tf.Description,
			})
			if err != nil {
				return sum, fmt.Errorf("program %s term %d: %w", pf.Title, tf.Number, err)
			}
			sum.Terms++

			for _, lf := range tf.Lessons {
				lesson, err := s.createLesson(ctx, term.ID, lf)
				if err != nil {
					return sum, fmt.Errorf("program %s term %d lesson %d: %w", pf.Title, tf.Number, lf.Number, err)
				}
				sum.Lessons++
				lessons = append(lessons, pendingLesson{id: lesson.ID, fixture: lf})
			}
		}
	}

	for _, l := range lessons {
		published, err := s.applyLessonStatus(ctx, l)
		if err != nil {
			return sum, fmt.Errorf("lesson %s status: %w", l.fixture.Title, err)
		}
		if published {
			sum.Published++
		}
	}
	for _, p := range programs {
		published, err := s.applyProgramStatus(ctx, p)
		if err != nil {
			return sum, fmt.Errorf("program %s status: %w", p.id, err)
		}
		if published {
			sum.Published++
		}
	}

	s.log.Info("Seed applied",
		"topics", sum.Topics, "programs", sum.Programs, "terms", sum.Terms,
		"lessons", sum.Lessons, "published", sum.Published)
	return sum, nil
}

// ensureTopics creates missing topics and returns every topic id by name.
func (s *Seeder) ensureTopics(ctx context.Context, fx Fixture) (map[string]uuid.UUID, int, error) {
	existing, err := s.content.ListTopics(ctx)
	if err != nil {
		return nil, 0, err
	}
	ids := make(map[string]uuid.UUID, len(existing))
	for _, t := range existing {
		ids[t.Name] = t.ID
	}

	names := append([]string{}, fx.Topics...)
	for _, pf := range fx.Programs {
		names = append(names, pf.Topics...)
	}
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := ids[name]; ok {
			continue
		}
		t, err := s.content.CreateTopic(ctx, name)
		if err != nil {
			return nil, created, fmt.Errorf("topic %s: %w", name, err)
		}
		ids[name] = t.ID
		created++
	}
	return ids, created, nil
}

func (s *Seeder) createProgram(ctx context.Context, pf ProgramFixture, topicIDs map[string]uuid.UUID) (*catalog.Program, error) {
	primary, err := catalog.ParseLanguage(pf.LanguagePrimary)
	if err != nil {
		return nil, err
	}
	langs, err := catalog.ParseLanguages(pf.LanguagesAvailable)
	if err != nil {
		return nil, err
	}
	posters, err := parseAssets(pf.Posters)
	if err != nil {
		return nil, err
	}
	in := services.CreateProgramInput{
		Title:              pf.Title,
		Description:        pf.Description,
		LanguagePrimary:    primary,
		LanguagesAvailable: langs,
		Posters:            posters,
	}
	for _, name := range pf.Topics {
		in.TopicIDs = append(in.TopicIDs, topicIDs[strings.TrimSpace(name)])
	}
	return s.content.CreateProgram(ctx, in)
}

func (s *Seeder) createLesson(ctx context.Context, termID uuid.UUID, lf LessonFixture) (*catalog.Lesson, error) {
	in := services.CreateLessonInput{
		TermID:       termID,
		LessonNumber: lf.Number,
		Title:        lf.Title,
		Description:  lf.Description,
		DurationMs:   lf.DurationMs,
		IsPaid:       lf.IsPaid,
	}
	if lf.ContentType != "" {
		ct, ok := catalog.ParseContentType(lf.ContentType)
		if !ok {
			return nil, fmt.Errorf("unknown content type %q", lf.ContentType)
		}
		in.ContentType = ct
	}
	var err error
	if in.ContentLanguagePrimary, err = catalog.ParseLanguage(lf.ContentLanguagePrimary); err != nil {
		return nil, err
	}
	if in.ContentLanguagesAvailable, err = catalog.ParseLanguages(lf.ContentLanguagesAvailable); err != nil {
		return nil, err
	}
	if in.ContentURLs, err = catalog.ParseLanguageURLs(lf.ContentURLsByLanguage); err != nil {
		return nil, err
	}
	if in.SubtitleLanguages, err = catalog.ParseLanguages(lf.SubtitleLanguages); err != nil {
		return nil, err
	}
	if in.SubtitleURLs, err = catalog.ParseLanguageURLs(lf.SubtitleURLsByLanguage); err != nil {
		return nil, err
	}
	if in.Thumbnails, err = parseAssets(lf.Thumbnails); err != nil {
		return nil, err
	}
	return s.content.CreateLesson(ctx, in)
}

func (s *Seeder) applyLessonStatus(ctx context.Context, l pendingLesson) (bool, error) {
	if l.fixture.Status == "" {
		return false, nil
	}
	status, ok := catalog.ParseLessonStatus(l.fixture.Status)
	if !ok {
		return false, fmt.Errorf("unknown lesson status %q", l.fixture.Status)
	}
	if status == catalog.LessonDraft {
		return false, nil
	}
	res, err := s.content.UpdateLesson(ctx, domainagg.UpdateLessonInput{
		LessonID:  l.id,
		Status:    &status,
		PublishAt: l.fixture.PublishAt,
		Source:    string(realtime.SourceManual),
	})
	if err != nil {
		return false, err
	}
	return res.Published, nil
}

func (s *Seeder) applyProgramStatus(ctx context.Context, p pendingProgram) (bool, error) {
	if p.status == "" {
		return false, nil
	}
	status, ok := catalog.ParseProgramStatus(p.status)
	if !ok {
		return false, fmt.Errorf("unknown program status %q", p.status)
	}
	if status == catalog.ProgramDraft {
		return false, nil
	}
	res, err := s.content.UpdateProgram(ctx, domainagg.UpdateProgramInput{
		ProgramID: p.id,
		Status:    &status,
		Source:    string(realtime.SourceManual),
	})
	if err != nil {
		return false, err
	}
	return res.Published, nil
}

func parseAssets(raw []AssetFixture) ([]catalog.AssetInput, error) {
	out := make([]catalog.AssetInput, 0, len(raw))
	for _, a := range raw {
		lang, err := catalog.ParseLanguage(a.Language)
		if err != nil {
			return nil, err
		}
		variant, ok := catalog.ParseAssetVariant(a.Variant)
		if !ok {
			return nil, fmt.Errorf("unknown asset variant %q", a.Variant)
		}
		out = append(out, catalog.AssetInput{Language: lang, Variant: variant, URL: a.URL})
	}
	return out, nil
}
