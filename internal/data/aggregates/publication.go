package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

type PublicationDeps struct {
	BaseDeps
	Programs catalogrepo.ProgramRepo
	Lessons  catalogrepo.LessonRepo
	Assets   catalogrepo.AssetRepo
	Topics   catalogrepo.TopicRepo
	Notifier Notifier
}

type publicationAggregate struct {
	deps PublicationDeps
}

func NewPublicationAggregate(deps PublicationDeps) domainagg.PublicationAggregate {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	return &publicationAggregate{deps: deps}
}

func (a *publicationAggregate) Contract() domainagg.Contract {
	return domainagg.PublicationAggregateContract
}

func (a *publicationAggregate) UpdateLesson(ctx context.Context, in domainagg.UpdateLessonInput) (domainagg.UpdateLessonResult, error) {
	const op = "catalog.update_lesson"
	if in.LessonID == uuid.Nil {
		return domainagg.UpdateLessonResult{}, MapError(op, ValidationError("lesson id is required"))
	}
	now := a.deps.Clock.Now().UTC()

	var out domainagg.UpdateLessonResult
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Lessons.LockByID(dbc, in.LessonID)
		if err != nil {
			return err
		}
		if current == nil {
			return NotFoundError(op, "lesson")
		}

		updates, target, err := planLessonUpdate(current, in, now)
		if err != nil {
			return err
		}
		if target != current.Status {
			moved, err := Transition(a.deps.Guard, dbc, catalog.Lesson{}, current.ID, []catalog.LessonStatus{current.Status}, updates)
			if err != nil {
				return err
			}
			if !moved {
				return domainagg.NewError(domainagg.CodeConflict, op, "lesson status changed concurrently", nil)
			}
		} else if err := a.deps.Lessons.UpdateFields(dbc, current.ID, updates); err != nil {
			return err
		}
		if in.Thumbnails != nil {
			if err := a.reconcileThumbnails(dbc, current.ID, *in.Thumbnails); err != nil {
				return err
			}
		}

		merged, err := a.deps.Lessons.GetByID(dbc, current.ID)
		if err != nil {
			return err
		}
		if merged == nil {
			return NotFoundError(op, "lesson")
		}
		// Validated against the merged state; any failure rolls back every write above.
		if in.Status != nil && *in.Status == catalog.LessonPublished {
			if err := publishing.ValidateLessonPublishable(merged); err != nil {
				return err
			}
		}
		out.Lesson = *merged
		out.Published = target == catalog.LessonPublished && current.Status != catalog.LessonPublished
		return nil
	})
	if err != nil {
		return domainagg.UpdateLessonResult{}, err
	}
	if out.Published {
		notify(ctx, a.deps.BaseDeps, a.deps.Notifier, realtime.LessonPublished, out.Lesson.ID, now, realtime.EventSource(in.Source))
	}
	return out, nil
}

func (a *publicationAggregate) UpdateProgram(ctx context.Context, in domainagg.UpdateProgramInput) (domainagg.UpdateProgramResult, error) {
	const op = "catalog.update_program"
	if in.ProgramID == uuid.Nil {
		return domainagg.UpdateProgramResult{}, MapError(op, ValidationError("program id is required"))
	}
	now := a.deps.Clock.Now().UTC()

	var out domainagg.UpdateProgramResult
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		current, err := a.deps.Programs.LockByID(dbc, in.ProgramID)
		if err != nil {
			return err
		}
		if current == nil {
			return NotFoundError(op, "program")
		}

		updates, target, err := planProgramUpdate(current, in, now)
		if err != nil {
			return err
		}
		if target != current.Status {
			moved, err := Transition(a.deps.Guard, dbc, catalog.Program{}, current.ID, []catalog.ProgramStatus{current.Status}, updates)
			if err != nil {
				return err
			}
			if !moved {
				return domainagg.NewError(domainagg.CodeConflict, op, "program status changed concurrently", nil)
			}
		} else if err := a.deps.Programs.UpdateFields(dbc, current.ID, updates); err != nil {
			return err
		}
		if in.TopicIDs != nil {
			if err := a.replaceTopics(dbc, current.ID, *in.TopicIDs); err != nil {
				return err
			}
		}
		if in.Posters != nil {
			if err := a.upsertPosters(dbc, current.ID, *in.Posters); err != nil {
				return err
			}
		}

		merged, err := a.deps.Programs.GetByID(dbc, current.ID)
		if err != nil {
			return err
		}
		if merged == nil {
			return NotFoundError(op, "program")
		}
		if in.Status != nil && *in.Status == catalog.ProgramPublished {
			if err := publishing.ValidateProgramPublishable(merged); err != nil {
				return err
			}
		}
		out.Program = *merged
		out.Published = target == catalog.ProgramPublished && current.Status != catalog.ProgramPublished
		return nil
	})
	if err != nil {
		return domainagg.UpdateProgramResult{}, err
	}
	if out.Published {
		notify(ctx, a.deps.BaseDeps, a.deps.Notifier, realtime.ProgramPublished, out.Program.ID, now, realtime.EventSource(in.Source))
	}
	return out, nil
}

// planLessonUpdate turns the patch into column updates, enforcing the transition table,
// the publishAt rule and the language invariants. It does not touch the store.
func planLessonUpdate(current *catalog.Lesson, in domainagg.UpdateLessonInput, now time.Time) (map[string]interface{}, catalog.LessonStatus, error) {
	updates := map[string]interface{}{}

	target := current.Status
	if in.Status != nil {
		target = *in.Status
		if !catalog.CanTransitionLesson(current.Status, target) {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidTransition,
				"cannot move lesson from %s to %s", current.Status, target)
		}
	}

	publishAt := current.PublishAt
	if in.PublishAt != nil {
		at := in.PublishAt.UTC()
		publishAt = &at
		updates["publish_at"] = at
	}
	if target == catalog.LessonScheduled && (target != current.Status || in.PublishAt != nil) {
		if publishAt == nil {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidPublishAt, "publishAt is required to schedule a lesson")
		}
		if !publishAt.After(now) {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidPublishAt,
				"publishAt %s must be in the future", publishAt.Format(time.RFC3339))
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, "", ValidationError("title must not be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.LessonNumber != nil {
		if *in.LessonNumber <= 0 {
			return nil, "", ValidationError("lessonNumber must be positive")
		}
		updates["lesson_number"] = *in.LessonNumber
	}
	if in.DurationMs != nil {
		if *in.DurationMs < 0 {
			return nil, "", ValidationError("durationMs must not be negative")
		}
		updates["duration_ms"] = *in.DurationMs
	}
	if in.IsPaid != nil {
		updates["is_paid"] = *in.IsPaid
	}

	if in.ContentLanguagesAvailable != nil || in.ContentURLs != nil {
		languages := current.ContentLanguages()
		if in.ContentLanguagesAvailable != nil {
			languages = dedupe(*in.ContentLanguagesAvailable).WithPrimary(current.ContentLanguagePrimary)
			updates["content_languages_available"] = datatypes.NewJSONSlice([]catalog.LanguageCode(languages))
		}
		urls := current.ContentURLs()
		if in.ContentURLs != nil {
			urls = *in.ContentURLs
			updates["content_urls_by_language"] = datatypes.NewJSONType(urls)
		}
		if lang, ok := urls.KeysWithin(languages); !ok {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidLanguages,
				"content url language %s is not in contentLanguagesAvailable", lang)
		}
	}
	if in.SubtitleLanguages != nil || in.SubtitleURLs != nil {
		languages := catalog.LanguageSet(current.SubtitleLanguages)
		if in.SubtitleLanguages != nil {
			languages = dedupe(*in.SubtitleLanguages)
			updates["subtitle_languages"] = datatypes.NewJSONSlice([]catalog.LanguageCode(languages))
		}
		urls := current.SubtitleURLs()
		if in.SubtitleURLs != nil {
			urls = *in.SubtitleURLs
			updates["subtitle_urls_by_language"] = datatypes.NewJSONType(urls)
		}
		if lang, ok := urls.KeysWithin(languages); !ok {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidLanguages,
				"subtitle url language %s is not in subtitleLanguages", lang)
		}
	}

	if target != current.Status {
		updates["status"] = string(target)
	}
	if target == catalog.LessonPublished && current.PublishedAt == nil {
		updates["published_at"] = now
	}
	if len(updates) > 0 {
		updates["updated_at"] = now
	}
	return updates, target, nil
}

func planProgramUpdate(current *catalog.Program, in domainagg.UpdateProgramInput, now time.Time) (map[string]interface{}, catalog.ProgramStatus, error) {
	updates := map[string]interface{}{}

	target := current.Status
	if in.Status != nil {
		target = *in.Status
		if !catalog.CanTransitionProgram(current.Status, target) {
			return nil, "", publishing.Invalid(publishing.ReasonInvalidTransition,
				"cannot move program from %s to %s", current.Status, target)
		}
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, "", ValidationError("title must not be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}

	if in.LanguagePrimary != nil || in.LanguagesAvailable != nil {
		primary := current.LanguagePrimary
		if in.LanguagePrimary != nil {
			if *in.LanguagePrimary == "" {
				return nil, "", publishing.Invalid(publishing.ReasonInvalidLanguages, "languagePrimary must not be empty")
			}
			primary = *in.LanguagePrimary
			updates["language_primary"] = string(primary)
		}
		languages := current.Languages()
		if in.LanguagesAvailable != nil {
			languages = dedupe(*in.LanguagesAvailable)
		}
		languages = languages.WithPrimary(primary)
		updates["languages_available"] = datatypes.NewJSONSlice([]catalog.LanguageCode(languages))
	}

	if target != current.Status {
		updates["status"] = string(target)
	}
	if target == catalog.ProgramPublished && current.PublishedAt == nil {
		updates["published_at"] = now
	}
	if len(updates) > 0 {
		updates["updated_at"] = now
	}
	return updates, target, nil
}

// reconcileThumbnails makes the lesson's THUMBNAIL set equal to inputs, keyed by (language, variant).
func (a *publicationAggregate) reconcileThumbnails(dbc dbctx.Context, lessonID uuid.UUID, inputs []catalog.AssetInput) error {
	entries, err := normalizeAssets(inputs, "thumbnail")
	if err != nil {
		return err
	}
	keep := make([]catalog.AssetKey, 0, len(entries))
	rows := make([]*catalog.LessonAsset, 0, len(entries))
	for _, e := range entries {
		keep = append(keep, catalog.AssetKey{Language: e.Language, Variant: e.Variant, AssetType: catalog.AssetThumbnail})
		rows = append(rows, &catalog.LessonAsset{
			LessonID:  lessonID,
			Language:  e.Language,
			Variant:   e.Variant,
			AssetType: catalog.AssetThumbnail,
			URL:       e.URL,
		})
	}
	if _, err := a.deps.Assets.DeleteLessonAssetsExcept(dbc, lessonID, catalog.AssetThumbnail, keep); err != nil {
		return err
	}
	return a.deps.Assets.UpsertLessonAssets(dbc, rows)
}

func (a *publicationAggregate) upsertPosters(dbc dbctx.Context, programID uuid.UUID, inputs []catalog.AssetInput) error {
	entries, err := normalizeAssets(inputs, "poster")
	if err != nil {
		return err
	}
	rows := make([]*catalog.ProgramAsset, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &catalog.ProgramAsset{
			ProgramID: programID,
			Language:  e.Language,
			Variant:   e.Variant,
			AssetType: catalog.AssetPoster,
			URL:       e.URL,
		})
	}
	return a.deps.Assets.UpsertProgramAssets(dbc, rows)
}

func (a *publicationAggregate) replaceTopics(dbc dbctx.Context, programID uuid.UUID, ids []uuid.UUID) error {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	topics, err := a.deps.Topics.GetByIDs(dbc, unique)
	if err != nil {
		return err
	}
	if len(topics) != len(unique) {
		found := make(map[uuid.UUID]struct{}, len(topics))
		for _, t := range topics {
			found[t.ID] = struct{}{}
		}
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				return publishing.Invalid(publishing.ReasonUnknownTopic, "unknown topic %s", id)
			}
		}
	}
	return a.deps.Programs.ReplaceTopics(dbc, programID, topics)
}

// normalizeAssets drops duplicate (language, variant) pairs, last entry wins, keeping first-seen order.
func normalizeAssets(inputs []catalog.AssetInput, kind string) ([]catalog.AssetInput, error) {
	index := make(map[catalog.AssetKey]int, len(inputs))
	out := make([]catalog.AssetInput, 0, len(inputs))
	for _, in := range inputs {
		in.URL = strings.TrimSpace(in.URL)
		if in.Language == "" || in.Variant == "" || in.URL == "" {
			return nil, ValidationError(kind + " entries need language, variant and url")
		}
		key := catalog.AssetKey{Language: in.Language, Variant: in.Variant}
		if i, ok := index[key]; ok {
			out[i] = in
			continue
		}
		index[key] = len(out)
		out = append(out, in)
	}
	return out, nil
}

func dedupe(codes []catalog.LanguageCode) catalog.LanguageSet {
	out := make(catalog.LanguageSet, 0, len(codes))
	for _, c := range codes {
		if c == "" || out.Contains(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
