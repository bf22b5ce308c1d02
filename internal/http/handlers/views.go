package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type topicView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type programView struct {
	ID                 uuid.UUID              `json:"id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	LanguagePrimary    catalog.LanguageCode   `json:"languagePrimary"`
	LanguagesAvailable []catalog.LanguageCode `json:"languagesAvailable"`
	Status             catalog.ProgramStatus  `json:"status"`
	PublishedAt        *time.Time             `json:"publishedAt"`
	Topics             []topicView            `json:"topics"`
	Posters            catalog.GroupedAssets  `json:"posters"`
	Terms              []termView             `json:"terms,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

type termView struct {
	ID          uuid.UUID    `json:"id"`
	ProgramID   uuid.UUID    `json:"programId"`
	TermNumber  int          `json:"termNumber"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Lessons     []lessonView `json:"lessons,omitempty"`
}

type lessonView struct {
	ID                        uuid.UUID              `json:"id"`
	TermID                    uuid.UUID              `json:"termId"`
	LessonNumber              int                    `json:"lessonNumber"`
	Title                     string                 `json:"title"`
	Description               string                 `json:"description"`
	ContentType               catalog.ContentType    `json:"contentType"`
	DurationMs                *int64                 `json:"durationMs"`
	IsPaid                    bool                   `json:"isPaid"`
	ContentLanguagePrimary    catalog.LanguageCode   `json:"contentLanguagePrimary"`
	ContentLanguagesAvailable []catalog.LanguageCode `json:"contentLanguagesAvailable"`
	ContentURLsByLanguage     catalog.LanguageURLs   `json:"contentUrlsByLanguage"`
	SubtitleLanguages         []catalog.LanguageCode `json:"subtitleLanguages"`
	SubtitleURLsByLanguage    catalog.LanguageURLs   `json:"subtitleUrlsByLanguage"`
	Status                    catalog.LessonStatus   `json:"status"`
	PublishAt                 *time.Time             `json:"publishAt"`
	PublishedAt               *time.Time             `json:"publishedAt"`
	Thumbnails                catalog.GroupedAssets  `json:"thumbnails"`
	CreatedAt                 time.Time              `json:"createdAt"`
	UpdatedAt                 time.Time              `json:"updatedAt"`
}

type lessonDetailView struct {
	lessonView
	ProgramID    uuid.UUID  `json:"programId"`
	PrevLessonID *uuid.UUID `json:"prevLessonId"`
	NextLessonID *uuid.UUID `json:"nextLessonId"`
}

type catalogPageView struct {
	Items      []programView `json:"items"`
	NextCursor *uuid.UUID    `json:"nextCursor"`
}

func newTopicView(t *catalog.Topic) topicView {
	return topicView{ID: t.ID, Name: t.Name}
}

func newTopicViews(topics []*catalog.Topic) []topicView {
	out := make([]topicView, 0, len(topics))
	for _, t := range topics {
		out = append(out, newTopicView(t))
	}
	return out
}

func newProgramView(p *catalog.Program) programView {
	v := programView{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		LanguagePrimary:    p.LanguagePrimary,
		LanguagesAvailable: nonNilLanguages(p.LanguagesAvailable),
		Status:             p.Status,
		PublishedAt:        p.PublishedAt,
		Topics:             make([]topicView, 0, len(p.Topics)),
		Posters:            catalog.GroupProgramAssets(p.Assets),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for i := range p.Topics {
		v.Topics = append(v.Topics, newTopicView(&p.Topics[i]))
	}
	for i := range p.Terms {
		v.Terms = append(v.Terms, newTermView(&p.Terms[i]))
	}
	return v
}

func newProgramViews(programs []*catalog.Program) []programView {
	out := make([]programView, 0, len(programs))
	for _, p := range programs {
		out = append(out, newProgramView(p))
	}
	return out
}

func newTermView(t *catalog.Term) termView {
	v := termView{
		ID:          t.ID,
		ProgramID:   t.ProgramID,
		TermNumber:  t.TermNumber,
		Title:       t.Title,
		Description: t.Description,
	}
	for i := range t.Lessons {
		v.Lessons = append(v.Lessons, newLessonView(&t.Lessons[i]))
	}
	return v
}

func newLessonView(l *catalog.Lesson) lessonView {
	return lessonView{
		ID:                        l.ID,
		TermID:                    l.TermID,
		LessonNumber:              l.LessonNumber,
		Title:                     l.Title,
		Description:               l.Description,
		ContentType:               l.ContentType,
		DurationMs:                l.DurationMs,
		IsPaid:                    l.IsPaid,
		ContentLanguagePrimary:    l.ContentLanguagePrimary,
		ContentLanguagesAvailable: nonNilLanguages(l.ContentLanguagesAvailable),
		ContentURLsByLanguage:     nonNilURLs(l.ContentURLs()),
		SubtitleLanguages:         nonNilLanguages(l.SubtitleLanguages),
		SubtitleURLsByLanguage:    nonNilURLs(l.SubtitleURLs()),
		Status:                    l.Status,
		PublishAt:                 l.PublishAt,
		PublishedAt:               l.PublishedAt,
		Thumbnails:                catalog.GroupLessonAssets(l.Assets),
		CreatedAt:                 l.CreatedAt,
		UpdatedAt:                 l.UpdatedAt,
	}
}

func newLessonDetailView(d services.LessonDetail) lessonDetailView {
	return lessonDetailView{
		lessonView:   newLessonView(d.Lesson),
		ProgramID:    d.ProgramID,
		PrevLessonID: d.PrevLessonID,
		NextLessonID: d.NextLessonID,
	}
}

func nonNilLanguages(in []catalog.LanguageCode) []catalog.LanguageCode {
	if in == nil {
		return []catalog.LanguageCode{}
	}
	return in
}

func nonNilURLs(in catalog.LanguageURLs) catalog.LanguageURLs {
	if in == nil {
		return catalog.LanguageURLs{}
	}
	return in
}
