package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentVideo   ContentType = "VIDEO"
	ContentArticle ContentType = "ARTICLE"
	ContentAudio   ContentType = "AUDIO"
)

func ParseContentType(raw string) (ContentType, bool) {
	c := ContentType(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case ContentVideo, ContentArticle, ContentAudio:
		return c, true
	default:
		return "", false
	}
}

type Lesson struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	TermID       uuid.UUID   `gorm:"type:uuid;column:term_id;not null;uniqueIndex:idx_lesson_term_number,priority:1" json:"term_id"`
	LessonNumber int         `gorm:"column:lesson_number;not null;uniqueIndex:idx_lesson_term_number,priority:2" json:"lesson_number"`
	Title        string      `gorm:"column:title;not null" json:"title"`
	Description  string      `gorm:"column:description;type:text" json:"description"`
	ContentType  ContentType `gorm:"column:content_type;not null;size:16" json:"content_type"`
	DurationMs   *int64      `gorm:"column:duration_ms" json:"duration_ms,omitempty"`
	IsPaid       bool        `gorm:"column:is_paid;not null;default:false" json:"is_paid"`

	ContentLanguagePrimary    LanguageCode                      `gorm:"column:content_language_primary;not null;size:8" json:"content_language_primary"`
	ContentLanguagesAvailable datatypes.JSONSlice[LanguageCode] `gorm:"column:content_languages_available" json:"content_languages_available"`
	ContentURLsByLanguage     datatypes.JSONType[LanguageURLs]  `gorm:"column:content_urls_by_language" json:"content_urls_by_language"`
	SubtitleLanguages         datatypes.JSONSlice[LanguageCode] `gorm:"column:subtitle_languages" json:"subtitle_languages"`
	SubtitleURLsByLanguage    datatypes.JSONType[LanguageURLs]  `gorm:"column:subtitle_urls_by_language" json:"subtitle_urls_by_language"`

	Status LessonStatus `gorm:"column:status;not null;size:16;index:idx_lesson_status_publish_at,priority:1" json:"status"`
	// PublishAt is required while SCHEDULED; the scheduler promotes the lesson once it has passed.
	PublishAt   *time.Time    `gorm:"column:publish_at;index:idx_lesson_status_publish_at,priority:2" json:"publish_at"`
	PublishedAt *time.Time    `gorm:"column:published_at" json:"published_at"`
	Assets      []LessonAsset `gorm:"foreignKey:LessonID" json:"assets,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = LessonDraft
	}
	return nil
}

func (l *Lesson) ContentURLs() LanguageURLs {
	return l.ContentURLsByLanguage.Data()
}

func (l *Lesson) SubtitleURLs() LanguageURLs {
	return l.SubtitleURLsByLanguage.Data()
}

func (l *Lesson) ContentLanguages() LanguageSet {
	return LanguageSet(l.ContentLanguagesAvailable)
}

// HasThumbnail reports whether a THUMBNAIL asset exists for exactly this language and variant.
func (l *Lesson) HasThumbnail(lang LanguageCode, variant AssetVariant) bool {
	for _, a := range l.Assets {
		if a.AssetType == AssetThumbnail && a.Variant == variant && a.Language == lang {
			return true
		}
	}
	return false
}

// LessonRef is the lightweight row the scheduler gets back from a claim.
type LessonRef struct {
	ID     uuid.UUID
	TermID uuid.UUID
}
