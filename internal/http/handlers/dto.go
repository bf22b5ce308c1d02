package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/domain/publishing"
	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
)

// pathID parses the :id route parameter, answering 400 INVALID_ID when it is not a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, apierr.InvalidID(err))
		return uuid.Nil, false
	}
	return id, true
}

// assetRequest is one poster or thumbnail entry.
type assetRequest struct {
	Language string `json:"language" binding:"required,langcode"`
	Variant  string `json:"variant" binding:"required,assetvariant"`
	URL      string `json:"url" binding:"required,url"`
}

type createTopicRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type createProgramRequest struct {
	Title              string         `json:"title" binding:"required"`
	Description        string         `json:"description"`
	LanguagePrimary    string         `json:"languagePrimary" binding:"required,langcode"`
	LanguagesAvailable []string       `json:"languagesAvailable" binding:"omitempty,dive,langcode"`
	TopicIDs           []uuid.UUID    `json:"topicIds"`
	Posters            []assetRequest `json:"posters" binding:"omitempty,dive"`
}

type updateProgramRequest struct {
	Title              *string         `json:"title"`
	Description        *string         `json:"description"`
	LanguagePrimary    *string         `json:"languagePrimary" binding:"omitempty,langcode"`
	LanguagesAvailable *[]string       `json:"languagesAvailable" binding:"omitempty,dive,langcode"`
	Status             *string         `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	TopicIDs           *[]uuid.UUID    `json:"topicIds"`
	Posters            *[]assetRequest `json:"posters" binding:"omitempty,dive"`
}

type createTermRequest struct {
	ProgramID   uuid.UUID `json:"programId" binding:"required"`
	TermNumber  int       `json:"termNumber" binding:"required,gt=0"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

type updateTermRequest struct {
	TermNumber  *int    `json:"termNumber" binding:"omitempty,gt=0"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type createLessonRequest struct {
	TermID                    uuid.UUID         `json:"termId" binding:"required"`
	LessonNumber              int               `json:"lessonNumber" binding:"required,gt=0"`
	Title                     string            `json:"title" binding:"required"`
	Description               string            `json:"description"`
	ContentType               string            `json:"contentType" binding:"omitempty,oneof=VIDEO ARTICLE AUDIO"`
	DurationMs                *int64            `json:"durationMs" binding:"omitempty,gte=0"`
	IsPaid                    bool              `json:"isPaid"`
	ContentLanguagePrimary    string            `json:"contentLanguagePrimary" binding:"required,langcode"`
	ContentLanguagesAvailable []string          `json:"contentLanguagesAvailable" binding:"omitempty,dive,langcode"`
	ContentURLsByLanguage     map[string]string `json:"contentUrlsByLanguage" binding:"omitempty,dive,keys,langcode,endkeys,required"`
	SubtitleLanguages         []string          `json:"subtitleLanguages" binding:"omitempty,dive,langcode"`
	SubtitleURLsByLanguage    map[string]string `json:"subtitleUrlsByLanguage" binding:"omitempty,dive,keys,langcode,endkeys,required"`
	Thumbnails                []assetRequest    `json:"thumbnails" binding:"omitempty,dive"`
}

type updateLessonRequest struct {
	Title                     *string            `json:"title"`
	Description               *string            `json:"description"`
	LessonNumber              *int               `json:"lessonNumber" binding:"omitempty,gt=0"`
	DurationMs                *int64             `json:"durationMs" binding:"omitempty,gte=0"`
	IsPaid                    *bool              `json:"isPaid"`
	ContentLanguagesAvailable *[]string          `json:"contentLanguagesAvailable" binding:"omitempty,dive,langcode"`
	ContentURLsByLanguage     *map[string]string `json:"contentUrlsByLanguage" binding:"omitempty,dive,keys,langcode,endkeys,required"`
	SubtitleLanguages         *[]string          `json:"subtitleLanguages" binding:"omitempty,dive,langcode"`
	SubtitleURLsByLanguage    *map[string]string `json:"subtitleUrlsByLanguage" binding:"omitempty,dive,keys,langcode,endkeys,required"`
	Status                    *string            `json:"status" binding:"omitempty,oneof=DRAFT SCHEDULED PUBLISHED ARCHIVED"`
	PublishAt                 *time.Time         `json:"publishAt"`
	Thumbnails                *[]assetRequest    `json:"thumbnails" binding:"omitempty,dive"`
}

type catalogQuery struct {
	Language string `form:"language" binding:"omitempty,langcode"`
	Topic    string `form:"topic"`
	Cursor   string `form:"cursor" binding:"omitempty,uuid"`
	Limit    int    `form:"limit" binding:"omitempty,gte=1"`
}

type programListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Language string `form:"language" binding:"omitempty,langcode"`
	Topic    string `form:"topic"`
}

const opDecode = "http.decode_request"

func invalidLanguages(err error) error {
	return aggregates.MapError(opDecode, publishing.Invalid(publishing.ReasonInvalidLanguages, "%s", err.Error()))
}

func parseLanguage(raw string) (catalog.LanguageCode, error) {
	code, err := catalog.ParseLanguage(raw)
	if err != nil {
		return "", invalidLanguages(err)
	}
	return code, nil
}

func parseLanguages(raw []string) ([]catalog.LanguageCode, error) {
	codes, err := catalog.ParseLanguages(raw)
	if err != nil {
		return nil, invalidLanguages(err)
	}
	return codes, nil
}

func parseLanguageURLs(raw map[string]string) (catalog.LanguageURLs, error) {
	urls, err := catalog.ParseLanguageURLs(raw)
	if err != nil {
		return nil, invalidLanguages(err)
	}
	return urls, nil
}

func parseAssets(raw []assetRequest) ([]catalog.AssetInput, error) {
	out := make([]catalog.AssetInput, 0, len(raw))
	for _, a := range raw {
		lang, err := parseLanguage(a.Language)
		if err != nil {
			return nil, err
		}
		variant, ok := catalog.ParseAssetVariant(a.Variant)
		if !ok {
			return nil, aggregates.MapError(opDecode, aggregates.ValidationError("unknown asset variant "+a.Variant))
		}
		out = append(out, catalog.AssetInput{Language: lang, Variant: variant, URL: a.URL})
	}
	return out, nil
}
