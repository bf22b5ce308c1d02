package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/realtime"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type LessonHandler struct {
	content services.ContentService
}

func NewLessonHandler(content services.ContentService) *LessonHandler {
	return &LessonHandler{content: content}
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	detail, err := h.content.GetLesson(ctx, id, services.RoleFromContext(ctx))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, newLessonDetailView(detail))
}

// POST /api/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	lesson, err := h.content.CreateLesson(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, newLessonView(lesson))
}

// PUT /api/lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	in, err := req.toInput(id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	res, err := h.content.UpdateLesson(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, newLessonView(&res.Lesson))
}

func (req createLessonRequest) toInput() (services.CreateLessonInput, error) {
	in := services.CreateLessonInput{
		TermID:       req.TermID,
		LessonNumber: req.LessonNumber,
		Title:        req.Title,
		Description:  req.Description,
		DurationMs:   req.DurationMs,
		IsPaid:       req.IsPaid,
	}
	if req.ContentType != "" {
		in.ContentType, _ = catalog.ParseContentType(req.ContentType)
	}
	var err error
	if in.ContentLanguagePrimary, err = parseLanguage(req.ContentLanguagePrimary); err != nil {
		return in, err
	}
	if in.ContentLanguagesAvailable, err = parseLanguages(req.ContentLanguagesAvailable); err != nil {
		return in, err
	}
	if in.ContentURLs, err = parseLanguageURLs(req.ContentURLsByLanguage); err != nil {
		return in, err
	}
	if in.SubtitleLanguages, err = parseLanguages(req.SubtitleLanguages); err != nil {
		return in, err
	}
	if in.SubtitleURLs, err = parseLanguageURLs(req.SubtitleURLsByLanguage); err != nil {
		return in, err
	}
	if in.Thumbnails, err = parseAssets(req.Thumbnails); err != nil {
		return in, err
	}
	return in, nil
}

func (req updateLessonRequest) toInput(id uuid.UUID) (domainagg.UpdateLessonInput, error) {
	in := domainagg.UpdateLessonInput{
		LessonID:     id,
		Title:        req.Title,
		Description:  req.Description,
		LessonNumber: req.LessonNumber,
		DurationMs:   req.DurationMs,
		IsPaid:       req.IsPaid,
		PublishAt:    req.PublishAt,
		Source:       string(realtime.SourceManual),
	}
	if req.ContentLanguagesAvailable != nil {
		langs, err := parseLanguages(*req.ContentLanguagesAvailable)
		if err != nil {
			return in, err
		}
		in.ContentLanguagesAvailable = &langs
	}
	if req.ContentURLsByLanguage != nil {
		urls, err := parseLanguageURLs(*req.ContentURLsByLanguage)
		if err != nil {
			return in, err
		}
		in.ContentURLs = &urls
	}
	if req.SubtitleLanguages != nil {
		langs, err := parseLanguages(*req.SubtitleLanguages)
		if err != nil {
			return in, err
		}
		in.SubtitleLanguages = &langs
	}
	if req.SubtitleURLsByLanguage != nil {
		urls, err := parseLanguageURLs(*req.SubtitleURLsByLanguage)
		if err != nil {
			return in, err
		}
		in.SubtitleURLs = &urls
	}
	if req.Status != nil {
		status, _ := catalog.ParseLessonStatus(*req.Status)
		in.Status = &status
	}
	if req.Thumbnails != nil {
		thumbs, err := parseAssets(*req.Thumbnails)
		if err != nil {
			return in, err
		}
		in.Thumbnails = &thumbs
	}
	return in, nil
}
