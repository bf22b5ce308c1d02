package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
	"github.com/yungbote/curriculum-backend/internal/services"
)

const (
	catalogListMaxAge    = time.Minute
	catalogProgramMaxAge = 5 * time.Minute
	catalogLessonMaxAge  = time.Hour
)

// CatalogHandler serves the public, unauthenticated catalog.
type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/catalog/programs
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	query := services.CatalogQuery{Topic: q.Topic, Limit: q.Limit}
	if q.Language != "" {
		lang, err := parseLanguage(q.Language)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		query.Language = lang
	}
	if q.Cursor != "" {
		cursor, err := uuid.Parse(q.Cursor)
		if err != nil {
			response.RespondDomainError(c, apierr.InvalidID(err))
			return
		}
		query.Cursor = &cursor
	}
	page, err := h.catalog.ListPrograms(c.Request.Context(), query)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPublic(c, catalogListMaxAge, catalogPageView{
		Items:      newProgramViews(page.Items),
		NextCursor: page.NextCursor,
	})
}

// GET /api/catalog/programs/:id
func (h *CatalogHandler) GetProgram(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	program, err := h.catalog.GetProgram(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPublic(c, catalogProgramMaxAge, newProgramView(program))
}

// GET /api/catalog/lessons/:id
func (h *CatalogHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lesson, err := h.catalog.GetLesson(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondPublic(c, catalogLessonMaxAge, newLessonView(lesson))
}
