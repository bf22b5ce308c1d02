package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type TermHandler struct {
	content services.ContentService
}

func NewTermHandler(content services.ContentService) *TermHandler {
	return &TermHandler{content: content}
}

// POST /api/terms
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req createTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	term, err := h.content.CreateTerm(c.Request.Context(), services.CreateTermInput{
		ProgramID:   req.ProgramID,
		TermNumber:  req.TermNumber,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, newTermView(term))
}

// PUT /api/terms/:id
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	term, err := h.content.UpdateTerm(c.Request.Context(), id, services.UpdateTermInput{
		TermNumber:  req.TermNumber,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, newTermView(term))
}
