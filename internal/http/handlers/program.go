package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/realtime"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type ProgramHandler struct {
	content services.ContentService
}

func NewProgramHandler(content services.ContentService) *ProgramHandler {
	return &ProgramHandler{content: content}
}

// GET /api/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	var q programListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	filter := catalogrepo.ProgramFilter{Topic: q.Topic}
	if q.Status != "" {
		filter.Status, _ = catalog.ParseProgramStatus(q.Status)
	}
	if q.Language != "" {
		lang, err := parseLanguage(q.Language)
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		filter.Language = lang
	}
	programs, err := h.content.ListPrograms(c.Request.Context(), filter)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"programs": newProgramViews(programs)})
}

// GET /api/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	program, err := h.content.GetProgram(ctx, id, services.RoleFromContext(ctx))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, newProgramView(program))
}

// POST /api/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	in := services.CreateProgramInput{
		Title:       req.Title,
		Description: req.Description,
		TopicIDs:    req.TopicIDs,
	}
	var err error
	if in.LanguagePrimary, err = parseLanguage(req.LanguagePrimary); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if in.LanguagesAvailable, err = parseLanguages(req.LanguagesAvailable); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if in.Posters, err = parseAssets(req.Posters); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	program, err := h.content.CreateProgram(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, newProgramView(program))
}

// PUT /api/programs/:id
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	in, err := req.toInput(id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	res, err := h.content.UpdateProgram(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, newProgramView(&res.Program))
}

func (req updateProgramRequest) toInput(id uuid.UUID) (domainagg.UpdateProgramInput, error) {
	in := domainagg.UpdateProgramInput{
		ProgramID:   id,
		Title:       req.Title,
		Description: req.Description,
		TopicIDs:    req.TopicIDs,
		Source:      string(realtime.SourceManual),
	}
	if req.LanguagePrimary != nil {
		lang, err := parseLanguage(*req.LanguagePrimary)
		if err != nil {
			return in, err
		}
		in.LanguagePrimary = &lang
	}
	if req.LanguagesAvailable != nil {
		langs, err := parseLanguages(*req.LanguagesAvailable)
		if err != nil {
			return in, err
		}
		in.LanguagesAvailable = &langs
	}
	if req.Status != nil {
		status, _ := catalog.ParseProgramStatus(*req.Status)
		in.Status = &status
	}
	if req.Posters != nil {
		posters, err := parseAssets(*req.Posters)
		if err != nil {
			return in, err
		}
		in.Posters = &posters
	}
	return in, nil
}
