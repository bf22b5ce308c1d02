package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type TopicHandler struct {
	content services.ContentService
}

func NewTopicHandler(content services.ContentService) *TopicHandler {
	return &TopicHandler{content: content}
}

// GET /api/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics, err := h.content.ListTopics(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": newTopicViews(topics)})
}

// POST /api/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return
	}
	topic, err := h.content.CreateTopic(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, newTopicView(topic))
}
