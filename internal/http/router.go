package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/curriculum-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curriculum-backend/internal/http/middleware"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	TopicHandler   *httpH.TopicHandler
	ProgramHandler *httpH.ProgramHandler
	TermHandler    *httpH.TermHandler
	LessonHandler  *httpH.LessonHandler
	CatalogHandler *httpH.CatalogHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestContext())
	r.Use(httpMW.Observe(cfg.Log, cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Catalog (public)
	if cfg.CatalogHandler != nil {
		catalog := api.Group("/catalog")
		catalog.GET("/programs", cfg.CatalogHandler.ListPrograms)
		catalog.GET("/programs/:id", cfg.CatalogHandler.GetProgram)
		catalog.GET("/lessons/:id", cfg.CatalogHandler.GetLesson)
	}

	protected := api.Group("/")
	editors := []gin.HandlerFunc{}
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		editors = append(editors, cfg.AuthMiddleware.RequireRole(services.RoleAdmin, services.RoleEditor))
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, editors...), h)
	}

	// Topics
	if cfg.TopicHandler != nil {
		protected.GET("/topics", cfg.TopicHandler.ListTopics)
		protected.POST("/topics", write(cfg.TopicHandler.CreateTopic)...)
	}

	// Programs
	if cfg.ProgramHandler != nil {
		protected.GET("/programs", cfg.ProgramHandler.ListPrograms)
		protected.GET("/programs/:id", cfg.ProgramHandler.GetProgram)
		protected.POST("/programs", write(cfg.ProgramHandler.CreateProgram)...)
		protected.PUT("/programs/:id", write(cfg.ProgramHandler.UpdateProgram)...)
	}

	// Terms
	if cfg.TermHandler != nil {
		protected.POST("/terms", write(cfg.TermHandler.CreateTerm)...)
		protected.PUT("/terms/:id", write(cfg.TermHandler.UpdateTerm)...)
	}

	// Lessons
	if cfg.LessonHandler != nil {
		protected.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
		protected.POST("/lessons", write(cfg.LessonHandler.CreateLesson)...)
		protected.PUT("/lessons/:id", write(cfg.LessonHandler.UpdateLesson)...)
	}

	return r
}
