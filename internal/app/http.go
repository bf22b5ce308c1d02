package app

import (
	"database/sql"

	"github.com/yungbote/curriculum-backend/internal/http"
	httpH "github.com/yungbote/curriculum-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curriculum-backend/internal/http/middleware"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Topic   *httpH.TopicHandler
	Program *httpH.ProgramHandler
	Term    *httpH.TermHandler
	Lesson  *httpH.LessonHandler
	Catalog *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, services Services, sqlDB *sql.DB) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:  httpH.NewHealthHandler(pinger),
		Topic:   httpH.NewTopicHandler(services.Content),
		Program: httpH.NewProgramHandler(services.Content),
		Term:    httpH.NewTermHandler(services.Content),
		Lesson:  httpH.NewLessonHandler(services.Content),
		Catalog: httpH.NewCatalogHandler(services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		ServiceName:    serviceName,
		AuthMiddleware: middleware.Auth,
		TopicHandler:   handlers.Topic,
		ProgramHandler: handlers.Program,
		TermHandler:    handlers.Term,
		LessonHandler:  handlers.Lesson,
		CatalogHandler: handlers.Catalog,
		HealthHandler:  handlers.Health,
	})
}
