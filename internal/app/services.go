package app

import (
	"fmt"

	"github.com/facebookgo/clock"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/jobs/worker"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	Content services.ContentService
	Catalog services.CatalogService

	Publication domainagg.PublicationAggregate
	Scheduling  domainagg.SchedulingAggregate
	Scheduler   *worker.Scheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	clk := clock.New()
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db, aggregates.WithLockTimeout(cfg.DB.LockTimeout)),
		Hooks:  aggregates.NewObservabilityHooks(metrics),
		Clock:  clk,
	}

	publication := aggregates.NewPublicationAggregate(aggregates.PublicationDeps{
		BaseDeps: base,
		Programs: repos.Programs,
		Lessons:  repos.Lessons,
		Assets:   repos.Assets,
		Topics:   repos.Topics,
		Notifier: clients.Bus,
	})
	scheduling := aggregates.NewSchedulingAggregate(aggregates.SchedulingDeps{
		BaseDeps: base,
		Lessons:  repos.Lessons,
		Terms:    repos.Terms,
	})

	cache := services.NewNoopCatalogCache()
	if clients.Redis != nil {
		c, err := services.NewRedisCatalogCache(log, clients.Redis, metrics, cfg.CatalogCacheTTL)
		if err != nil {
			return Services{}, fmt.Errorf("init catalog cache: %w", err)
		}
		cache = c
	}

	return Services{
		Auth: services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Content: services.NewContentService(services.ContentServiceDeps{
			DB:          db,
			Log:         log,
			Topics:      repos.Topics,
			Programs:    repos.Programs,
			Terms:       repos.Terms,
			Lessons:     repos.Lessons,
			Assets:      repos.Assets,
			Publication: publication,
		}),
		Catalog:     services.NewCatalogService(log, repos.Programs, repos.Lessons, cache),
		Publication: publication,
		Scheduling:  scheduling,
		Scheduler:   worker.NewScheduler(log, scheduling, clk, clients.Bus, metrics, cfg.Scheduler),
	}, nil
}
