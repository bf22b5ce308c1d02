package app

import (
	"time"

	"github.com/yungbote/curriculum-backend/internal/data/db"
	"github.com/yungbote/curriculum-backend/internal/jobs/worker"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/envutil"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	MetricsAddr string
	CORSOrigins []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	SchedulerEnabled bool
	Scheduler        worker.Config

	CatalogCacheTTL time.Duration

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "defaultsecret")
	if jwtSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return Config{
		Port:        envutil.String("PORT", "8080"),
		MetricsAddr: envutil.String("METRICS_ADDR", ""),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		DB: db.Config{
			Driver:       envutil.String("DB_DRIVER", "postgres"),
			DSN:          envutil.String("POSTGRES_DSN", ""),
			Host:         envutil.String("POSTGRES_HOST", "localhost"),
			Port:         envutil.String("POSTGRES_PORT", "5432"),
			User:         envutil.String("POSTGRES_USER", "postgres"),
			Password:     envutil.String("POSTGRES_PASSWORD", ""),
			Name:         envutil.String("POSTGRES_NAME", "curriculum"),
			MaxOpenConns: envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envutil.Int("POSTGRES_MAX_IDLE_CONNS", 10),
			LockTimeout:  envutil.Duration("DB_LOCK_TIMEOUT", 5*time.Second),
		},

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "catalog.publication"),

		SchedulerEnabled: envutil.Bool("SCHEDULER_ENABLED", true),
		Scheduler: worker.Config{
			Interval:  envutil.Duration("SCHEDULER_INTERVAL", worker.DefaultInterval),
			Cron:      envutil.String("SCHEDULER_CRON", ""),
			BatchSize: envutil.Int("SCHEDULER_BATCH_SIZE", worker.DefaultBatchSize),
		},

		CatalogCacheTTL: envutil.Duration("CATALOG_CACHE_TTL", 60*time.Second),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "curriculum-backend"),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: envutil.Float("OTEL_TRACES_SAMPLER_RATIO", 1),
		},
	}
}
