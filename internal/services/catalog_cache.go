package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// CatalogCache stores rendered catalog payloads. Invalidate retires every stored entry at once.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
	Invalidate(ctx context.Context) error
}

type noopCatalogCache struct{}

func NewNoopCatalogCache() CatalogCache { return noopCatalogCache{} }

func (noopCatalogCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noopCatalogCache) Set(context.Context, string, []byte)        {}
func (noopCatalogCache) Invalidate(context.Context) error           { return nil }

const defaultCatalogVersionKey = "catalog:version"

// redisCatalogCache namespaces entries under a version counter; bumping the counter
// orphans the old entries, which then expire on their TTL.
type redisCatalogCache struct {
	rdb        goredis.UniversalClient
	log        *logger.Logger
	metrics    *observability.Metrics
	ttl        time.Duration
	versionKey string
}

func NewRedisCatalogCache(log *logger.Logger, rdb goredis.UniversalClient, metrics *observability.Metrics, ttl time.Duration) (CatalogCache, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &redisCatalogCache{
		rdb:        rdb,
		log:        log.With("component", "CatalogCache"),
		metrics:    metrics,
		ttl:        ttl,
		versionKey: defaultCatalogVersionKey,
	}, nil
}

func (c *redisCatalogCache) version(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCatalogCache) entryKey(version int64, key string) string {
	return fmt.Sprintf("catalog:v%d:%s", version, strings.TrimSpace(key))
}

func (c *redisCatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := c.version(ctx)
	if err != nil {
		c.metrics.IncCatalogCache("error")
		c.log.Warn("catalog cache version read failed", "error", err)
		return nil, false
	}
	b, err := c.rdb.Get(ctx, c.entryKey(v, key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.metrics.IncCatalogCache("error")
			c.log.Warn("catalog cache read failed", "key", key, "error", err)
			return nil, false
		}
		c.metrics.IncCatalogCache("miss")
		return nil, false
	}
	c.metrics.IncCatalogCache("hit")
	return b, true
}

func (c *redisCatalogCache) Set(ctx context.Context, key string, payload []byte) {
	v, err := c.version(ctx)
	if err != nil {
		c.log.Warn("catalog cache version read failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, c.entryKey(v, key), payload, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", "key", key, "error", err)
	}
}

func (c *redisCatalogCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.versionKey).Err()
}
