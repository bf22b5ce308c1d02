package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// Metrics is a small process-local registry exposed in Prometheus text format.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	schedulerPasses   *CounterVec
	schedulerLatency  *HistogramVec
	lessonsPublished  *Counter
	programsCascaded  *Counter
	eventsPublished   *CounterVec
	catalogCacheLooks *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
	families       []family
}

func NewMetrics() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("curriculum_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"curriculum_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("curriculum_api_inflight_requests", "In-flight API requests."),

		aggregateOps: NewCounterVec("curriculum_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"curriculum_aggregate_operation_duration_seconds",
			"Aggregate write duration in seconds by operation.",
			[]string{"operation"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateConflicts: NewCounterVec("curriculum_aggregate_conflicts_total", "Aggregate conflicts by operation.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("curriculum_aggregate_retryable_total", "Aggregate retryable failures by operation.", []string{"operation"}),

		schedulerPasses: NewCounterVec("curriculum_scheduler_passes_total", "Scheduler passes by status.", []string{"status"}),
		schedulerLatency: NewHistogramVec(
			"curriculum_scheduler_pass_duration_seconds",
			"Scheduler pass duration in seconds.",
			[]string{"status"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		lessonsPublished:  NewCounter("curriculum_scheduler_lessons_published_total", "Lessons promoted to PUBLISHED by the scheduler."),
		programsCascaded:  NewCounter("curriculum_scheduler_programs_cascaded_total", "Programs promoted to PUBLISHED by cascade."),
		eventsPublished:   NewCounterVec("curriculum_publication_events_total", "Publication events by kind/status.", []string{"kind", "status"}),
		catalogCacheLooks: NewCounterVec("curriculum_catalog_cache_lookups_total", "Catalog cache lookups by result.", []string{"result"}),

		pgStats:   NewGaugeVec("curriculum_db_stats", "Database connection pool stats.", []string{"metric"}),
		redisUp:   NewGauge("curriculum_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing: NewGauge("curriculum_redis_ping_seconds", "Redis ping latency in seconds."),

		scrapeInterval: 10 * time.Second,
	}
	m.families = []family{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.schedulerPasses, m.schedulerLatency, m.lessonsPublished, m.programsCascaded,
		m.eventsPublished, m.catalogCacheLooks,
		m.pgStats, m.redisUp, m.redisPing,
	}
	return m
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, f := range m.families {
		if err := f.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

// ObserveSchedulerPass records one pass and how many rows it promoted.
func (m *Metrics) ObserveSchedulerPass(status string, lessons, programs int, dur time.Duration) {
	if m == nil {
		return
	}
	m.schedulerPasses.Inc(status)
	m.schedulerLatency.Observe(dur.Seconds(), status)
	m.lessonsPublished.Add(float64(lessons))
	m.programsCascaded.Add(float64(programs))
}

func (m *Metrics) LessonsPublished() float64 {
	if m == nil {
		return 0
	}
	return m.lessonsPublished.Value()
}

func (m *Metrics) ProgramsCascaded() float64 {
	if m == nil {
		return 0
	}
	return m.programsCascaded.Value()
}

func (m *Metrics) IncPublicationEvent(kind, status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(kind, status)
}

func (m *Metrics) IncCatalogCache(result string) {
	if m == nil {
		return
	}
	m.catalogCacheLooks.Inc(result)
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
