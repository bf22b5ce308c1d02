// Package worker runs the time-triggered publication pass.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

const (
	DefaultInterval  = 60 * time.Second
	DefaultBatchSize = 500
)

type Config struct {
	Interval time.Duration
	// Cron, when set, replaces Interval with a standard five-field cron expression.
	Cron      string
	BatchSize int
}

// PassResult lists what one pass promoted. ProgramIDs holds only programs this pass moved to PUBLISHED.
type PassResult struct {
	LessonIDs  []uuid.UUID
	ProgramIDs []uuid.UUID
}

type Scheduler struct {
	agg      domainagg.SchedulingAggregate
	clock    clock.Clock
	notifier aggregates.Notifier
	metrics  *observability.Metrics
	log      *logger.Logger
	cfg      Config

	afterPass func(PassResult, error)
}

func NewScheduler(baseLog *logger.Logger, agg domainagg.SchedulingAggregate, clk clock.Clock, notifier aggregates.Notifier, metrics *observability.Metrics, cfg Config) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	contract := agg.Contract()
	return &Scheduler{
		agg:      agg,
		clock:    clk,
		notifier: notifier,
		metrics:  metrics,
		log: baseLog.With(
			"component", "PublishScheduler",
			"aggregate", contract.Name,
			"atomic_pass", contract.Atomic(),
		),
		cfg: cfg,
	}
}

// Tick runs one pass synchronously. Due lessons are claimed in batches until a short batch or a
// failed claim; every program touched by a committed batch is then cascaded in its own transaction. A failed cascade is logged and
// the remaining programs are still attempted; the joined error is returned.
func (s *Scheduler) Tick(ctx context.Context) (PassResult, error) {
	start := time.Now()
	now := s.clock.Now().UTC()
	ctx, span := observability.Tracer().Start(ctx, "scheduler.pass")
	defer span.End()

	var res PassResult
	var programIDs []uuid.UUID
	seen := map[uuid.UUID]struct{}{}

	var passErr error
	for {
		claim, err := s.agg.ClaimDueLessons(ctx, domainagg.ClaimDueLessonsInput{Now: now, Limit: s.cfg.BatchSize})
		if err != nil {
			// Earlier batches are already PUBLISHED and will never be claimed again; their
			// programs are cascaded below before the error is returned.
			passErr = fmt.Errorf("claim due lessons: %w", err)
			break
		}
		for _, l := range claim.Lessons {
			res.LessonIDs = append(res.LessonIDs, l.ID)
			s.publish(ctx, realtime.LessonPublished, l.ID, now)
		}
		for _, id := range claim.ProgramIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			programIDs = append(programIDs, id)
		}
		if len(claim.Lessons) < s.cfg.BatchSize || ctx.Err() != nil {
			break
		}
	}

	for _, id := range programIDs {
		out, err := s.agg.CascadeProgramPublished(ctx, domainagg.CascadeProgramInput{ProgramID: id, Now: now})
		if err != nil {
			s.log.Warn("program cascade failed", "program_id", id, "error", err)
			passErr = errors.Join(passErr, fmt.Errorf("cascade program %s: %w", id, err))
			continue
		}
		if out.Promoted {
			res.ProgramIDs = append(res.ProgramIDs, id)
			s.publish(ctx, realtime.ProgramPublished, id, now)
		}
	}

	s.finishPass(span, res, passErr, start)
	return res, passErr
}

func (s *Scheduler) finishPass(span trace.Span, res PassResult, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, "scheduler pass failed")
	}
	span.SetAttributes(
		attribute.Int("scheduler.lessons_published", len(res.LessonIDs)),
		attribute.Int("scheduler.programs_cascaded", len(res.ProgramIDs)),
	)
	s.metrics.ObserveSchedulerPass(status, len(res.LessonIDs), len(res.ProgramIDs), time.Since(start))
	if len(res.LessonIDs) > 0 || len(res.ProgramIDs) > 0 {
		s.log.Info("scheduler pass published content",
			"lessons", len(res.LessonIDs),
			"programs", len(res.ProgramIDs),
		)
	}
}

func (s *Scheduler) publish(ctx context.Context, kind realtime.EventKind, id uuid.UUID, at time.Time) {
	if s.notifier == nil {
		return
	}
	ev := realtime.PublicationEvent{Kind: kind, ID: id, At: at, Source: realtime.SourceScheduler}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.metrics.IncPublicationEvent(string(kind), "failed")
		s.log.Warn("publication event not delivered", "kind", kind, "id", id, "error", err)
		return
	}
	s.metrics.IncPublicationEvent(string(kind), "sent")
}

// Run drives Tick until ctx is done. A failing or panicking pass is logged and the loop carries on.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.Cron != "" {
		return s.runCron(ctx)
	}
	s.log.Info("Starting publish scheduler", "interval", s.cfg.Interval.String(), "batch_size", s.cfg.BatchSize)

	ticker := s.clock.Ticker(s.cfg.Interval)
	defer ticker.Stop()

	s.safeTick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Publish scheduler stopped")
			return nil
		case <-ticker.C:
			s.safeTick(ctx)
		}
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start(ctx context.Context) {
	go func() { _ = s.Run(ctx) }()
}

func (s *Scheduler) runCron(ctx context.Context) error {
	schedule, err := cron.ParseStandard(s.cfg.Cron)
	if err != nil {
		return fmt.Errorf("scheduler cron %q: %w", s.cfg.Cron, err)
	}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: s.log})),
	)
	c.Schedule(schedule, cron.FuncJob(func() { s.safeTick(ctx) }))
	s.log.Info("Starting publish scheduler", "cron", s.cfg.Cron, "batch_size", s.cfg.BatchSize)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Publish scheduler stopped")
	return nil
}

func (s *Scheduler) safeTick(ctx context.Context) {
	var (
		res PassResult
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("scheduler pass panic", "panic", r)
				err = errFromRecover(r)
			}
		}()
		res, err = s.Tick(ctx)
	}()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("scheduler pass failed", "error", err)
	}
	if s.afterPass != nil {
		s.afterPass(res, err)
	}
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
