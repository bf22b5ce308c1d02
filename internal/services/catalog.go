package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/platform/dbctx"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

const (
	DefaultCatalogPageSize = 10
	MaxCatalogPageSize     = 50
)

type CatalogQuery struct {
	Language catalog.LanguageCode
	Topic    string
	Cursor   *uuid.UUID
	Limit    int
}

type CatalogPage struct {
	Items      []*catalog.Program `json:"items"`
	NextCursor *uuid.UUID         `json:"nextCursor"`
}

// CatalogService serves the public, published-only read side.
type CatalogService interface {
	ListPrograms(ctx context.Context, q CatalogQuery) (CatalogPage, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*catalog.Program, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*catalog.Lesson, error)
	// HandleEvent drops cached pages after a publication.
	HandleEvent(ev realtime.PublicationEvent)
}

type catalogService struct {
	log      *logger.Logger
	programs catalogrepo.ProgramRepo
	lessons  catalogrepo.LessonRepo
	cache    CatalogCache
}

func NewCatalogService(log *logger.Logger, programs catalogrepo.ProgramRepo, lessons catalogrepo.LessonRepo, cache CatalogCache) CatalogService {
	if cache == nil {
		cache = NewNoopCatalogCache()
	}
	return &catalogService{
		log:      log.With("service", "CatalogService"),
		programs: programs,
		lessons:  lessons,
		cache:    cache,
	}
}

func (s *catalogService) ListPrograms(ctx context.Context, q CatalogQuery) (CatalogPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultCatalogPageSize
	}
	if q.Limit > MaxCatalogPageSize {
		q.Limit = MaxCatalogPageSize
	}
	cursor := ""
	if q.Cursor != nil {
		cursor = q.Cursor.String()
	}
	key := fmt.Sprintf("programs:lang=%s:topic=%s:cursor=%s:limit=%d", q.Language, q.Topic, cursor, q.Limit)

	var page CatalogPage
	if s.cached(ctx, key, &page) {
		return page, nil
	}

	// One extra row tells whether another page exists.
	items, err := s.programs.ListCatalog(dbctx.Context{Ctx: ctx}, catalogrepo.CatalogFilter{
		Language: q.Language,
		Topic:    q.Topic,
		Cursor:   q.Cursor,
		Limit:    q.Limit + 1,
	})
	if err != nil {
		return CatalogPage{}, err
	}
	page.Items = items
	if len(items) > q.Limit {
		page.Items = items[:q.Limit]
		last := page.Items[len(page.Items)-1].ID
		page.NextCursor = &last
	}
	if page.Items == nil {
		page.Items = []*catalog.Program{}
	}
	s.store(ctx, key, page)
	return page, nil
}

func (s *catalogService) GetProgram(ctx context.Context, id uuid.UUID) (*catalog.Program, error) {
	key := "program:" + id.String()
	var program catalog.Program
	if s.cached(ctx, key, &program) {
		return &program, nil
	}
	p, err := s.programs.GetCatalogTree(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "catalog.get_program", "program not found", nil)
	}
	s.store(ctx, key, p)
	return p, nil
}

func (s *catalogService) GetLesson(ctx context.Context, id uuid.UUID) (*catalog.Lesson, error) {
	key := "lesson:" + id.String()
	var lesson catalog.Lesson
	if s.cached(ctx, key, &lesson) {
		return &lesson, nil
	}
	l, err := s.lessons.GetPublished(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "catalog.get_lesson", "lesson not found", nil)
	}
	s.store(ctx, key, l)
	return l, nil
}

func (s *catalogService) HandleEvent(ev realtime.PublicationEvent) {
	if err := s.cache.Invalidate(context.Background()); err != nil {
		s.log.Warn("catalog cache invalidation failed", "kind", ev.Kind, "id", ev.ID, "error", err)
	}
}

func (s *catalogService) cached(ctx context.Context, key string, dst any) bool {
	b, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.log.Warn("catalog cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *catalogService) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("catalog cache encode failed", "key", key, "error", err)
		return
	}
	s.cache.Set(ctx, key, b)
}
