package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/realtime"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	hits    int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return b, ok
}

func (c *mapCache) Set(_ context.Context, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	return nil
}

// seedPublishedProgram creates a PUBLISHED program with one PUBLISHED lesson.
func seedPublishedProgram(t *testing.T, ctx context.Context, db *gorm.DB, lang catalog.LanguageCode, publishedAt time.Time) *catalog.Program {
	t.Helper()
	p := testutil.SeedProgram(t, ctx, db, lang)
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, db, term.ID, 1, lang)
	at := publishedAt.UTC()
	if err := db.Model(&catalog.Program{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"status": catalog.ProgramPublished, "published_at": at}).Error; err != nil {
		t.Fatalf("publish program: %v", err)
	}
	if err := db.Model(&catalog.Lesson{}).Where("id = ?", l.ID).
		Updates(map[string]interface{}{"status": catalog.LessonPublished, "published_at": at}).Error; err != nil {
		t.Fatalf("publish lesson: %v", err)
	}
	return p
}

func newCatalogService(t *testing.T, cache CatalogCache) (CatalogService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewCatalogService(log, catalogrepo.NewProgramRepo(db, log), catalogrepo.NewLessonRepo(db, log), cache), db
}

func TestCatalogListProgramsPaginatesNewestFirst(t *testing.T) {
	svc, db := newCatalogService(t, nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, seedPublishedProgram(t, ctx, db, "en", base.Add(time.Duration(i)*time.Hour)).ID)
	}
	// Programs without a published lesson stay out of the catalog.
	testutil.SeedProgram(t, ctx, db, "en")

	page, err := svc.ListPrograms(ctx, CatalogQuery{Limit: 2})
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != ids[2] || page.Items[1].ID != ids[1] {
		t.Fatalf("first page: %+v", page.Items)
	}
	if page.NextCursor == nil || *page.NextCursor != ids[1] {
		t.Fatalf("nextCursor=%v", page.NextCursor)
	}

	page, err = svc.ListPrograms(ctx, CatalogQuery{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != ids[0] || page.NextCursor != nil {
		t.Fatalf("second page: items=%d next=%v", len(page.Items), page.NextCursor)
	}
}

func TestCatalogListProgramsFiltersByLanguage(t *testing.T) {
	svc, db := newCatalogService(t, nil)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPublishedProgram(t, ctx, db, "en", now)
	te := seedPublishedProgram(t, ctx, db, "te", now)

	page, err := svc.ListPrograms(ctx, CatalogQuery{Language: "te"})
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != te.ID {
		t.Fatalf("items=%+v", page.Items)
	}
}

func TestCatalogCacheServesUntilInvalidated(t *testing.T) {
	cache := newMapCache()
	svc, db := newCatalogService(t, cache)
	ctx := context.Background()
	p := seedPublishedProgram(t, ctx, db, "en", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.GetProgram(ctx, p.ID); err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if err := db.Model(&catalog.Program{}).Where("id = ?", p.ID).Update("title", "renamed").Error; err != nil {
		t.Fatalf("rename: %v", err)
	}
	got, err := svc.GetProgram(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if got.Title != "program" || cache.hits != 1 {
		t.Fatalf("expected cached title, got %q hits=%d", got.Title, cache.hits)
	}

	svc.HandleEvent(realtime.PublicationEvent{Kind: realtime.ProgramPublished, ID: p.ID})
	got, err = svc.GetProgram(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if got.Title != "renamed" {
		t.Fatalf("expected fresh title after invalidation, got %q", got.Title)
	}
}

func TestCatalogHidesUnpublished(t *testing.T) {
	svc, db := newCatalogService(t, nil)
	ctx := context.Background()
	p := testutil.SeedProgram(t, ctx, db, "en")
	term := testutil.SeedTerm(t, ctx, db, p.ID, 1)
	l := testutil.SeedLesson(t, ctx, db, term.ID, 1, "en")

	if _, err := svc.GetProgram(ctx, p.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("draft program: %v", err)
	}
	if _, err := svc.GetLesson(ctx, l.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("draft lesson: %v", err)
	}
}
