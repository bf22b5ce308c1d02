package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	"github.com/yungbote/curriculum-backend/internal/domain/catalog"
	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/platform/ctxutil"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type handlerEnv struct {
	db     *gorm.DB
	engine *gin.Engine
}

// newHandlerEnv mounts the handlers on a bare engine; the role header stands in for the auth middleware.
func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testutil.DB(t)
	log := testutil.Logger(t)
	programs := catalogrepo.NewProgramRepo(db, log)
	lessons := catalogrepo.NewLessonRepo(db, log)
	assets := catalogrepo.NewAssetRepo(db, log)
	topics := catalogrepo.NewTopicRepo(db, log)
	content := services.NewContentService(services.ContentServiceDeps{
		DB:       db,
		Log:      log,
		Topics:   topics,
		Programs: programs,
		Terms:    catalogrepo.NewTermRepo(db, log),
		Lessons:  lessons,
		Assets:   assets,
		Publication: aggregates.NewPublicationAggregate(aggregates.PublicationDeps{
			BaseDeps: aggregates.BaseDeps{DB: db, Log: log},
			Programs: programs,
			Lessons:  lessons,
			Assets:   assets,
			Topics:   topics,
		}),
	})
	cat := services.NewCatalogService(log, programs, lessons, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{Subject: "tester", Role: role})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	programH := NewProgramHandler(content)
	lessonH := NewLessonHandler(content)
	catalogH := NewCatalogHandler(cat)
	r.POST("/api/programs", programH.CreateProgram)
	r.GET("/api/programs/:id", programH.GetProgram)
	r.GET("/api/lessons/:id", lessonH.GetLesson)
	r.PUT("/api/lessons/:id", lessonH.UpdateLesson)
	r.GET("/api/catalog/programs", catalogH.ListPrograms)
	return &handlerEnv{db: db, engine: r}
}

func (e *handlerEnv) do(t *testing.T, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.APIError {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return env.Error
}

func TestUpdateLessonPublishGate(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, env.db, "en")
	term := testutil.SeedTerm(t, ctx, env.db, program.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, env.db, term.ID, 1, "en")
	path := "/api/lessons/" + lesson.ID.String()

	rec := env.do(t, http.MethodPut, path, "EDITOR", gin.H{"status": "PUBLISHED"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if apiErr := decodeError(t, rec); apiErr.Code != "MISSING_REQUIRED_ASSETS" || apiErr.Message == "" {
		t.Fatalf("error=%+v", apiErr)
	}

	rec = env.do(t, http.MethodPut, path, "EDITOR", gin.H{
		"status": "PUBLISHED",
		"thumbnails": []gin.H{
			{"language": "en", "variant": "portrait", "url": "https://cdn.example/p.jpg"},
			{"language": "en", "variant": "LANDSCAPE", "url": "https://cdn.example/l.jpg"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got lessonView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != catalog.LessonPublished || got.PublishedAt == nil {
		t.Fatalf("lesson=%+v", got)
	}
	if got.Thumbnails["en"]["landscape"] != "https://cdn.example/l.jpg" || got.Thumbnails["en"]["portrait"] == "" {
		t.Fatalf("thumbnails=%v", got.Thumbnails)
	}
}

func TestUpdateLessonRejectsPastPublishAt(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, env.db, "en")
	term := testutil.SeedTerm(t, ctx, env.db, program.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, env.db, term.ID, 1, "en")

	rec := env.do(t, http.MethodPut, "/api/lessons/"+lesson.ID.String(), "ADMIN", gin.H{
		"status":    "SCHEDULED",
		"publishAt": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "INVALID_PUBLISH_AT" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateProgramBindingErrors(t *testing.T) {
	env := newHandlerEnv(t)
	cases := []struct {
		name string
		body gin.H
	}{
		{"missing title", gin.H{"languagePrimary": "en"}},
		{"region subtag", gin.H{"title": "T", "languagePrimary": "en-US"}},
		{"unknown language", gin.H{"title": "T", "languagePrimary": "zz"}},
		{"bad poster variant", gin.H{"title": "T", "languagePrimary": "en", "posters": []gin.H{
			{"language": "en", "variant": "WIDE", "url": "https://cdn.example/p.jpg"},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/programs", "ADMIN", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			if code := decodeError(t, rec).Code; code != response.CodeValidation {
				t.Fatalf("code=%q", code)
			}
		})
	}
}

func TestCreateProgramNormalizesLanguages(t *testing.T) {
	env := newHandlerEnv(t)
	rec := env.do(t, http.MethodPost, "/api/programs", "ADMIN", gin.H{
		"title":              "Telugu basics",
		"languagePrimary":    "TE",
		"languagesAvailable": []string{"en"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got programView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.LanguagePrimary != "te" || len(got.LanguagesAvailable) != 2 || got.LanguagesAvailable[0] != "te" {
		t.Fatalf("languages primary=%s available=%v", got.LanguagePrimary, got.LanguagesAvailable)
	}
}

func TestGetLessonViewerForbiddenOnDraft(t *testing.T) {
	env := newHandlerEnv(t)
	ctx := context.Background()
	program := testutil.SeedProgram(t, ctx, env.db, "en")
	term := testutil.SeedTerm(t, ctx, env.db, program.ID, 1)
	lesson := testutil.SeedLesson(t, ctx, env.db, term.ID, 1, "en")
	path := "/api/lessons/" + lesson.ID.String()

	if rec := env.do(t, http.MethodGet, path, "VIEWER", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer status=%d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, path, "EDITOR", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("editor status=%d body=%s", rec.Code, rec.Body.String())
	}
	var got lessonDetailView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ProgramID != program.ID || got.PrevLessonID != nil || got.NextLessonID != nil {
		t.Fatalf("detail=%+v", got)
	}
	if rec := env.do(t, http.MethodGet, "/api/lessons/not-a-uuid", "EDITOR", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
}

func TestCatalogListSetsCacheHeaders(t *testing.T) {
	env := newHandlerEnv(t)
	rec := env.do(t, http.MethodGet, "/api/catalog/programs?language=en&limit=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60, s-maxage=60" {
		t.Fatalf("Cache-Control=%q", got)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["items"]) != "[]" || string(body["nextCursor"]) != "null" {
		t.Fatalf("body=%s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/catalog/programs?cursor=nope", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad cursor status=%d", rec.Code)
	}
}
