package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/data/aggregates"
	catalogrepo "github.com/yungbote/curriculum-backend/internal/data/repos/catalog"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/curriculum-backend/internal/http/handlers"
	httpMW "github.com/yungbote/curriculum-backend/internal/http/middleware"
	"github.com/yungbote/curriculum-backend/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
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
	auth := services.NewAuthService(log, "router-test-secret", time.Hour)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}

	r := NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		TopicHandler:   httpH.NewTopicHandler(content),
		ProgramHandler: httpH.NewProgramHandler(content),
		TermHandler:    httpH.NewTermHandler(content),
		LessonHandler:  httpH.NewLessonHandler(content),
		CatalogHandler: httpH.NewCatalogHandler(services.NewCatalogService(log, programs, lessons, nil)),
		HealthHandler:  httpH.NewHealthHandler(sqlDB),
	})
	return r, auth
}

func TestRouterAccessRules(t *testing.T) {
	r, auth := newTestRouter(t)
	bearer := func(role services.Role) string {
		tok, err := auth.IssueToken("someone", role)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		body   string
		want   int
	}{
		{"health is public", http.MethodGet, "/healthcheck", "", "", http.StatusOK},
		{"catalog is public", http.MethodGet, "/api/catalog/programs", "", "", http.StatusOK},
		{"crud needs a token", http.MethodGet, "/api/topics", "", "", http.StatusUnauthorized},
		{"viewer lists topics", http.MethodGet, "/api/topics", bearer(services.RoleViewer), "", http.StatusOK},
		{"viewer cannot create", http.MethodPost, "/api/topics", bearer(services.RoleViewer), `{"name":"Math"}`, http.StatusForbidden},
		{"editor creates", http.MethodPost, "/api/topics", bearer(services.RoleEditor), `{"name":"Math"}`, http.StatusCreated},
		{"duplicate topic conflicts", http.MethodPost, "/api/topics", bearer(services.RoleAdmin), `{"name":"Math"}`, http.StatusConflict},
		{"unknown program", http.MethodGet, "/api/programs/3f2b6c1e-8a5d-4a8e-9c3e-1d2f3a4b5c6d", bearer(services.RoleAdmin), "", http.StatusNotFound},
	}
	// Cases share one database and run in order.
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d want=%d body=%s", tc.name, rec.Code, tc.want, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing X-Request-Id", tc.name)
		}
	}
}
