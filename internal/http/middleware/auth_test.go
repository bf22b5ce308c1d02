package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestRequireAuthAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := newTestLogger(t)
	auth := services.NewAuthService(log, "test-secret", time.Hour)
	mw := NewAuthMiddleware(log, auth)

	r := gin.New()
	r.Use(mw.RequireAuth())
	r.GET("/api/topics", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/topics", mw.RequireRole(services.RoleAdmin, services.RoleEditor), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	token := func(role services.Role) string {
		tok, err := auth.IssueToken("user-1", role)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"missing token", http.MethodGet, "", http.StatusUnauthorized},
		{"malformed header", http.MethodGet, "Token abc", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"viewer can read", http.MethodGet, token(services.RoleViewer), http.StatusOK},
		{"viewer cannot write", http.MethodPost, token(services.RoleViewer), http.StatusForbidden},
		{"editor can write", http.MethodPost, token(services.RoleEditor), http.StatusCreated},
		{"admin can write", http.MethodPost, token(services.RoleAdmin), http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/topics", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}
