package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/curriculum-backend/internal/http/response"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
	"github.com/yungbote/curriculum-backend/internal/platform/ctxutil"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth resolves the bearer token into a caller on the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			response.AbortWithDomainError(c, apierr.Unauthorized("missing or invalid token"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), token)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.AbortWithDomainError(c, apierr.Unauthorized(err.Error()))
			return
		}
		if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.Subject == "" {
			response.AbortWithDomainError(c, apierr.Forbidden("token carries no subject"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole admits only callers whose token carries one of roles. It must run after RequireAuth.
func (am *AuthMiddleware) RequireRole(roles ...services.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := services.RoleFromContext(c.Request.Context())
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.AbortWithDomainError(c, apierr.Forbidden(fmt.Sprintf("role %s may not perform this action", role)))
	}
}

func extractBearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
