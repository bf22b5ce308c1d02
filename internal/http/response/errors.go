package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/curriculum-backend/internal/domain/aggregates"
	"github.com/yungbote/curriculum-backend/internal/platform/apierr"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// RespondDomainError renders err with the status its aggregate code maps to.
// Anything that is not a caller mistake becomes an opaque 500.
func RespondDomainError(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// AbortWithDomainError is RespondDomainError for middleware: later handlers are skipped.
func AbortWithDomainError(c *gin.Context, err error) {
	status, code, msg := classify(err)
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func classify(err error) (int, string, string) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status, apiErr.Code, apiErr.Error()
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation, domainagg.CodeInvariantViolation:
		code := domainagg.ReasonOf(err)
		if code == "" {
			code = CodeValidation
		}
		return http.StatusBadRequest, code, domainagg.MessageOf(err)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, CodeNotFound, domainagg.MessageOf(err)
	case domainagg.CodeConflict:
		return http.StatusConflict, CodeConflict, "resource already exists or was modified concurrently"
	case domainagg.CodePreconditionFailed:
		return http.StatusUnprocessableEntity, "PRECONDITION_FAILED", "referenced resource does not exist"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}
