package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondPublic writes payload with a shared-cache Cache-Control of maxAge.
func RespondPublic(c *gin.Context, maxAge time.Duration, payload any) {
	secs := int(maxAge / time.Second)
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, s-maxage=%d", secs, secs))
	c.JSON(http.StatusOK, payload)
}
