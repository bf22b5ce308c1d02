package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/ctxutil"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"

	maxRequestIDLen = 128
)

// RequestContext stamps every request with a request id (client supplied or generated) and the
// active trace id, and echoes both as response headers.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		span := trace.SpanFromContext(c.Request.Context())
		traceID := uuid.NewString()
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
			span.SetAttributes(attribute.String("http.request_id", reqID))
		}

		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{TraceID: traceID, RequestID: reqID})
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, reqID)
		c.Header(HeaderTraceID, traceID)
		c.Next()
	}
}

// Observe logs each request once it completes and records it on m. Both log and m may be nil.
func Observe(log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	if log != nil {
		log = log.With("middleware", "Observe")
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		status := c.Writer.Status()
		dur := time.Since(start)
		m.ObserveAPI(c.Request.Method, routeLabel(c), strconv.Itoa(status), dur)
		if log == nil {
			return
		}

		fields := []any{
			"method", c.Request.Method,
			"route", routeLabel(c),
			"status", status,
			"duration_ms", dur.Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		switch {
		case status >= 500:
			if last := c.Errors.Last(); last != nil {
				fields = append(fields, "error", last.Err)
			}
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// routeLabel is the matched route template, so ids never become metric labels.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
