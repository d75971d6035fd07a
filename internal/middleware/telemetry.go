package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// traced reports whether path gets a span. Live streams stay open for the
// whole subscription, so only the request/response API is traced.
func traced(path string) bool {
	return strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/api/v1/stream/")
}

// OtelTracing instruments API requests with otelgin.
func OtelTracing(serviceName string) gin.HandlerFunc {
	instrument := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		if !traced(c.Request.URL.Path) {
			c.Next()
			return
		}
		instrument(c)
	}
}

// TraceID echoes the span's trace id in X-Trace-Id.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			c.Header("X-Trace-Id", sc.TraceID().String())
		}
		c.Next()
	}
}

var tracedParams = []string{"space_id", "room_id", "booking_id"}

// TraceViewer tags the request span with the viewer set by Session and the
// space, room or booking in the path.
func TraceViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		v := ViewerFrom(c)
		attrs := []attribute.KeyValue{
			attribute.String("roombook.viewer.id", v.ID),
			attribute.String("roombook.viewer.role", string(v.Role)),
		}
		for _, p := range tracedParams {
			if val := c.Param(p); val != "" {
				attrs = append(attrs, attribute.String("roombook."+p, val))
			}
		}
		span.SetAttributes(attrs...)
		c.Next()
	}
}
