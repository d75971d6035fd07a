package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
)

const (
	ViewerKey    = "viewer"
	SessionIDKey = "session_id"
)

// SessionResolver turns a session token into the cached identity.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionToken string) (auth.Viewer, string, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}

// Session authenticates requests with a session token, loads the cached
// identity and sets it in the context. It also sets the user_id attribute on
// the current span for telemetry filtering.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		v, sessionID, err := resolver.Resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "session lookup failed", err))
			return
		}

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.String("user_id", v.ID), attribute.String("role", string(v.Role)))
		}

		c.Set(ViewerKey, v)
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// RequireAdmin rejects viewers that are not administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ViewerFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr(""))
			return
		}
		c.Next()
	}
}

// ViewerFrom returns the identity set by Session, or the anonymous viewer.
func ViewerFrom(c *gin.Context) auth.Viewer {
	v, _ := c.Get(ViewerKey)
	viewer, _ := v.(auth.Viewer)
	return viewer
}
