package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/handler"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/service"
)

type staticSessions map[string]auth.Viewer

func (s staticSessions) Resolve(_ context.Context, token string) (auth.Viewer, string, error) {
	v, ok := s[token]
	if !ok {
		return auth.Viewer{}, "", service.ErrSessionNotFound
	}
	return v, "sess-" + token, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := live.NewHub(
		func(ctx context.Context) ([]model.Booking, error) { return nil, nil },
		func(ctx context.Context) ([]model.Space, error) { return nil, nil },
		func(ctx context.Context) ([]model.User, error) { return nil, nil },
		nil, zap.NewNop(),
	)
	return NewRouter(RouterDeps{
		Config: &config.Config{},
		Log:    zap.NewNop(),
		Sessions: staticSessions{
			"user-token":  {ID: "user-ana", Role: model.RoleUser},
			"admin-token": {ID: "admin-1", Role: model.RoleAdmin},
		},
		SessionHandler:  handler.NewSessionHandler(nil),
		UserHandler:     handler.NewUserHandler(nil, nil, zap.NewNop()),
		CalendarHandler: handler.NewCalendarHandler(service.NewGridService(hub, nil)),
		SpaceHandler:    handler.NewSpaceHandler(nil),
		BookingHandler:  handler.NewBookingHandler(nil, nil),
		StreamHandler:   handler.NewStreamHandler(hub),
	})
}

func TestRouter_Surface(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		name           string
		method         string
		target         string
		token          string
		expectedStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/health", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, target: "/metrics", expectedStatus: http.StatusOK},
		{name: "ping needs a session", method: http.MethodGet, target: "/api/v1/ping", expectedStatus: http.StatusUnauthorized},
		{name: "ping", method: http.MethodGet, target: "/api/v1/ping", token: "user-token", expectedStatus: http.StatusOK},
		{name: "unknown session", method: http.MethodGet, target: "/api/v1/ping", token: "stale", expectedStatus: http.StatusUnauthorized},
		{name: "current identity", method: http.MethodGet, target: "/api/v1/session", token: "user-token", expectedStatus: http.StatusOK},
		{name: "week", method: http.MethodGet, target: "/api/v1/calendar/week?offset=2", token: "user-token", expectedStatus: http.StatusOK},
		{name: "grid", method: http.MethodGet, target: "/api/v1/grid", token: "user-token", expectedStatus: http.StatusOK},
		{name: "users list is admin only", method: http.MethodGet, target: "/api/v1/users", token: "user-token", expectedStatus: http.StatusForbidden},
		{name: "space writes are admin only", method: http.MethodPost, target: "/api/v1/spaces", token: "user-token", expectedStatus: http.StatusForbidden},
		{name: "room writes are admin only", method: http.MethodDelete, target: "/api/v1/spaces/x/rooms/y", token: "user-token", expectedStatus: http.StatusForbidden},
		{name: "requests table is admin only", method: http.MethodGet, target: "/api/v1/bookings", token: "user-token", expectedStatus: http.StatusForbidden},
		{name: "status change is admin only", method: http.MethodPut, target: "/api/v1/bookings/x/status", token: "user-token", expectedStatus: http.StatusForbidden},
		{name: "bad booking id", method: http.MethodDelete, target: "/api/v1/bookings/x", token: "user-token", expectedStatus: http.StatusBadRequest},
		{name: "sign in needs a body", method: http.MethodPost, target: "/api/v1/session", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
