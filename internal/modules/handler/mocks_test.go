package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"github.com/memodb-io/roombook/internal/pkg/occupancy"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

var (
	adminViewer = auth.Viewer{ID: "admin-1", Name: "Admin", Email: "admin@ifce.edu.br", Role: model.RoleAdmin}
	userViewer  = auth.Viewer{ID: "user-ana", Name: "Ana", Email: "ana@ifce.edu.br", Role: model.RoleUser}
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// as runs h with v and a session id in the context, the way
// middleware.Session leaves them.
func as(v auth.Viewer, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ViewerKey, v)
		c.Set(middleware.SessionIDKey, "sess-1")
		h(c)
	}
}

func jsonBody(v any) *bytes.Reader {
	raw, _ := sonic.Marshal(v)
	return bytes.NewReader(raw)
}

func doJSON(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, jsonBody(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Identify(ctx context.Context, providerToken string) (*auth.ProviderClaims, error) {
	args := m.Called(ctx, providerToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.ProviderClaims), args.Error(1)
}

func (m *MockSessionService) Start(ctx context.Context, providerToken string) (*service.Session, error) {
	args := m.Called(ctx, providerToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockSessionService) Resolve(ctx context.Context, sessionToken string) (auth.Viewer, string, error) {
	args := m.Called(ctx, sessionToken)
	return args.Get(0).(auth.Viewer), args.String(1), args.Error(2)
}

func (m *MockSessionService) Refresh(ctx context.Context, sessionID string, v auth.Viewer) error {
	return m.Called(ctx, sessionID, v).Error(0)
}

func (m *MockSessionService) End(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, subject string, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, subject, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateName(ctx context.Context, v auth.Viewer, name string) (*model.User, error) {
	args := m.Called(ctx, v, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, v auth.Viewer) ([]model.User, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

type MockSpaceService struct {
	mock.Mock
}

func (m *MockSpaceService) Create(ctx context.Context, v auth.Viewer, name string) (*model.Space, error) {
	args := m.Called(ctx, v, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Space), args.Error(1)
}

func (m *MockSpaceService) Rename(ctx context.Context, v auth.Viewer, id uuid.UUID, name string) error {
	return m.Called(ctx, v, id, name).Error(0)
}

func (m *MockSpaceService) Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, v, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSpaceService) AddRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, name string) (*model.Room, error) {
	args := m.Called(ctx, v, spaceID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockSpaceService) RenameRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string, name string) error {
	return m.Called(ctx, v, spaceID, roomID, name).Error(0)
}

func (m *MockSpaceService) DeleteRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string) (int64, error) {
	args := m.Called(ctx, v, spaceID, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSpaceService) Search(ctx context.Context, term string) []model.Space {
	return m.Called(ctx, term).Get(0).([]model.Space)
}

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Request(ctx context.Context, v auth.Viewer, in service.RequestInput) (*service.RequestOutput, error) {
	args := m.Called(ctx, v, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RequestOutput), args.Error(1)
}

func (m *MockReservationService) Drain() { m.Called() }

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ChangeStatus(ctx context.Context, v auth.Viewer, id uuid.UUID, status model.BookingStatus) (*service.Notice, error) {
	args := m.Called(ctx, v, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Notice), args.Error(1)
}

func (m *MockBookingService) Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (*service.Notice, error) {
	args := m.Called(ctx, v, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Notice), args.Error(1)
}

func (m *MockBookingService) Actions(ctx context.Context, v auth.Viewer, id uuid.UUID) ([]workflow.Action, error) {
	args := m.Called(ctx, v, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]workflow.Action), args.Error(1)
}

func (m *MockBookingService) ListMine(ctx context.Context, v auth.Viewer) ([]visibility.BookingView, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]visibility.BookingView), args.Error(1)
}

func (m *MockBookingService) ListAll(ctx context.Context, v auth.Viewer) ([]visibility.BookingView, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]visibility.BookingView), args.Error(1)
}

type MockGridService struct {
	mock.Mock
}

func (m *MockGridService) Week(offset int) calendar.Week {
	return m.Called(offset).Get(0).(calendar.Week)
}

func (m *MockGridService) Grid(ctx context.Context, v auth.Viewer, offset int, term string) service.Grid {
	return m.Called(ctx, v, offset, term).Get(0).(service.Grid)
}

func (m *MockGridService) Cell(ctx context.Context, v auth.Viewer, roomID string, day time.Time, slot string) (occupancy.Cell, error) {
	args := m.Called(ctx, v, roomID, day, slot)
	return args.Get(0).(occupancy.Cell), args.Error(1)
}
