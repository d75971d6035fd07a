package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/infra/blob"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// store is an in-memory stand-in for the three tables.
type store struct {
	mu       sync.Mutex
	bookings []model.Booking
	spaces   []model.Space
	users    []model.User
}

type memBookingRepo struct{ s *store }

func (r memBookingRepo) Create(_ context.Context, b *model.Booking, exclusive bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if exclusive {
		for _, o := range r.s.bookings {
			if o.Visible() && o.RoomID == b.RoomID && o.TimeSlot == b.TimeSlot && o.Date.Equal(b.Date) {
				return repo.ErrSlotTaken
			}
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	r.s.bookings = append(r.s.bookings, *b)
	return nil
}

func (r memBookingRepo) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.bookings {
		if r.s.bookings[i].ID == id {
			if r.s.bookings[i].Status != model.StatusPending {
				return repo.ErrNotPending
			}
			r.s.bookings[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.bookings)
	r.s.bookings = slices.DeleteFunc(r.s.bookings, func(b model.Booking) bool { return b.ID == id })
	if len(r.s.bookings) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r memBookingRepo) ListAll(context.Context) ([]model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.bookings), nil
}

type memSpaceRepo struct{ s *store }

func (r memSpaceRepo) Create(_ context.Context, sp *model.Space) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	r.s.spaces = append(r.s.spaces, *sp)
	return nil
}

func (r memSpaceRepo) index(id uuid.UUID) int {
	return slices.IndexFunc(r.s.spaces, func(sp model.Space) bool { return sp.ID == id })
}

func (r memSpaceRepo) Get(_ context.Context, id uuid.UUID) (*model.Space, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sp := r.s.spaces[i]
	return &sp, nil
}

func (r memSpaceRepo) Rename(_ context.Context, id uuid.UUID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	r.s.spaces[i].Name = name
	return nil
}

// cascade mirrors the transactional repo: the hook sees the doomed bookings
// and its failure leaves everything in place.
func (r memSpaceRepo) cascade(match func(model.Booking) bool, hook repo.CascadeHook) (int64, error) {
	var doomed []model.Booking
	for _, b := range r.s.bookings {
		if match(b) {
			doomed = append(doomed, b)
		}
	}
	if hook != nil && len(doomed) > 0 {
		if err := hook(doomed); err != nil {
			return 0, err
		}
	}
	r.s.bookings = slices.DeleteFunc(r.s.bookings, match)
	return int64(len(doomed)), nil
}

func (r memSpaceRepo) Delete(_ context.Context, id uuid.UUID, hook repo.CascadeHook) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return 0, gorm.ErrRecordNotFound
	}
	n, err := r.cascade(func(b model.Booking) bool { return b.SpaceID == id }, hook)
	if err != nil {
		return 0, err
	}
	r.s.spaces = slices.Delete(r.s.spaces, i, i+1)
	return n, nil
}

func (r memSpaceRepo) AddRoom(_ context.Context, spaceID uuid.UUID, room model.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(spaceID)
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	rooms := slices.Clone(r.s.spaces[i].RoomList())
	r.s.spaces[i].SetRooms(append(rooms, room))
	return nil
}

func (r memSpaceRepo) RenameRoom(_ context.Context, spaceID uuid.UUID, roomID string, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(spaceID)
	if i < 0 {
		return gorm.ErrRecordNotFound
	}
	rooms := slices.Clone(r.s.spaces[i].RoomList())
	j := slices.IndexFunc(rooms, func(rm model.Room) bool { return rm.ID == roomID })
	if j < 0 {
		return repo.ErrRoomNotFound
	}
	rooms[j].Name = name
	r.s.spaces[i].SetRooms(rooms)
	return nil
}

func (r memSpaceRepo) DeleteRoom(_ context.Context, spaceID uuid.UUID, roomID string, hook repo.CascadeHook) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(spaceID)
	if i < 0 {
		return 0, gorm.ErrRecordNotFound
	}
	if _, ok := r.s.spaces[i].FindRoom(roomID); !ok {
		return 0, repo.ErrRoomNotFound
	}
	n, err := r.cascade(func(b model.Booking) bool { return b.RoomID == roomID }, hook)
	if err != nil {
		return 0, err
	}
	rooms := slices.DeleteFunc(slices.Clone(r.s.spaces[i].RoomList()), func(rm model.Room) bool { return rm.ID == roomID })
	r.s.spaces[i].SetRooms(rooms)
	return n, nil
}

func (r memSpaceRepo) ListAll(context.Context) ([]model.Space, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.spaces), nil
}

type memUserRepo struct{ s *store }

func (r memUserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.users {
		if o.ID == u.ID || o.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r memUserRepo) Get(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUserRepo) UpdateName(_ context.Context, id string, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			r.s.users[i].Name = name
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memUserRepo) ListAll(context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.users), nil
}

type memSessionStore struct {
	mu sync.Mutex
	m  map[string]auth.Viewer
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{m: make(map[string]auth.Viewer)}
}

func (s *memSessionStore) Put(_ context.Context, id string, v auth.Viewer, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (auth.Viewer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[id]
	if !ok {
		return auth.Viewer{}, auth.ErrSessionNotFound
	}
	return v, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, routingKey string, v any) error {
	args := m.Called(ctx, routingKey, v)
	return args.Error(0)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) UploadJSON(ctx context.Context, keyPrefix string, data any) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, keyPrefix, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

// MockBookingRepo is a mock implementation of repo.BookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *model.Booking, exclusive bool) error {
	args := m.Called(ctx, b, exclusive)
	return args.Error(0)
}

func (m *MockBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

var (
	admin = auth.Viewer{ID: "admin-1", Name: "Admin", Email: "admin@ifce.edu.br", Role: model.RoleAdmin}
	ana   = auth.Viewer{ID: "user-ana", Name: "Ana", Email: "ana@ifce.edu.br", Role: model.RoleUser}
	bruno = auth.Viewer{ID: "user-bruno", Name: "Bruno", Email: "bruno@ifce.edu.br", Role: model.RoleUser}
)

// env wires the services over one in-memory store and a synchronous hub.
type env struct {
	store    *store
	hub      *live.Hub
	bookings memBookingRepo
	spaces   memSpaceRepo
	users    memUserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := &store{}
	for _, v := range []auth.Viewer{admin, ana, bruno} {
		s.users = append(s.users, model.User{ID: v.ID, Name: v.Name, Email: v.Email, Role: v.Role})
	}
	e := &env{store: s, bookings: memBookingRepo{s}, spaces: memSpaceRepo{s}, users: memUserRepo{s}}
	e.hub = live.NewHub(e.bookings.ListAll, e.spaces.ListAll, e.users.ListAll, nil, zap.NewNop())
	require.NoError(t, e.hub.LoadAll(context.Background()))
	return e
}

func (e *env) spaceService(archiver Archiver, pub EventPublisher) SpaceService {
	return NewSpaceService(e.spaces, e.hub, archiver, "cascade", pub, zap.NewNop())
}

func (e *env) reservations(mode string) ReservationService {
	return NewReservationService(e.bookings, e.hub, nil, zap.NewNop(), ReservationOptions{SubmitMode: mode, EnforceUniqueSlot: true})
}

func (e *env) bookingService(pub EventPublisher) BookingService {
	return NewBookingService(e.bookings, e.hub, NewLocalInFlight(), pub, zap.NewNop())
}

// seedRoom creates a space with one room through the service and returns both.
func (e *env) seedRoom(t *testing.T, spaceName, roomName string) (model.Space, model.Room) {
	t.Helper()
	ctx := context.Background()
	svc := e.spaceService(nil, nil)
	sp, err := svc.Create(ctx, admin, spaceName)
	require.NoError(t, err)
	room, err := svc.AddRoom(ctx, admin, sp.ID, roomName)
	require.NoError(t, err)
	return *sp, *room
}
