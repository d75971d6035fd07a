package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/utils"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SpaceService interface {
	Create(ctx context.Context, v auth.Viewer, name string) (*model.Space, error)
	Rename(ctx context.Context, v auth.Viewer, id uuid.UUID, name string) error
	// Delete removes the space and all of its bookings and reports how many
	// bookings went with it.
	Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (int64, error)
	AddRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, name string) (*model.Room, error)
	RenameRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string, name string) error
	DeleteRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string) (int64, error)
	Search(ctx context.Context, term string) []model.Space
}

// CascadeArchive is the document uploaded before a cascade removes bookings.
type CascadeArchive struct {
	Kind     string          `json:"kind"`
	SpaceID  uuid.UUID       `json:"space_id"`
	RoomID   string          `json:"room_id,omitempty"`
	ActorID  string          `json:"actor_id"`
	Bookings []model.Booking `json:"bookings"`
	At       time.Time       `json:"at"`
}

type spaceService struct {
	r             repo.SpaceRepo
	live          LiveView
	archiver      Archiver
	archivePrefix string
	pub           EventPublisher
	log           *zap.Logger
}

// NewSpaceService builds the space service. A nil archiver skips the cascade
// archive.
func NewSpaceService(r repo.SpaceRepo, lv LiveView, archiver Archiver, archivePrefix string, pub EventPublisher, log *zap.Logger) SpaceService {
	if archivePrefix == "" {
		archivePrefix = "cascade"
	}
	return &spaceService{r: r, live: lv, archiver: archiver, archivePrefix: archivePrefix, pub: pub, log: log}
}

func (s *spaceService) Create(ctx context.Context, v auth.Viewer, name string) (*model.Space, error) {
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}
	n, err := workflow.ValidateName("name", name)
	if err != nil {
		return nil, err
	}

	sp := &model.Space{Name: n}
	sp.SetRooms(nil)
	if err := s.r.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("create space: %w", err)
	}
	s.live.Changed(ctx, live.Spaces)
	return sp, nil
}

func (s *spaceService) Rename(ctx context.Context, v auth.Viewer, id uuid.UUID, name string) error {
	if !v.IsAdmin() {
		return ErrForbidden
	}
	n, err := workflow.ValidateName("name", name)
	if err != nil {
		return err
	}
	if err := mapSpaceErr(s.r.Rename(ctx, id, n)); err != nil {
		return fmt.Errorf("rename space: %w", err)
	}
	s.live.Changed(ctx, live.Spaces)
	return nil
}

func (s *spaceService) Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (int64, error) {
	if !v.IsAdmin() {
		return 0, ErrForbidden
	}
	hook := s.archiveHook(ctx, CascadeArchive{Kind: "space", SpaceID: id, ActorID: v.ID})

	removed, err := s.r.Delete(ctx, id, hook)
	if err != nil {
		return 0, fmt.Errorf("delete space: %w", mapSpaceErr(err))
	}
	s.log.Sugar().Infow("space deleted", "space_id", id, "bookings_removed", removed, "actor_id", v.ID)

	s.live.Changed(ctx, live.Spaces)
	s.live.Changed(ctx, live.Bookings)
	publish(ctx, s.pub, s.log, LifecycleEvent{Type: EventSpaceDeleted, ActorID: v.ID, SpaceID: &id, Removed: removed, At: time.Now().UTC()})
	return removed, nil
}

func (s *spaceService) AddRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, name string) (*model.Room, error) {
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}
	n, err := workflow.ValidateName("name", name)
	if err != nil {
		return nil, err
	}

	room := model.Room{ID: utils.NewRoomID(), Name: n}
	if err := s.r.AddRoom(ctx, spaceID, room); err != nil {
		return nil, fmt.Errorf("add room: %w", mapSpaceErr(err))
	}
	s.live.Changed(ctx, live.Spaces)
	return &room, nil
}

func (s *spaceService) RenameRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string, name string) error {
	if !v.IsAdmin() {
		return ErrForbidden
	}
	n, err := workflow.ValidateName("name", name)
	if err != nil {
		return err
	}
	if err := s.r.RenameRoom(ctx, spaceID, roomID, n); err != nil {
		return fmt.Errorf("rename room: %w", mapSpaceErr(err))
	}
	s.live.Changed(ctx, live.Spaces)
	return nil
}

func (s *spaceService) DeleteRoom(ctx context.Context, v auth.Viewer, spaceID uuid.UUID, roomID string) (int64, error) {
	if !v.IsAdmin() {
		return 0, ErrForbidden
	}
	hook := s.archiveHook(ctx, CascadeArchive{Kind: "room", SpaceID: spaceID, RoomID: roomID, ActorID: v.ID})

	removed, err := s.r.DeleteRoom(ctx, spaceID, roomID, hook)
	if err != nil {
		return 0, fmt.Errorf("delete room: %w", mapSpaceErr(err))
	}
	s.log.Sugar().Infow("room deleted", "space_id", spaceID, "room_id", roomID, "bookings_removed", removed, "actor_id", v.ID)

	s.live.Changed(ctx, live.Spaces)
	s.live.Changed(ctx, live.Bookings)
	publish(ctx, s.pub, s.log, LifecycleEvent{Type: EventRoomDeleted, ActorID: v.ID, SpaceID: &spaceID, RoomID: roomID, Removed: removed, At: time.Now().UTC()})
	return removed, nil
}

func (s *spaceService) Search(_ context.Context, term string) []model.Space {
	return visibility.SearchSpaces(s.live.Spaces(), term)
}

func (s *spaceService) archiveHook(ctx context.Context, doc CascadeArchive) repo.CascadeHook {
	if s.archiver == nil {
		return nil
	}
	return func(removed []model.Booking) error {
		doc.Bookings = removed
		doc.At = time.Now().UTC()
		meta, err := s.archiver.UploadJSON(ctx, path.Join(s.archivePrefix, doc.Kind), doc)
		if err != nil {
			return fmt.Errorf("archive cascade: %w", err)
		}
		s.log.Sugar().Infow("cascade archived", "kind", doc.Kind, "key", meta.Key, "bookings", len(removed))
		return nil
	}
}

func mapSpaceErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSpaceNotFound
	}
	return err
}
