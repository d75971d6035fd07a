package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpaceRepo interface {
	Create(ctx context.Context, s *model.Space) error
	Get(ctx context.Context, id uuid.UUID) (*model.Space, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	// Delete removes the space and every booking of it in one transaction and
	// returns the number of bookings removed.
	Delete(ctx context.Context, id uuid.UUID, hook CascadeHook) (int64, error)
	AddRoom(ctx context.Context, spaceID uuid.UUID, room model.Room) error
	RenameRoom(ctx context.Context, spaceID uuid.UUID, roomID string, name string) error
	// DeleteRoom removes the room from its space and every booking of it in
	// one transaction and returns the number of bookings removed.
	DeleteRoom(ctx context.Context, spaceID uuid.UUID, roomID string, hook CascadeHook) (int64, error)
	ListAll(ctx context.Context) ([]model.Space, error)
}

type spaceRepo struct{ db *gorm.DB }

func NewSpaceRepo(db *gorm.DB) SpaceRepo {
	return &spaceRepo{db: db}
}

func (r *spaceRepo) Create(ctx context.Context, s *model.Space) error {
	if s.Rooms.Data() == nil {
		s.SetRooms(nil)
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *spaceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Space, error) {
	var s model.Space
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *spaceRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Space{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *spaceRepo) Delete(ctx context.Context, id uuid.UUID, hook CascadeHook) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		space, err := lockSpace(tx, id)
		if err != nil {
			return err
		}

		n, err := deleteBookings(tx, "space_id = ?", id, hook)
		if err != nil {
			return err
		}
		removed = n

		if err := tx.Delete(space).Error; err != nil {
			return fmt.Errorf("delete space: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *spaceRepo) AddRoom(ctx context.Context, spaceID uuid.UUID, room model.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		space, err := lockSpace(tx, spaceID)
		if err != nil {
			return err
		}
		rooms := append(space.RoomList(), room)
		return saveRooms(tx, space, rooms)
	})
}

func (r *spaceRepo) RenameRoom(ctx context.Context, spaceID uuid.UUID, roomID string, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		space, err := lockSpace(tx, spaceID)
		if err != nil {
			return err
		}
		rooms := space.RoomList()
		found := false
		for i := range rooms {
			if rooms[i].ID == roomID {
				rooms[i].Name = name
				found = true
				break
			}
		}
		if !found {
			return ErrRoomNotFound
		}
		return saveRooms(tx, space, rooms)
	})
}

func (r *spaceRepo) DeleteRoom(ctx context.Context, spaceID uuid.UUID, roomID string, hook CascadeHook) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		space, err := lockSpace(tx, spaceID)
		if err != nil {
			return err
		}
		if _, ok := space.FindRoom(roomID); !ok {
			return ErrRoomNotFound
		}

		n, err := deleteBookings(tx, "room_id = ?", roomID, hook)
		if err != nil {
			return err
		}
		removed = n

		kept := make([]model.Room, 0, len(space.RoomList()))
		for _, room := range space.RoomList() {
			if room.ID != roomID {
				kept = append(kept, room)
			}
		}
		return saveRooms(tx, space, kept)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *spaceRepo) ListAll(ctx context.Context) ([]model.Space, error) {
	var out []model.Space
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func lockSpace(tx *gorm.DB, id uuid.UUID) (*model.Space, error) {
	var s model.Space
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func deleteBookings(tx *gorm.DB, cond string, arg any, hook CascadeHook) (int64, error) {
	if hook != nil {
		var doomed []model.Booking
		if err := tx.Where(cond, arg).Find(&doomed).Error; err != nil {
			return 0, fmt.Errorf("load cascaded bookings: %w", err)
		}
		if len(doomed) > 0 {
			if err := hook(doomed); err != nil {
				return 0, fmt.Errorf("cascade hook: %w", err)
			}
		}
	}
	res := tx.Where(cond, arg).Delete(&model.Booking{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete cascaded bookings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func saveRooms(tx *gorm.DB, space *model.Space, rooms []model.Room) error {
	space.SetRooms(rooms)
	if err := tx.Model(space).Update("rooms", space.Rooms).Error; err != nil {
		return fmt.Errorf("save rooms: %w", err)
	}
	return nil
}
