package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"gorm.io/gorm"
)

type BookingRepo interface {
	// Create inserts b. With exclusive set, the insert only happens when no
	// non-rejected booking holds the same slot; otherwise ErrSlotTaken.
	Create(ctx context.Context, b *model.Booking, exclusive bool) error
	Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// UpdateStatus moves a pending booking to status. It fails with
	// ErrNotPending when the booking exists but was already decided.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]model.Booking, error)
}

type bookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) BookingRepo {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, b *model.Booking, exclusive bool) error {
	if !exclusive {
		return r.db.WithContext(ctx).Create(b).Error
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialise writers of the same slot; released at commit
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", slotKey(b)).Error; err != nil {
			return fmt.Errorf("lock slot: %w", err)
		}

		var n int64
		if err := tx.Model(&model.Booking{}).
			Where("room_id = ? AND date = ? AND time_slot = ? AND status <> ?", b.RoomID, b.Date, b.TimeSlot, model.StatusRejected).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check slot: %w", err)
		}
		if n > 0 {
			return ErrSlotTaken
		}
		return tx.Create(b).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	return err
}

func slotKey(b *model.Booking) string {
	return b.RoomID + "|" + b.Date.Format(calendar.DateLayout) + "|" + b.TimeSlot
}

func (r *bookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Booking{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check booking: %w", err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrNotPending
}

func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
