package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Booking struct {
	ID       uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SpaceID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"space_id"`
	RoomID   string        `gorm:"type:varchar(64);not null;index" json:"room_id"`
	UserID   string        `gorm:"type:varchar(128);not null;index" json:"user_id"`
	Reason   string        `gorm:"type:varchar(100);not null" json:"reason"`
	Date     time.Time     `gorm:"type:date;not null" json:"date" swaggertype:"string" example:"2024-06-10"`
	TimeSlot string        `gorm:"type:varchar(32);not null" json:"time_slot" example:"08:00 - 09:00"`
	Status   BookingStatus `gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','rejected')" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Visible reports whether the booking still occupies its slot.
func (b Booking) Visible() bool { return b.Status != StatusRejected }
