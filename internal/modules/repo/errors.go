package repo

import (
	"errors"

	"github.com/memodb-io/roombook/internal/modules/model"
)

var (
	// ErrSlotTaken means a non-rejected booking already holds the slot.
	ErrSlotTaken    = errors.New("slot already taken")
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotPending means the booking was already approved or rejected.
	ErrNotPending   = errors.New("booking is not pending")
)

// CascadeHook sees the bookings a cascade is about to remove, inside the
// cascade's transaction. Returning an error aborts the cascade.
type CascadeHook func(removed []model.Booking) error
