package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"go.uber.org/zap"
)

// Routing keys on the lifecycle exchange.
const (
	EventBookingRequested = "booking.requested"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingDeleted   = "booking.deleted"
	EventSpaceDeleted     = "space.deleted"
	EventRoomDeleted      = "room.deleted"
)

type LifecycleEvent struct {
	Type      string              `json:"type"`
	ActorID   string              `json:"actor_id"`
	BookingID *uuid.UUID          `json:"booking_id,omitempty"`
	SpaceID   *uuid.UUID          `json:"space_id,omitempty"`
	RoomID    string              `json:"room_id,omitempty"`
	UserID    string              `json:"user_id,omitempty"`
	Status    model.BookingStatus `json:"status,omitempty"`
	Date      string              `json:"date,omitempty"`
	TimeSlot  string              `json:"time_slot,omitempty"`
	Removed   int64               `json:"removed,omitempty"`
	At        time.Time           `json:"at"`
}

func bookingEvent(kind, actorID string, b model.Booking) LifecycleEvent {
	id, spaceID := b.ID, b.SpaceID
	return LifecycleEvent{
		Type:      kind,
		ActorID:   actorID,
		BookingID: &id,
		SpaceID:   &spaceID,
		RoomID:    b.RoomID,
		UserID:    b.UserID,
		Status:    b.Status,
		Date:      b.Date.Format(calendar.DateLayout),
		TimeSlot:  b.TimeSlot,
		At:        time.Now().UTC(),
	}
}

// publish never fails the write it reports on.
func publish(ctx context.Context, pub EventPublisher, log *zap.Logger, ev LifecycleEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishJSON(ctx, ev.Type, ev); err != nil {
		log.Sugar().Warnw("publish lifecycle event", "type", ev.Type, "err", err)
	}
}
