package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"github.com/memodb-io/roombook/internal/pkg/occupancy"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
	"github.com/memodb-io/roombook/internal/telemetry"
	"go.uber.org/zap"
)

const (
	SubmitAsync = "async"
	SubmitAwait = "await"
)

// Notice is the user-facing confirmation of a write.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type RequestInput struct {
	SpaceID  uuid.UUID
	RoomID   string
	Date     time.Time
	TimeSlot string
	Reason   string
}

type RequestOutput struct {
	Booking model.Booking `json:"booking"`
	Notice  Notice        `json:"notice"`
	// Accepted is true when the write was handed off without waiting for it.
	Accepted bool `json:"accepted"`
}

type ReservationService interface {
	Request(ctx context.Context, v auth.Viewer, in RequestInput) (*RequestOutput, error)
	// Drain waits for background writes to finish.
	Drain()
}

type ReservationOptions struct {
	SubmitMode        string
	EnforceUniqueSlot bool
}

type reservationService struct {
	r    repo.BookingRepo
	live LiveView
	pub  EventPublisher
	log  *zap.Logger
	opts ReservationOptions

	wg sync.WaitGroup
}

func NewReservationService(r repo.BookingRepo, lv LiveView, pub EventPublisher, log *zap.Logger, opts ReservationOptions) ReservationService {
	if opts.SubmitMode != SubmitAwait {
		opts.SubmitMode = SubmitAsync
	}
	return &reservationService{r: r, live: lv, pub: pub, log: log, opts: opts}
}

func (s *reservationService) Request(ctx context.Context, v auth.Viewer, in RequestInput) (*RequestOutput, error) {
	if !v.Authenticated() {
		return nil, ErrUnauthenticated
	}

	space, ok := findSpace(s.live.Spaces(), in.SpaceID)
	if !ok {
		return nil, ErrSpaceNotFound
	}
	room, ok := space.FindRoom(in.RoomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if !calendar.IsTimeSlot(in.TimeSlot) {
		return nil, &workflow.ValidationError{Field: "time_slot", Message: "Horário inválido."}
	}

	slot := workflow.Slot{SpaceID: space.ID, RoomID: room.ID, Date: calendar.Day(in.Date), TimeSlot: in.TimeSlot}
	cell := occupancy.Resolve(s.live.Bookings(), s.live.Users(), v, room.ID, slot.Date, slot.TimeSlot)

	var dialog workflow.Dialog
	if err := dialog.Open(slot, cell); err != nil {
		return nil, err
	}
	draft, err := dialog.Submit(in.Reason)
	if err != nil {
		dialog.Dismiss()
		return nil, err
	}
	defer dialog.Settle()

	b := model.Booking{
		ID:       uuid.New(),
		SpaceID:  draft.Slot.SpaceID,
		RoomID:   draft.Slot.RoomID,
		UserID:   v.ID,
		Reason:   draft.Reason,
		Date:     draft.Slot.Date,
		TimeSlot: draft.Slot.TimeSlot,
		Status:   model.StatusPending,
	}
	out := &RequestOutput{
		Booking: b,
		Notice: Notice{
			Title:       "Solicitação Enviada!",
			Description: "Sua reserva para a sala foi enviada para aprovação.",
		},
	}

	if s.opts.SubmitMode == SubmitAwait {
		if err := s.write(ctx, v, &out.Booking); err != nil {
			return nil, err
		}
		return out, nil
	}

	// the request may end before the write does
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.write(bg, v, &b)
	}()
	out.Accepted = true
	return out, nil
}

// write stores b; the store stamps CreatedAt.
func (s *reservationService) write(ctx context.Context, v auth.Viewer, b *model.Booking) error {
	if err := s.r.Create(ctx, b, s.opts.EnforceUniqueSlot); err != nil {
		telemetry.BookingTransitions.WithLabelValues("request", "error").Inc()
		s.log.Sugar().Errorw("create booking",
			"booking_id", b.ID, "room_id", b.RoomID, "date", b.Date.Format(calendar.DateLayout),
			"time_slot", b.TimeSlot, "user_id", b.UserID, "err", err)
		return fmt.Errorf("create booking: %w", err)
	}
	telemetry.BookingTransitions.WithLabelValues("request", "ok").Inc()
	s.live.Changed(ctx, live.Bookings)
	publish(ctx, s.pub, s.log, bookingEvent(EventBookingRequested, v.ID, *b))
	return nil
}

func (s *reservationService) Drain() {
	s.wg.Wait()
}

func findSpace(spaces []model.Space, id uuid.UUID) (model.Space, bool) {
	for _, sp := range spaces {
		if sp.ID == id {
			return sp, true
		}
	}
	return model.Space{}, false
}
