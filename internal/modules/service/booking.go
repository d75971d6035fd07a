package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
	"github.com/memodb-io/roombook/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BookingService interface {
	ChangeStatus(ctx context.Context, v auth.Viewer, id uuid.UUID, status model.BookingStatus) (*Notice, error)
	Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (*Notice, error)
	Actions(ctx context.Context, v auth.Viewer, id uuid.UUID) ([]workflow.Action, error)
	ListMine(ctx context.Context, v auth.Viewer) ([]visibility.BookingView, error)
	ListAll(ctx context.Context, v auth.Viewer) ([]visibility.BookingView, error)
}

type bookingService struct {
	r        repo.BookingRepo
	live     LiveView
	inflight InFlightGuard
	pub      EventPublisher
	log      *zap.Logger
}

func NewBookingService(r repo.BookingRepo, lv LiveView, inflight InFlightGuard, pub EventPublisher, log *zap.Logger) BookingService {
	if inflight == nil {
		inflight = NewLocalInFlight()
	}
	return &bookingService{r: r, live: lv, inflight: inflight, pub: pub, log: log}
}

func (s *bookingService) get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, v auth.Viewer, id uuid.UUID, status model.BookingStatus) (*Notice, error) {
	action, ok := workflow.ActionFor(status)
	if !ok {
		return nil, &workflow.ValidationError{Field: "status", Message: "Status inválido."}
	}
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}

	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.Allows(v, *b, action) {
		return nil, ErrInvalidTransition
	}

	err = s.guarded(ctx, id, func() error {
		return s.r.UpdateStatus(ctx, id, status)
	})
	if err != nil {
		telemetry.BookingTransitions.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}
	telemetry.BookingTransitions.WithLabelValues(string(action), "ok").Inc()

	b.Status = status
	s.live.Changed(ctx, live.Bookings)
	kind := EventBookingApproved
	word := "aprovada"
	if status == model.StatusRejected {
		kind, word = EventBookingRejected, "rejeitada"
	}
	publish(ctx, s.pub, s.log, bookingEvent(kind, v.ID, *b))

	return &Notice{Title: "Status Atualizado!", Description: fmt.Sprintf("A reserva foi %s.", word)}, nil
}

func (s *bookingService) Delete(ctx context.Context, v auth.Viewer, id uuid.UUID) (*Notice, error) {
	if !v.Authenticated() {
		return nil, ErrUnauthenticated
	}
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.Allows(v, *b, workflow.ActionDelete) {
		return nil, ErrForbidden
	}

	err = s.guarded(ctx, id, func() error {
		return s.r.Delete(ctx, id)
	})
	if err != nil {
		telemetry.BookingTransitions.WithLabelValues(string(workflow.ActionDelete), "error").Inc()
		return nil, err
	}
	telemetry.BookingTransitions.WithLabelValues(string(workflow.ActionDelete), "ok").Inc()

	s.live.Changed(ctx, live.Bookings)
	publish(ctx, s.pub, s.log, bookingEvent(EventBookingDeleted, v.ID, *b))

	return &Notice{Title: "Reserva Deletada", Description: "A reserva foi removida com sucesso."}, nil
}

// guarded runs write while holding the booking's in-flight marker.
func (s *bookingService) guarded(ctx context.Context, id uuid.UUID, write func() error) error {
	key := "booking:" + id.String()
	ok, err := s.inflight.Acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("acquire in-flight marker: %w", err)
	}
	if !ok {
		return ErrInFlight
	}
	defer func() {
		if err := s.inflight.Release(context.WithoutCancel(ctx), key); err != nil {
			s.log.Sugar().Warnw("release in-flight marker", "key", key, "err", err)
		}
	}()

	err = write()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookingNotFound
	}
	if errors.Is(err, ErrInvalidTransition) {
		return err
	}
	if err != nil {
		return fmt.Errorf("write booking: %w", err)
	}
	return nil
}

func (s *bookingService) Actions(ctx context.Context, v auth.Viewer, id uuid.UUID) ([]workflow.Action, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return workflow.Permitted(v, *b), nil
}

func (s *bookingService) ListMine(_ context.Context, v auth.Viewer) ([]visibility.BookingView, error) {
	if !v.Authenticated() {
		return nil, ErrUnauthenticated
	}
	own := visibility.OwnRequests(s.live.Bookings(), v.ID)
	return visibility.Describe(own, s.live.Spaces(), s.live.Users()), nil
}

func (s *bookingService) ListAll(_ context.Context, v auth.Viewer) ([]visibility.BookingView, error) {
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}
	all := visibility.AdminRequests(s.live.Bookings())
	return visibility.Describe(all, s.live.Spaces(), s.live.Users()), nil
}
