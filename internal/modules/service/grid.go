package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"github.com/memodb-io/roombook/internal/pkg/occupancy"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

type GridRoom struct {
	SpaceID   uuid.UUID       `json:"space_id"`
	SpaceName string          `json:"space_name"`
	RoomID    string          `json:"room_id"`
	RoomName  string          `json:"room_name"`
	Rows      []occupancy.Row `json:"rows"`
}

type Grid struct {
	Week  calendar.Week `json:"week"`
	Rooms []GridRoom    `json:"rooms"`
}

type GridService interface {
	Week(offset int) calendar.Week
	// Grid resolves every room of the spaces matching term for the week at
	// offset.
	Grid(ctx context.Context, v auth.Viewer, offset int, term string) Grid
	Cell(ctx context.Context, v auth.Viewer, roomID string, day time.Time, slot string) (occupancy.Cell, error)
}

type gridService struct {
	live LiveView
	now  func() time.Time
}

// NewGridService builds the grid service. A nil now uses the wall clock.
func NewGridService(lv LiveView, now func() time.Time) GridService {
	if now == nil {
		now = time.Now
	}
	return &gridService{live: lv, now: now}
}

func (s *gridService) Week(offset int) calendar.Week {
	return calendar.WeekOf(s.now(), offset)
}

func (s *gridService) Grid(_ context.Context, v auth.Viewer, offset int, term string) Grid {
	week := s.Week(offset)
	resolver := occupancy.NewResolver(s.live.Bookings(), s.live.Users())

	g := Grid{Week: week, Rooms: []GridRoom{}}
	for _, sp := range visibility.SearchSpaces(s.live.Spaces(), term) {
		for _, room := range sp.RoomList() {
			g.Rooms = append(g.Rooms, GridRoom{
				SpaceID:   sp.ID,
				SpaceName: sp.Name,
				RoomID:    room.ID,
				RoomName:  room.Name,
				Rows:      resolver.Week(v, room.ID, week),
			})
		}
	}
	return g
}

func (s *gridService) Cell(_ context.Context, v auth.Viewer, roomID string, day time.Time, slot string) (occupancy.Cell, error) {
	if !calendar.IsTimeSlot(slot) {
		return occupancy.Cell{}, &workflow.ValidationError{Field: "time_slot", Message: "Horário inválido."}
	}
	known := false
	for _, sp := range s.live.Spaces() {
		if _, ok := sp.FindRoom(roomID); ok {
			known = true
			break
		}
	}
	if !known {
		return occupancy.Cell{}, ErrRoomNotFound
	}
	return occupancy.Resolve(s.live.Bookings(), s.live.Users(), v, roomID, day, slot), nil
}
