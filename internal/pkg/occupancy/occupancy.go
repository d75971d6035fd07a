// Package occupancy classifies grid cells against a bookings snapshot for a
// given viewer.
package occupancy

import (
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
)

type State string

const (
	// Free means no visible booking holds the slot.
	Free State = "free"
	// Owned means the viewer holds the slot.
	Owned State = "owned"
	// Occupied means someone else holds the slot; nothing else is disclosed.
	Occupied State = "occupied"
	// AdminView discloses the full booking to an administrator.
	AdminView State = "admin_view"
)

// Detail is the requester information only administrators receive.
type Detail struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email,omitempty"`
	Reason    string `json:"reason"`
}

type Cell struct {
	Date      time.Time           `json:"date" swaggertype:"string" example:"2024-06-10"`
	TimeSlot  string              `json:"time_slot"`
	State     State               `json:"state"`
	Status    model.BookingStatus `json:"status,omitempty"`
	BookingID *uuid.UUID          `json:"booking_id,omitempty"`
	Detail    *Detail             `json:"detail,omitempty"`
}

// Reservable reports whether a reservation may be requested for the cell.
func (c Cell) Reservable() bool { return c.State == Free }

// Row is one time band of a room across the displayed week.
type Row struct {
	TimeSlot string `json:"time_slot"`
	Cells    []Cell `json:"cells"`
}

// Resolver answers occupancy questions over one snapshot. It copies what it
// needs at construction, so the snapshot may be replaced afterwards.
type Resolver struct {
	bookings []model.Booking
	users    map[string]model.User
}

func NewResolver(bookings []model.Booking, users []model.User) *Resolver {
	r := &Resolver{
		bookings: visibility.VisibleForGrid(bookings),
		users:    make(map[string]model.User, len(users)),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// Resolve classifies the (room, day, slot) cell for viewer. When the snapshot
// holds more than one visible booking for the cell the first one wins.
func (r *Resolver) Resolve(v auth.Viewer, roomID string, day time.Time, slot string) Cell {
	cell := Cell{Date: calendar.Day(day), TimeSlot: slot, State: Free}

	b, ok := r.find(roomID, day, slot)
	if !ok {
		return cell
	}

	id := b.ID
	switch {
	case v.IsAdmin():
		cell.State = AdminView
		cell.Status = b.Status
		cell.BookingID = &id
		cell.Detail = r.detail(b)
	case v.Owns(b):
		cell.State = Owned
		cell.Status = b.Status
		cell.BookingID = &id
	default:
		cell.State = Occupied
	}
	return cell
}

func (r *Resolver) find(roomID string, day time.Time, slot string) (model.Booking, bool) {
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.TimeSlot == slot && calendar.SameDay(b.Date, day) {
			return b, true
		}
	}
	return model.Booking{}, false
}

func (r *Resolver) detail(b model.Booking) *Detail {
	d := &Detail{UserID: b.UserID, UserName: visibility.UnknownUser, Reason: b.Reason}
	if u, ok := r.users[b.UserID]; ok {
		if u.Name != "" {
			d.UserName = u.Name
		}
		d.UserEmail = u.Email
	}
	return d
}

// Week resolves every catalog band of roomID across the week.
func (r *Resolver) Week(v auth.Viewer, roomID string, week calendar.Week) []Row {
	slots := calendar.TimeSlots()
	rows := make([]Row, 0, len(slots))
	for _, slot := range slots {
		row := Row{TimeSlot: slot, Cells: make([]Cell, 0, len(week.Days))}
		for _, d := range week.Days {
			row.Cells = append(row.Cells, r.Resolve(v, roomID, d, slot))
		}
		rows = append(rows, row)
	}
	return rows
}

// Resolve is a one-shot Resolver.Resolve.
func Resolve(bookings []model.Booking, users []model.User, v auth.Viewer, roomID string, day time.Time, slot string) Cell {
	return NewResolver(bookings, users).Resolve(v, roomID, day, slot)
}
