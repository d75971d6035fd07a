// Package visibility decides which bookings and spaces each viewer sees and
// in what order. Every function returns a fresh slice and leaves its input
// untouched.
package visibility

import (
	"slices"
	"strings"
	"time"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/modules/model"
)

const (
	// NotAvailable stands in for a space or room that no longer exists.
	NotAvailable = "N/A"
	// UnknownUser stands in for a requester without a profile.
	UnknownUser = "Usuário desconhecido"
)

// BookingView is a booking joined with the names that describe it.
type BookingView struct {
	model.Booking
	SpaceName string `json:"space_name"`
	RoomName  string `json:"room_name"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email,omitempty"`
}

// VisibleForGrid drops rejected bookings so their slots read as free.
func VisibleForGrid(bookings []model.Booking) []model.Booking {
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Visible() {
			out = append(out, b)
		}
	}
	return out
}

// OwnRequests returns every booking of userID, whatever its status, newest
// first. Bookings without a creation time sort last.
func OwnRequests(bookings []model.Booking, userID string) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		return newestFirst(a.CreatedAt, b.CreatedAt)
	})
	return out
}

// AdminRequests orders the whole collection for review: pending first, then
// newest first within each bucket.
func AdminRequests(bookings []model.Booking) []model.Booking {
	out := slices.Clone(bookings)
	if out == nil {
		out = []model.Booking{}
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		ap, bp := a.Status == model.StatusPending, b.Status == model.StatusPending
		switch {
		case ap && !bp:
			return -1
		case !ap && bp:
			return 1
		}
		return newestFirst(a.CreatedAt, b.CreatedAt)
	})
	return out
}

func newestFirst(a, b time.Time) int {
	return b.Compare(a)
}

// SearchSpaces keeps spaces whose name, or the name of any of their rooms,
// contains term case-insensitively. A kept space keeps all its rooms. A blank
// term keeps everything.
func SearchSpaces(spaces []model.Space, term string) []model.Space {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		out := slices.Clone(spaces)
		if out == nil {
			out = []model.Space{}
		}
		return out
	}

	out := make([]model.Space, 0)
	for _, s := range spaces {
		if matchesSpace(s, needle) {
			out = append(out, s)
		}
	}
	return out
}

func matchesSpace(s model.Space, needle string) bool {
	if strings.Contains(strings.ToLower(s.Name), needle) {
		return true
	}
	for _, r := range s.Rooms.Data() {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			return true
		}
	}
	return false
}

// Describe joins bookings with space, room and user names. Dangling
// references resolve to placeholders.
func Describe(bookings []model.Booking, spaces []model.Space, users []model.User) []BookingView {
	spaceByID := make(map[string]model.Space, len(spaces))
	for _, s := range spaces {
		spaceByID[s.ID.String()] = s
	}
	userByID := make(map[string]model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := BookingView{Booking: b, SpaceName: NotAvailable, RoomName: NotAvailable, UserName: UnknownUser}
		if s, ok := spaceByID[b.SpaceID.String()]; ok {
			v.SpaceName = nonEmpty(s.Name, NotAvailable)
			if r, ok := s.FindRoom(b.RoomID); ok {
				v.RoomName = nonEmpty(r.Name, NotAvailable)
			}
		}
		if u, ok := userByID[b.UserID]; ok {
			v.UserName = nonEmpty(u.Name, UnknownUser)
			v.UserEmail = u.Email
		}
		out = append(out, v)
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ForViewer projects the booking collection for a live subscriber. Admins see
// everything; other viewers see their own bookings in full and only the slot
// of everyone else's visible bookings.
func ForViewer(bookings []model.Booking, v auth.Viewer) []model.Booking {
	if v.IsAdmin() {
		out := slices.Clone(bookings)
		if out == nil {
			out = []model.Booking{}
		}
		return out
	}
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if v.Owns(b) {
			out = append(out, b)
			continue
		}
		if !b.Visible() {
			continue
		}
		out = append(out, model.Booking{
			ID:       b.ID,
			SpaceID:  b.SpaceID,
			RoomID:   b.RoomID,
			Date:     b.Date,
			TimeSlot: b.TimeSlot,
		})
	}
	return out
}
