// Package auth holds the identity of the caller and the tokens that carry it.
package auth

import (
	"github.com/memodb-io/roombook/internal/modules/model"
)

// Viewer is the session identity passed explicitly into every permission
// and visibility decision. The zero Viewer is anonymous.
type Viewer struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// ViewerOf builds the session identity of a stored user.
func ViewerOf(u model.User) Viewer {
	return Viewer{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (v Viewer) Authenticated() bool { return v.ID != "" }

func (v Viewer) IsAdmin() bool { return v.Authenticated() && v.Role == model.RoleAdmin }

// Owns reports whether the viewer is the booking requester.
func (v Viewer) Owns(b model.Booking) bool {
	return v.Authenticated() && b.UserID == v.ID
}
