package workflow

import (
	"slices"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/modules/model"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

// Target is the status an action moves a booking to. Delete has none.
func (a Action) Target() (model.BookingStatus, bool) {
	switch a {
	case ActionApprove:
		return model.StatusApproved, true
	case ActionReject:
		return model.StatusRejected, true
	}
	return "", false
}

// ActionFor maps a requested status to the action that produces it.
func ActionFor(status model.BookingStatus) (Action, bool) {
	switch status {
	case model.StatusApproved:
		return ActionApprove, true
	case model.StatusRejected:
		return ActionReject, true
	}
	return "", false
}

// Permitted lists the actions v may take on b. Admins may approve or reject a
// pending booking and delete any booking; owners may delete their own.
func Permitted(v auth.Viewer, b model.Booking) []Action {
	out := make([]Action, 0, 3)
	if v.IsAdmin() {
		if b.Status == model.StatusPending {
			out = append(out, ActionApprove, ActionReject)
		}
		return append(out, ActionDelete)
	}
	if v.Owns(b) {
		out = append(out, ActionDelete)
	}
	return out
}

// Allows reports whether a is among the permitted actions.
func Allows(v auth.Viewer, b model.Booking, a Action) bool {
	return slices.Contains(Permitted(v, b), a)
}
