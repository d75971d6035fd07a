// Package workflow holds the reservation dialog state machine and the status
// transition rules for bookings.
package workflow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/roombook/internal/pkg/occupancy"
)

var (
	ErrSlotNotFree = errors.New("slot is not free")
	ErrDialogState = errors.New("dialog is not in the expected state")
)

type State int

const (
	Idle State = iota
	DialogOpen
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DialogOpen:
		return "dialog_open"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// Slot identifies the cell a reservation is requested for.
type Slot struct {
	SpaceID  uuid.UUID
	RoomID   string
	Date     time.Time
	TimeSlot string
}

// Draft is what a successful submit hands to the writer.
type Draft struct {
	Slot   Slot
	Reason string
}

// Dialog is the per-click reservation request flow:
// Idle -> DialogOpen -> Submitting -> Idle.
type Dialog struct {
	state State
	slot  Slot
}

func (d *Dialog) State() State { return d.state }

// Open enters DialogOpen for a free cell.
func (d *Dialog) Open(slot Slot, cell occupancy.Cell) error {
	if d.state != Idle {
		return ErrDialogState
	}
	if !cell.Reservable() {
		return ErrSlotNotFree
	}
	d.state = DialogOpen
	d.slot = slot
	return nil
}

// Submit validates reason. On failure the dialog stays open; on success it
// moves to Submitting and returns the draft to write.
func (d *Dialog) Submit(reason string) (Draft, error) {
	if d.state != DialogOpen {
		return Draft{}, ErrDialogState
	}
	r, err := ValidateReason(reason)
	if err != nil {
		return Draft{}, err
	}
	d.state = Submitting
	return Draft{Slot: d.slot, Reason: r}, nil
}

// Settle closes the dialog after a submit, resetting the form.
func (d *Dialog) Settle() {
	if d.state == Submitting {
		d.reset()
	}
}

// Dismiss abandons an open dialog with no effect.
func (d *Dialog) Dismiss() {
	if d.state == DialogOpen {
		d.reset()
	}
}

func (d *Dialog) reset() {
	d.state = Idle
	d.slot = Slot{}
}
