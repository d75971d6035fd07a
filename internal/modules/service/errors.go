package service

import (
	"errors"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrSpaceNotFound     = errors.New("space not found")
	ErrRoomNotFound      = repo.ErrRoomNotFound
	ErrBookingNotFound   = errors.New("booking not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already registered")
	ErrEmailDomain       = errors.New("email domain not allowed")
	ErrSlotTaken         = repo.ErrSlotTaken
	ErrSlotNotFree       = workflow.ErrSlotNotFree
	ErrInFlight          = errors.New("a write on this booking is still in flight")
	ErrInvalidTransition = repo.ErrNotPending
	ErrSessionNotFound   = auth.ErrSessionNotFound
)
