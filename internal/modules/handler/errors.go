package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

// writeErr maps a service error to its HTTP response.
func writeErr(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, serializer.FieldErr(verr.Field, verr.Message))
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
	case errors.Is(err, service.ErrSpaceNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error(), nil))
	case errors.Is(err, service.ErrSlotTaken),
		errors.Is(err, service.ErrSlotNotFree),
		errors.Is(err, service.ErrInFlight),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, serializer.ConflictErr(conflictMsg(err), err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

func conflictMsg(err error) string {
	switch {
	case errors.Is(err, service.ErrSlotTaken), errors.Is(err, service.ErrSlotNotFree):
		return "slot already taken"
	case errors.Is(err, service.ErrInFlight):
		return "operation in progress"
	case errors.Is(err, service.ErrInvalidTransition):
		return "booking is not pending"
	}
	return "user already registered"
}
