package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
)

type BookingHandler struct {
	reservations service.ReservationService
	bookings     service.BookingService
}

func NewBookingHandler(r service.ReservationService, b service.BookingService) *BookingHandler {
	return &BookingHandler{reservations: r, bookings: b}
}

type RequestBookingReq struct {
	SpaceID  string `json:"space_id" binding:"required,uuid" format:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	RoomID   string `json:"room_id" binding:"required" example:"room_01J0Q6Z8Y4W5X9ABCDEF123456"`
	Date     string `json:"date" binding:"required" example:"2024-06-10"`
	TimeSlot string `json:"time_slot" binding:"required" example:"08:00 - 09:00"`
	Reason   string `json:"reason" example:"Aula de Cálculo I"`
}

type UpdateStatusReq struct {
	Status model.BookingStatus `json:"status" binding:"required" enums:"approved,rejected" example:"approved"`
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid booking_id", err))
		return uuid.Nil, false
	}
	return id, true
}

// RequestBooking godoc
//
//	@Summary		Request reservation
//	@Description	Request a free slot of a room. The booking starts pending. In async submit mode the write happens in the background and 202 is returned.
//	@Tags			booking
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			payload	body		handler.RequestBookingReq	true	"RequestBooking payload"
//	@Success		201		{object}	serializer.Response{data=service.RequestOutput}
//	@Success		202		{object}	serializer.Response{data=service.RequestOutput}
//	@Failure		400		{object}	serializer.FieldErrorResponse
//	@Failure		409		{object}	serializer.Response
//	@Router			/bookings [post]
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	req := RequestBookingReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.FieldErr("date", "invalid date"))
		return
	}

	out, err := h.reservations.Request(c.Request.Context(), middleware.ViewerFrom(c), service.RequestInput{
		SpaceID:  uuid.MustParse(req.SpaceID),
		RoomID:   req.RoomID,
		Date:     day,
		TimeSlot: req.TimeSlot,
		Reason:   req.Reason,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	status := http.StatusCreated
	if out.Accepted {
		status = http.StatusAccepted
	}
	c.JSON(status, serializer.Response{Msg: out.Notice.Title, Data: out})
}

// ListMyBookings godoc
//
//	@Summary		My requests
//	@Description	Bookings of the current user, newest first
//	@Tags			booking
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]visibility.BookingView}
//	@Router			/bookings/mine [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	list, err := h.bookings.ListMine(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: list})
}

// ListBookings godoc
//
//	@Summary		All requests
//	@Description	Every booking, pending first and newest first within a status (admin only)
//	@Tags			booking
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]visibility.BookingView}
//	@Failure		403	{object}	serializer.Response
//	@Router			/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	list, err := h.bookings.ListAll(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: list})
}

// GetActions godoc
//
//	@Summary		Booking actions
//	@Description	Actions the current user may take on a booking
//	@Tags			booking
//	@Produce		json
//	@Security		BearerAuth
//	@Param			booking_id	path		string	true	"Booking ID"	format(uuid)
//	@Success		200			{object}	serializer.Response{data=[]workflow.Action}
//	@Failure		404			{object}	serializer.Response
//	@Router			/bookings/{booking_id}/actions [get]
func (h *BookingHandler) GetActions(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	actions, err := h.bookings.Actions(c.Request.Context(), middleware.ViewerFrom(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: actions})
}

// UpdateStatus godoc
//
//	@Summary		Approve or reject
//	@Description	Move a pending booking to approved or rejected (admin only)
//	@Tags			booking
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			booking_id	path		string					true	"Booking ID"	format(uuid)
//	@Param			payload		body		handler.UpdateStatusReq	true	"UpdateStatus payload"
//	@Success		200			{object}	serializer.Response{data=service.Notice}
//	@Failure		403			{object}	serializer.Response
//	@Failure		409			{object}	serializer.Response
//	@Router			/bookings/{booking_id}/status [put]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	req := UpdateStatusReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	notice, err := h.bookings.ChangeStatus(c.Request.Context(), middleware.ViewerFrom(c), id, req.Status)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: notice.Title, Data: notice})
}

// DeleteBooking godoc
//
//	@Summary		Delete booking
//	@Description	Delete a booking. Owners may delete their own, admins any.
//	@Tags			booking
//	@Produce		json
//	@Security		BearerAuth
//	@Param			booking_id	path		string	true	"Booking ID"	format(uuid)
//	@Success		200			{object}	serializer.Response{data=service.Notice}
//	@Failure		403			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/bookings/{booking_id} [delete]
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	notice, err := h.bookings.Delete(c.Request.Context(), middleware.ViewerFrom(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: notice.Title, Data: notice})
}
