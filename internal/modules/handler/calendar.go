package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/calendar"
)

type CalendarHandler struct {
	svc service.GridService
}

func NewCalendarHandler(s service.GridService) *CalendarHandler {
	return &CalendarHandler{svc: s}
}

func weekOffset(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr(key+" must be an integer", err))
		return 0, false
	}
	return n, true
}

// GetWeek godoc
//
//	@Summary		Week
//	@Description	Monday to Friday of the week offset weeks away from the current one
//	@Tags			calendar
//	@Produce		json
//	@Security		BearerAuth
//	@Param			offset	query		int	false	"Week offset"	example(0)
//	@Success		200		{object}	serializer.Response{data=calendar.Week}
//	@Router			/calendar/week [get]
func (h *CalendarHandler) GetWeek(c *gin.Context) {
	offset, ok := weekOffset(c, "offset")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: h.svc.Week(offset)})
}

// GetGrid godoc
//
//	@Summary		Booking grid
//	@Description	Occupancy of every room of the spaces matching q for one week, resolved for the current user
//	@Tags			calendar
//	@Produce		json
//	@Security		BearerAuth
//	@Param			week	query		int		false	"Week offset"	example(0)
//	@Param			q		query		string	false	"Space or room search term"
//	@Success		200		{object}	serializer.Response{data=service.Grid}
//	@Router			/grid [get]
func (h *CalendarHandler) GetGrid(c *gin.Context) {
	offset, ok := weekOffset(c, "week")
	if !ok {
		return
	}
	g := h.svc.Grid(c.Request.Context(), middleware.ViewerFrom(c), offset, c.Query("q"))
	c.JSON(http.StatusOK, serializer.Response{Data: g})
}

type OccupancyReq struct {
	RoomID   string `form:"room_id" binding:"required" example:"room_01J0Q6Z8Y4W5X9ABCDEF123456"`
	Date     string `form:"date" binding:"required" example:"2024-06-10"`
	TimeSlot string `form:"time_slot" binding:"required" example:"08:00 - 09:00"`
}

// GetOccupancy godoc
//
//	@Summary		Slot occupancy
//	@Description	Classify one room/day/time slot for the current user
//	@Tags			calendar
//	@Produce		json
//	@Security		BearerAuth
//	@Param			room_id		query		string	true	"Room ID"
//	@Param			date		query		string	true	"Day (YYYY-MM-DD)"
//	@Param			time_slot	query		string	true	"Time slot label"
//	@Success		200			{object}	serializer.Response{data=occupancy.Cell}
//	@Failure		404			{object}	serializer.Response
//	@Router			/occupancy [get]
func (h *CalendarHandler) GetOccupancy(c *gin.Context) {
	req := OccupancyReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.FieldErr("date", "invalid date"))
		return
	}

	cell, err := h.svc.Cell(c.Request.Context(), middleware.ViewerFrom(c), req.RoomID, day, req.TimeSlot)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: cell})
}
