package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
)

type SpaceHandler struct {
	svc service.SpaceService
}

func NewSpaceHandler(s service.SpaceService) *SpaceHandler {
	return &SpaceHandler{svc: s}
}

type NameReq struct {
	Name string `form:"name" json:"name" example:"Bloco A - Principal"`
}

type DeletedResp struct {
	RemovedBookings int64 `json:"removed_bookings"`
}

func spaceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("space_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid space_id", err))
		return uuid.Nil, false
	}
	return id, true
}

// ListSpaces godoc
//
//	@Summary		List spaces
//	@Description	List spaces with their rooms. q keeps spaces whose name or any room name contains it, ignoring case
//	@Tags			space
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q	query		string	false	"Search term"	example(lab)
//	@Success		200	{object}	serializer.Response{data=[]model.Space}
//	@Router			/spaces [get]
func (h *SpaceHandler) ListSpaces(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: h.svc.Search(c.Request.Context(), c.Query("q"))})
}

// CreateSpace godoc
//
//	@Summary		Create space
//	@Description	Create an empty space (admin only)
//	@Tags			space
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			payload	body		handler.NameReq	true	"CreateSpace payload"
//	@Success		201		{object}	serializer.Response{data=model.Space}
//	@Failure		400		{object}	serializer.FieldErrorResponse
//	@Router			/spaces [post]
func (h *SpaceHandler) CreateSpace(c *gin.Context) {
	req := NameReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	sp, err := h.svc.Create(c.Request.Context(), middleware.ViewerFrom(c), req.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: sp})
}

// RenameSpace godoc
//
//	@Summary		Rename space
//	@Tags			space
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			space_id	path		string			true	"Space ID"	format(uuid)
//	@Param			payload		body		handler.NameReq	true	"RenameSpace payload"
//	@Success		200			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/spaces/{space_id} [put]
func (h *SpaceHandler) RenameSpace(c *gin.Context) {
	id, ok := spaceID(c)
	if !ok {
		return
	}
	req := NameReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.Rename(c.Request.Context(), middleware.ViewerFrom(c), id, req.Name); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// DeleteSpace godoc
//
//	@Summary		Delete space
//	@Description	Delete a space together with every booking of its rooms
//	@Tags			space
//	@Produce		json
//	@Security		BearerAuth
//	@Param			space_id	path		string	true	"Space ID"	format(uuid)
//	@Success		200			{object}	serializer.Response{data=handler.DeletedResp}
//	@Failure		404			{object}	serializer.Response
//	@Router			/spaces/{space_id} [delete]
func (h *SpaceHandler) DeleteSpace(c *gin.Context) {
	id, ok := spaceID(c)
	if !ok {
		return
	}

	n, err := h.svc.Delete(c.Request.Context(), middleware.ViewerFrom(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "O espaço foi removido.", Data: DeletedResp{RemovedBookings: n}})
}

// AddRoom godoc
//
//	@Summary		Add room
//	@Tags			space
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			space_id	path		string			true	"Space ID"	format(uuid)
//	@Param			payload		body		handler.NameReq	true	"AddRoom payload"
//	@Success		201			{object}	serializer.Response{data=model.Room}
//	@Failure		404			{object}	serializer.Response
//	@Router			/spaces/{space_id}/rooms [post]
func (h *SpaceHandler) AddRoom(c *gin.Context) {
	id, ok := spaceID(c)
	if !ok {
		return
	}
	req := NameReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	room, err := h.svc.AddRoom(c.Request.Context(), middleware.ViewerFrom(c), id, req.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: room})
}

// RenameRoom godoc
//
//	@Summary		Rename room
//	@Tags			space
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			space_id	path		string			true	"Space ID"	format(uuid)
//	@Param			room_id		path		string			true	"Room ID"
//	@Param			payload		body		handler.NameReq	true	"RenameRoom payload"
//	@Success		200			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/spaces/{space_id}/rooms/{room_id} [put]
func (h *SpaceHandler) RenameRoom(c *gin.Context) {
	id, ok := spaceID(c)
	if !ok {
		return
	}
	req := NameReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if err := h.svc.RenameRoom(c.Request.Context(), middleware.ViewerFrom(c), id, c.Param("room_id"), req.Name); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// DeleteRoom godoc
//
//	@Summary		Delete room
//	@Description	Delete a room together with all of its bookings
//	@Tags			space
//	@Produce		json
//	@Security		BearerAuth
//	@Param			space_id	path		string	true	"Space ID"	format(uuid)
//	@Param			room_id		path		string	true	"Room ID"
//	@Success		200			{object}	serializer.Response{data=handler.DeletedResp}
//	@Failure		404			{object}	serializer.Response
//	@Router			/spaces/{space_id}/rooms/{room_id} [delete]
func (h *SpaceHandler) DeleteRoom(c *gin.Context) {
	id, ok := spaceID(c)
	if !ok {
		return
	}

	n, err := h.svc.DeleteRoom(c.Request.Context(), middleware.ViewerFrom(c), id, c.Param("room_id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "A sala foi removida.", Data: DeletedResp{RemovedBookings: n}})
}
