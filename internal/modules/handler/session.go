package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(s service.SessionService) *SessionHandler {
	return &SessionHandler{svc: s}
}

type StartSessionReq struct {
	Token string `form:"token" json:"token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// StartSession godoc
//
//	@Summary		Start session
//	@Description	Exchange an identity provider token for a session token. The identity must have a registered profile.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.StartSessionReq	true	"StartSession payload"
//	@Success		201		{object}	serializer.Response{data=service.Session}
//	@Failure		401		{object}	serializer.Response
//	@Router			/session [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	req := StartSessionReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), req.Token)
	if err != nil {
		// a provider identity without a profile is signed out
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, serializer.AuthErr("user not registered"))
			return
		}
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: sess})
}

// GetSession godoc
//
//	@Summary		Current identity
//	@Description	Get the identity of the current session
//	@Tags			session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=auth.Viewer}
//	@Router			/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, serializer.Response{Data: middleware.ViewerFrom(c)})
}

// EndSession godoc
//
//	@Summary		Logout
//	@Description	End the current session
//	@Tags			session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/session [delete]
func (h *SessionHandler) EndSession(c *gin.Context) {
	if err := h.svc.End(c.Request.Context(), c.GetString(middleware.SessionIDKey)); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
