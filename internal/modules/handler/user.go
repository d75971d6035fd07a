package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
)

type UserHandler struct {
	users    service.UserService
	sessions service.SessionService
	log      *zap.Logger
}

func NewUserHandler(users service.UserService, sessions service.SessionService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, log: log}
}

type RegisterReq struct {
	Token string `json:"token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Name  string `json:"name" example:"Maria Souza"`
	Email string `json:"email" example:"maria.souza@ifce.edu.br"`
}

type UpdateMeReq struct {
	Name string `json:"name" example:"Maria Souza"`
}

// Register godoc
//
//	@Summary		Sign up
//	@Description	Register the profile of an identity provider subject and start a session for it
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.RegisterReq	true	"Register payload"
//	@Success		201		{object}	serializer.Response{data=service.Session}
//	@Failure		400		{object}	serializer.FieldErrorResponse
//	@Failure		409		{object}	serializer.Response
//	@Router			/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	ctx := c.Request.Context()
	claims, err := h.sessions.Identify(ctx, req.Token)
	if err != nil {
		writeErr(c, err)
		return
	}
	if _, err := h.users.Register(ctx, claims.Subject, service.RegisterInput{Name: req.Name, Email: req.Email}); err != nil {
		writeErr(c, err)
		return
	}

	sess, err := h.sessions.Start(ctx, req.Token)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: sess})
}

// UpdateMe godoc
//
//	@Summary		Update profile
//	@Description	Rename the current user
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.UpdateMeReq	true	"UpdateMe payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.User}
//	@Failure		400	{object}	serializer.FieldErrorResponse
//	@Router			/users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	req := UpdateMeReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	ctx := c.Request.Context()
	u, err := h.users.UpdateName(ctx, middleware.ViewerFrom(c), req.Name)
	if err != nil {
		writeErr(c, err)
		return
	}
	// keep the cached identity in step with the profile
	if err := h.sessions.Refresh(ctx, c.GetString(middleware.SessionIDKey), auth.ViewerOf(*u)); err != nil {
		h.log.Sugar().Warnw("refresh session after rename", "user_id", u.ID, "err", err)
	}

	c.JSON(http.StatusOK, serializer.Response{Msg: "Seu nome foi atualizado.", Data: u})
}

// ListUsers godoc
//
//	@Summary		List users
//	@Description	List every registered user (admin only)
//	@Tags			user
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.User}
//	@Router			/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: users})
}
