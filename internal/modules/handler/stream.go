package handler

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
)

type StreamHandler struct {
	hub *live.Hub

	closing chan struct{}
	once    sync.Once
}

func NewStreamHandler(hub *live.Hub) *StreamHandler {
	return &StreamHandler{hub: hub, closing: make(chan struct{})}
}

// Close ends every open stream. http.Server.Shutdown does not cancel request
// contexts, so it is registered with RegisterOnShutdown.
func (h *StreamHandler) Close() {
	h.once.Do(func() { close(h.closing) })
}

// streamContext is the request context, also cancelled by Close.
func (h *StreamHandler) streamContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	go func() {
		select {
		case <-h.closing:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

type SnapshotEvent struct {
	Collection live.Collection `json:"collection"`
	Version    uint64          `json:"version"`
	Items      any             `json:"items"`
}

// Stream godoc
//
//	@Summary		Live snapshots
//	@Description	Server-sent events. Every event named snapshot carries the whole collection as the current user may see it. Users are streamed to admins only.
//	@Tags			stream
//	@Produce		text/event-stream
//	@Security		BearerAuth
//	@Param			collection	path		string	true	"Collection"	Enums(bookings, spaces, users)
//	@Success		200			{object}	handler.SnapshotEvent
//	@Failure		403			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/stream/{collection} [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	v := middleware.ViewerFrom(c)
	ctx, cancel := h.streamContext(c)
	defer cancel()

	switch live.Collection(c.Param("collection")) {
	case live.Bookings:
		serveFeed(ctx, c, h.hub.BookingFeed(), func(items []model.Booking) any {
			return visibility.ForViewer(items, v)
		})
	case live.Spaces:
		serveFeed(ctx, c, h.hub.SpaceFeed(), asIs[model.Space])
	case live.Users:
		if !v.IsAdmin() {
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
			return
		}
		serveFeed(ctx, c, h.hub.UserFeed(), asIs[model.User])
	default:
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("unknown collection", nil))
	}
}

func asIs[T any](items []T) any {
	if items == nil {
		return []T{}
	}
	return items
}

// serveFeed writes the current snapshot and every replacement until the
// client goes away.
func serveFeed[T any](ctx context.Context, c *gin.Context, feed *live.Feed[T], project func([]T) any) {
	snaps := feed.Subscribe(ctx)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		snap, ok := <-snaps
		if !ok {
			return false
		}
		c.SSEvent("snapshot", SnapshotEvent{
			Collection: snap.Collection,
			Version:    snap.Version,
			Items:      project(snap.Items),
		})
		return true
	})
}

