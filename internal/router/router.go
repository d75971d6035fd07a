package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/memodb-io/roombook/docs"
	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/middleware"
	"github.com/memodb-io/roombook/internal/modules/handler"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/telemetry"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	Sessions        middleware.SessionResolver
	SessionHandler  *handler.SessionHandler
	UserHandler     *handler.UserHandler
	CalendarHandler *handler.CalendarHandler
	SpaceHandler    *handler.SpaceHandler
	BookingHandler  *handler.BookingHandler
	StreamHandler   *handler.StreamHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(middleware.Metrics())

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })
	r.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// provider token in the body, no session yet
	v1.POST("/session", d.SessionHandler.StartSession)
	v1.POST("/users", d.UserHandler.Register)

	authed := v1.Group("")
	authed.Use(middleware.Session(d.Sessions), middleware.TraceViewer())
	{
		authed.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		authed.GET("/session", d.SessionHandler.GetSession)
		authed.DELETE("/session", d.SessionHandler.EndSession)

		users := authed.Group("/users")
		{
			users.GET("", middleware.RequireAdmin(), d.UserHandler.ListUsers)
			users.PATCH("/me", d.UserHandler.UpdateMe)
		}

		authed.GET("/calendar/week", d.CalendarHandler.GetWeek)
		authed.GET("/grid", d.CalendarHandler.GetGrid)
		authed.GET("/occupancy", d.CalendarHandler.GetOccupancy)

		spaces := authed.Group("/spaces")
		{
			spaces.GET("", d.SpaceHandler.ListSpaces)

			admin := spaces.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("", d.SpaceHandler.CreateSpace)
				admin.PUT("/:space_id", d.SpaceHandler.RenameSpace)
				admin.DELETE("/:space_id", d.SpaceHandler.DeleteSpace)

				admin.POST("/:space_id/rooms", d.SpaceHandler.AddRoom)
				admin.PUT("/:space_id/rooms/:room_id", d.SpaceHandler.RenameRoom)
				admin.DELETE("/:space_id/rooms/:room_id", d.SpaceHandler.DeleteRoom)
			}
		}

		bookings := authed.Group("/bookings")
		{
			bookings.POST("", middleware.RateLimit(d.Config.Booking.RequestsPerMinute), d.BookingHandler.RequestBooking)
			bookings.GET("", middleware.RequireAdmin(), d.BookingHandler.ListBookings)
			bookings.GET("/mine", d.BookingHandler.ListMyBookings)

			bookings.GET("/:booking_id/actions", d.BookingHandler.GetActions)
			bookings.PUT("/:booking_id/status", middleware.RequireAdmin(), d.BookingHandler.UpdateStatus)
			bookings.DELETE("/:booking_id", d.BookingHandler.DeleteBooking)
		}

		authed.GET("/stream/:collection", d.StreamHandler.Stream)
	}
	return r
}
