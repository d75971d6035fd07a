package main

//	@title			roombook API
//	@version		1.0
//	@description	Room reservation API: spaces and rooms, a weekly slot grid, reservation requests and their approval.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer session token issued by POST /session
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session Bearer token (e.g., "Bearer eyJhbGciOi...")

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/memodb-io/roombook/internal/bootstrap"
	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/infra/cache"
	dbpkg "github.com/memodb-io/roombook/internal/infra/db"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/handler"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/router"
	"github.com/memodb-io/roombook/internal/telemetry"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	db := do.MustInvoke[*gorm.DB](inj)
	rdb := do.MustInvoke[*redis.Client](inj)

	telemetry.InitMetrics()

	// Setup OpenTelemetry tracing (using configuration system)
	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		// Register GORM OpenTelemetry plugin after tracer provider is set
		if err := dbpkg.RegisterOpenTelemetryPlugin(db); err != nil {
			log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin, continuing without database tracing", "err", err)
		} else {
			log.Sugar().Info("GORM OpenTelemetry plugin registered")
		}

		// Register Redis OpenTelemetry plugin after tracer provider is set
		if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
			log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin, continuing without Redis tracing", "err", err)
		} else {
			log.Sugar().Info("Redis OpenTelemetry plugin registered")
		}
	}

	// live snapshots: initial load, then follow invalidations
	hub := do.MustInvoke[*live.Hub](inj)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := hub.LoadAll(loadCtx); err != nil {
		log.Sugar().Fatalw("failed to load live snapshots", "err", err)
	}
	cancelLoad()

	liveCtx, stopLive := context.WithCancel(context.Background())
	go hub.Run(liveCtx)

	// init gin
	gin.SetMode(cfg.App.Env)

	streamHandler := do.MustInvoke[*handler.StreamHandler](inj)
	engine := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		Log:             log,
		Sessions:        do.MustInvoke[service.SessionService](inj),
		SessionHandler:  do.MustInvoke[*handler.SessionHandler](inj),
		UserHandler:     do.MustInvoke[*handler.UserHandler](inj),
		CalendarHandler: do.MustInvoke[*handler.CalendarHandler](inj),
		SpaceHandler:    do.MustInvoke[*handler.SpaceHandler](inj),
		BookingHandler:  do.MustInvoke[*handler.BookingHandler](inj),
		StreamHandler:   streamHandler,
	})

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}
	srv.RegisterOnShutdown(streamHandler.Close)

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		log.Sugar().Infow("booking submit mode", "mode", cfg.Booking.SubmitMode, "unique_slot", cfg.Booking.EnforceUniqueSlot)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	stopLive()

	// background reservation writes are not cancelled, wait for them
	do.MustInvoke[service.ReservationService](inj).Drain()

	if c, ok := do.MustInvoke[service.EventPublisher](inj).(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Sugar().Warnw("close event publisher", "err", err)
		}
	}
	if err := rdb.Close(); err != nil {
		log.Sugar().Warnw("close redis", "err", err)
	}
	log.Sugar().Info("server exited")
}
