package bootstrap

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/infra/blob"
	"github.com/memodb-io/roombook/internal/infra/cache"
	"github.com/memodb-io/roombook/internal/infra/db"
	"github.com/memodb-io/roombook/internal/infra/logger"
	"github.com/memodb-io/roombook/internal/infra/queue"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/handler"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d, cfg.Booking.EnforceUniqueSlot); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg), nil
	})

	// RabbitMQ, optional: without a URL lifecycle events are not published
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if cfg.RabbitMQ.URL == "" {
			log.Sugar().Infow("rabbitmq url not set, lifecycle events disabled")
			return nil, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		pub, err := queue.NewPublisher(conn, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return pub, nil
	})

	// S3, optional: without a bucket cascades are not archived
	do.Provide(inj, func(i *do.Injector) (service.Archiver, error) {
		cfg := do.MustInvoke[*config.Config](i)
		s3, err := blob.NewS3(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		if !s3.Enabled() {
			return nil, nil
		}
		return s3, nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.BookingRepo, error) {
		return repo.NewBookingRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SpaceRepo, error) {
		return repo.NewSpaceRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.UserRepo, error) {
		return repo.NewUserRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Live snapshots, invalidated across instances over Redis pub/sub
	do.Provide(inj, func(i *do.Injector) (*live.Hub, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return live.NewHub(
			do.MustInvoke[repo.BookingRepo](i).ListAll,
			do.MustInvoke[repo.SpaceRepo](i).ListAll,
			do.MustInvoke[repo.UserRepo](i).ListAll,
			cache.NewNotifier(do.MustInvoke[*redis.Client](i), cfg.Live.Channel, log),
			log,
		), nil
	})

	// Auth
	do.Provide(inj, func(i *do.Injector) (*auth.Tokens, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return auth.NewTokens(auth.TokensConfig{
			ProviderSecret: cfg.Auth.ProviderSecret,
			ProviderIssuer: cfg.Auth.ProviderIssuer,
			SessionSecret:  cfg.Auth.JwtSecret,
			Issuer:         cfg.Auth.Issuer,
			SessionTTL:     time.Duration(cfg.Auth.SessionTTLSec) * time.Second,
		}), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.UserService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewUserService(
			do.MustInvoke[repo.UserRepo](i),
			do.MustInvoke[*live.Hub](i),
			cfg.Auth.AllowedEmailDomain,
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SessionService, error) {
		return service.NewSessionService(
			do.MustInvoke[*auth.Tokens](i),
			cache.NewSessionStore(do.MustInvoke[*redis.Client](i)),
			do.MustInvoke[service.UserService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SpaceService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewSpaceService(
			do.MustInvoke[repo.SpaceRepo](i),
			do.MustInvoke[*live.Hub](i),
			do.MustInvoke[service.Archiver](i),
			cfg.S3.ArchivePrefix,
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ReservationService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewReservationService(
			do.MustInvoke[repo.BookingRepo](i),
			do.MustInvoke[*live.Hub](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
			service.ReservationOptions{
				SubmitMode:        cfg.Booking.SubmitMode,
				EnforceUniqueSlot: cfg.Booking.EnforceUniqueSlot,
			},
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.BookingService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewBookingService(
			do.MustInvoke[repo.BookingRepo](i),
			do.MustInvoke[*live.Hub](i),
			cache.NewInFlight(do.MustInvoke[*redis.Client](i), time.Duration(cfg.Booking.InFlightTTLSec)*time.Second),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GridService, error) {
		return service.NewGridService(do.MustInvoke[*live.Hub](i), nil), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.SessionHandler, error) {
		return handler.NewSessionHandler(do.MustInvoke[service.SessionService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.UserHandler, error) {
		return handler.NewUserHandler(
			do.MustInvoke[service.UserService](i),
			do.MustInvoke[service.SessionService](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.CalendarHandler, error) {
		return handler.NewCalendarHandler(do.MustInvoke[service.GridService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SpaceHandler, error) {
		return handler.NewSpaceHandler(do.MustInvoke[service.SpaceService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.BookingHandler, error) {
		return handler.NewBookingHandler(
			do.MustInvoke[service.ReservationService](i),
			do.MustInvoke[service.BookingService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.StreamHandler, error) {
		return handler.NewStreamHandler(do.MustInvoke[*live.Hub](i)), nil
	})

	return inj
}
