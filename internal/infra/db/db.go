package db

import (
	"fmt"
	"time"

	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the Postgres pool. Driver errors are translated so that unique
// violations surface as gorm.ErrDuplicatedKey.
func New(cfg *config.Config) (*gorm.DB, error) {
	d, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	}
	if cfg.Database.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return d, nil
}

// Migrate creates the tables. With uniqueSlot set, a partial unique index
// keeps at most one non-rejected booking per (room, date, time slot).
func Migrate(d *gorm.DB, uniqueSlot bool) error {
	if err := d.AutoMigrate(&model.User{}, &model.Space{}, &model.Booking{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := d.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_slot ON bookings (room_id, date, time_slot)`).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}
	if uniqueSlot {
		if err := d.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_active_slot ON bookings (room_id, date, time_slot) WHERE status <> 'rejected'`).Error; err != nil {
			return fmt.Errorf("create active slot index: %w", err)
		}
	} else {
		if err := d.Exec(`DROP INDEX IF EXISTS idx_bookings_active_slot`).Error; err != nil {
			return fmt.Errorf("drop active slot index: %w", err)
		}
	}
	return nil
}
