// Command seed loads the demo spaces and rooms into an empty database.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memodb-io/roombook/internal/config"
	"github.com/memodb-io/roombook/internal/infra/db"
	"github.com/memodb-io/roombook/internal/infra/logger"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/utils"
)

var demo = []struct {
	space string
	rooms []string
}{
	{space: "Bloco A - Principal", rooms: []string{"Sala A101", "Sala A102 (Laboratório)", "Auditório"}},
	{space: "Bloco B - Anexo", rooms: []string{"Sala B201", "Sala B202"}},
}

func main() {
	force := flag.Bool("force", false, "seed even when spaces already exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	d, err := db.New(cfg)
	if err != nil {
		log.Sugar().Fatalw("open database", "err", err)
	}
	if err := db.Migrate(d, cfg.Booking.EnforceUniqueSlot); err != nil {
		log.Sugar().Fatalw("migrate", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, repo.NewSpaceRepo(d), log, *force); err != nil {
		log.Sugar().Fatalw("seed", "err", err)
	}
}

func seed(ctx context.Context, spaces repo.SpaceRepo, log *zap.Logger, force bool) error {
	existing, err := spaces.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !force {
		log.Sugar().Infow("spaces already present, skipping", "count", len(existing))
		return nil
	}

	for _, s := range demo {
		rooms := make([]model.Room, 0, len(s.rooms))
		for _, name := range s.rooms {
			rooms = append(rooms, model.Room{ID: utils.NewRoomID(), Name: name})
		}
		sp := &model.Space{ID: uuid.New(), Name: s.space}
		sp.SetRooms(rooms)
		if err := spaces.Create(ctx, sp); err != nil {
			return err
		}
		log.Sugar().Infow("space seeded", "space_id", sp.ID, "name", sp.Name, "rooms", len(rooms))
	}
	return nil
}
