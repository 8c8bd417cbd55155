package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookit/config"
	"github.com/Domenick1991/bookit/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	Experiences repository.ExperienceRepository
	Bookings    repository.BookingRepository
	close       func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the configured driver. The postgres driver also runs migrations.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := repository.NewMemoryStore()
		return &Storage{Experiences: store.Experiences(), Bookings: store.Bookings()}, nil
	case config.StorageDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Storage{
			Experiences: repository.NewExperienceRepository(pool),
			Bookings:    repository.NewBookingRepository(pool),
			close:       pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
