package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/bookit/config"
	"github.com/Domenick1991/bookit/internal/bootstrap"
	"github.com/Domenick1991/bookit/internal/cache"
	"github.com/Domenick1991/bookit/internal/logging"
	"github.com/Domenick1991/bookit/internal/repository"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logging.New("error").Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer storage.Close()

	if err := seed(ctx, storage.Experiences); err != nil {
		return err
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.InvalidateExperiences(ctx); err != nil {
			log.Warn("invalidate experiences cache", "err", err)
		}
	}
	log.Info("database seeded")
	return nil
}

// seed clears the catalog and the ledger before loading the fixtures.
func seed(ctx context.Context, experiences repository.ExperienceRepository) error {
	if err := experiences.Reset(ctx); err != nil {
		return err
	}
	for _, e := range fixtures() {
		if err := experiences.Create(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}
