package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookit/config"
	"github.com/Domenick1991/bookit/internal/bootstrap"
	"github.com/Domenick1991/bookit/internal/cache"
	"github.com/Domenick1991/bookit/internal/email"
	"github.com/Domenick1991/bookit/internal/kafka"
	"github.com/Domenick1991/bookit/internal/logging"
	"github.com/Domenick1991/bookit/internal/service/reconcile"
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
		log.Error("worker stopped", "err", err)
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

	producer := kafka.NewProducer(log, cfg.Kafka.Brokers)
	defer producer.Close()

	dedup := cache.NewRedisCache(cfg.Redis)
	defer dedup.Close()

	consumer := kafka.NewNotificationConsumer(log, cfg.Kafka, dedup)
	defer consumer.Close()

	emailSender := email.NewSender(log)

	if !sweepEnabled(cfg) {
		log.Warn("orphan sweep disabled: storage driver memory is not shared with the app")
	} else {
		sweeper := reconcile.NewSweeper(log, storage.Experiences, cfg.Reconcile.GracePeriod(),
			reconcile.WithProducer(producer, cfg.Kafka.BookingTopic),
			reconcile.WithRelease(cfg.Reconcile.ReleaseOrphans),
		)
		go runSweeps(ctx, log, sweeper, cfg.Reconcile.SweepInterval())
	}

	if err := consumer.Run(ctx, emailSender.Send); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	log.Info("shutting down worker")
	return nil
}

// sweepEnabled is false for the memory driver: that store is private to its
// process, so the worker would only ever sweep an empty catalog.
func sweepEnabled(cfg *config.Config) bool {
	return cfg.Storage.Driver != config.StorageDriverMemory
}

func runSweeps(ctx context.Context, log *slog.Logger, sweeper *reconcile.Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report, err := sweeper.Sweep(ctx)
			if err != nil {
				log.Error("orphan sweep", "err", err)
				continue
			}
			if report.Found > 0 {
				log.Warn("orphan sweep finished", "found", report.Found, "released", report.Released)
			}
		case <-ctx.Done():
			return
		}
	}
}
