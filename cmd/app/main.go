package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/bookit/api"
	"github.com/Domenick1991/bookit/config"
	"github.com/Domenick1991/bookit/internal/bootstrap"
	"github.com/Domenick1991/bookit/internal/cache"
	"github.com/Domenick1991/bookit/internal/kafka"
	"github.com/Domenick1991/bookit/internal/logging"
	"github.com/Domenick1991/bookit/internal/service/booking"
	"github.com/Domenick1991/bookit/internal/service/experiences"
	"github.com/Domenick1991/bookit/internal/service/promo"
	"github.com/gin-gonic/gin"
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
		log.Error("app stopped", "err", err)
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

	var listCache experiences.ListCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, experiences cache disabled", "err", err)
		} else {
			listCache = redisCache
		}
	}

	opts := []booking.BookingServiceOption{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(log, cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn("kafka check failed, events may be dropped", "err", err)
		}
		opts = append(opts, booking.WithProducer(producer, cfg.Kafka.BookingTopic, cfg.Kafka.NotificationsTopic))
	}

	promos, err := promo.FromConfig(cfg.Promo, cfg.Pricing)
	if err != nil {
		return fmt.Errorf("build promo table: %w", err)
	}

	experienceService := experiences.NewExperienceService(log, storage.Experiences, listCache)
	bookingService := booking.NewBookingService(log, storage.Experiences, storage.Bookings, opts...)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(
		api.RouterConfig{AllowedOrigins: cfg.HTTP.AllowedOrigins, SwaggerDir: cfg.HTTP.SwaggerDir},
		api.NewExperienceHandler(experienceService),
		api.NewBookingHandler(bookingService),
		api.NewPromoHandler(promos),
	)

	return bootstrap.Run(ctx, log, cfg, router)
}
