package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Environment overrides are read as BOOKIT_<SECTION>_<FIELD>, e.g. BOOKIT_DATABASE_HOST.
const envPrefix = "BOOKIT"

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Promo     PromoConfig     `yaml:"promo"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir" split_words:"true"`
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// ExperiencesCacheTTL of zero disables the list cache.
	ExperiencesCacheTTL int `yaml:"experiences_cache_ttl_seconds" split_words:"true"`
	DedupTTL            int `yaml:"dedup_ttl_minutes" split_words:"true"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic" split_words:"true"`
	NotificationsTopic string   `yaml:"notifications_topic" split_words:"true"`
	GroupID            string   `yaml:"group_id" split_words:"true"`
}

type PricingConfig struct {
	Surcharge float64 `yaml:"surcharge"`
}

type PromoCodeConfig struct {
	// Type is either "percentage" or "flat".
	Type  string  `yaml:"type"`
	Value float64 `yaml:"value"`
}

type PromoConfig struct {
	Codes map[string]PromoCodeConfig `yaml:"codes" ignored:"true"`
}

type ReconcileConfig struct {
	SweepIntervalMinutes int  `yaml:"sweep_interval_minutes" split_words:"true"`
	GracePeriodMinutes   int  `yaml:"grace_period_minutes" split_words:"true"`
	ReleaseOrphans       bool `yaml:"release_orphans" split_words:"true"`
}

func (r ReconcileConfig) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalMinutes) * time.Minute
}

func (r ReconcileConfig) GracePeriod() time.Duration {
	return time.Duration(r.GracePeriodMinutes) * time.Minute
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the values used for anything the YAML file and environment leave unset.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Address: ":3001"},
		GRPC:     GRPCConfig{Address: ":50051"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "bookit", Name: "bookit", SSLMode: "disable"},
		Storage:  StorageConfig{Driver: StorageDriverPostgres},
		Redis:    RedisConfig{Addr: "localhost:6379", ExperiencesCacheTTL: 60, DedupTTL: 24 * 60},
		Kafka: KafkaConfig{
			BookingTopic:       "bookings",
			NotificationsTopic: "booking-notifications",
			GroupID:            "bookit-worker",
		},
		Pricing:   PricingConfig{Surcharge: 59},
		Reconcile: ReconcileConfig{SweepIntervalMinutes: 5, GracePeriodMinutes: 10},
		Log:       LogConfig{Level: "info"},
	}
}

// DefaultPromoCodes is used when the config file declares no promo table.
func DefaultPromoCodes() map[string]PromoCodeConfig {
	return map[string]PromoCodeConfig{
		"SAVE10":  {Type: "percentage", Value: 0.10},
		"FLAT100": {Type: "flat", Value: 100},
	}
}

// LoadConfig reads the YAML file on top of Default and then applies BOOKIT_* environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if len(cfg.Promo.Codes) == 0 {
		cfg.Promo.Codes = DefaultPromoCodes()
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Pricing.Surcharge < 0 {
		return errors.New("pricing surcharge must not be negative")
	}
	for code, p := range c.Promo.Codes {
		switch p.Type {
		case "percentage":
			if p.Value <= 0 || p.Value >= 1 {
				return fmt.Errorf("promo %s: percentage must be between 0 and 1", code)
			}
		case "flat":
			if p.Value <= 0 {
				return fmt.Errorf("promo %s: flat discount must be positive", code)
			}
		default:
			return fmt.Errorf("promo %s: unknown type %q", code, p.Type)
		}
	}
	if c.Reconcile.SweepIntervalMinutes <= 0 {
		return errors.New("reconcile sweep interval must be positive")
	}
	if c.Reconcile.GracePeriodMinutes < 0 {
		return errors.New("reconcile grace period must not be negative")
	}
	if c.Reconcile.ReleaseOrphans && c.Reconcile.GracePeriodMinutes == 0 {
		return errors.New("reconcile release_orphans needs a positive grace period")
	}
	return nil
}
