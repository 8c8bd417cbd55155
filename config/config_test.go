package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.HTTP.Address)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 59.0, cfg.Pricing.Surcharge)
	assert.Equal(t, DefaultPromoCodes(), cfg.Promo.Codes)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8080"
storage:
  driver: memory
promo:
  codes:
    HALF:
      type: percentage
      value: 0.5
reconcile:
  sweep_interval_minutes: 1
  grace_period_minutes: 2
  release_orphans: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, map[string]PromoCodeConfig{"HALF": {Type: "percentage", Value: 0.5}}, cfg.Promo.Codes)
	assert.True(t, cfg.Reconcile.ReleaseOrphans)
	assert.Equal(t, "2m0s", cfg.Reconcile.GracePeriod().String())
	assert.Equal(t, "localhost", cfg.Database.Host, "unset keys keep their default")
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  host: db.internal\n")
	t.Setenv("BOOKIT_DATABASE_HOST", "db.override")
	t.Setenv("BOOKIT_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKIT_PRICING_SURCHARGE", "12.5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 12.5, cfg.Pricing.Surcharge)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "http: [")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mongo" },
			wantErr: "unknown storage driver",
		},
		{
			name:    "negative surcharge",
			mutate:  func(c *Config) { c.Pricing.Surcharge = -1 },
			wantErr: "surcharge",
		},
		{
			name: "percentage out of range",
			mutate: func(c *Config) {
				c.Promo.Codes = map[string]PromoCodeConfig{"BAD": {Type: "percentage", Value: 10}}
			},
			wantErr: "percentage must be between 0 and 1",
		},
		{
			name: "unknown promo type",
			mutate: func(c *Config) {
				c.Promo.Codes = map[string]PromoCodeConfig{"BAD": {Type: "bogo", Value: 1}}
			},
			wantErr: "unknown type",
		},
		{
			name:    "zero sweep interval",
			mutate:  func(c *Config) { c.Reconcile.SweepIntervalMinutes = 0 },
			wantErr: "sweep interval",
		},
		{
			name: "release without grace period",
			mutate: func(c *Config) {
				c.Reconcile.ReleaseOrphans = true
				c.Reconcile.GracePeriodMinutes = 0
			},
			wantErr: "positive grace period",
		},
		{
			name:   "report only with zero grace period",
			mutate: func(c *Config) { c.Reconcile.GracePeriodMinutes = 0 },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Promo.Codes = DefaultPromoCodes()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", d.DSN())
}
