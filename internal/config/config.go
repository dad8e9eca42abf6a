package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	Timezone                         string        `mapstructure:"TIMEZONE"`
	RedisAddress                     string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword                    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int           `mapstructure:"REDIS_DB"`
	CacheTTL                         time.Duration `mapstructure:"CACHE_TTL"`
	ReconcileCron                    string        `mapstructure:"RECONCILE_CRON"`
	TariffFile                       string        `mapstructure:"TARIFF_FILE"`

	Tariff   Tariff         `mapstructure:"-"`
	Location *time.Location `mapstructure:"-"`
}

// Tariff holds the household's fixed business constants.
type Tariff struct {
	// LunchWeight is the cost of a lunch relative to a dinner.
	LunchWeight float64 `yaml:"lunch_weight"`
	// ExtraRiceRate is the flat price of one extra rice portion.
	ExtraRiceRate float64 `yaml:"extra_rice_rate"`
	// LunchLockHour and DinnerLockHour are local hours at which today's meals lock.
	LunchLockHour  int `yaml:"lunch_lock_hour"`
	DinnerLockHour int `yaml:"dinner_lock_hour"`
}

// DefaultTariff returns the constants the household has always used.
func DefaultTariff() Tariff {
	return Tariff{
		LunchWeight:    38.0 / 62.0,
		ExtraRiceRate:  10,
		LunchLockHour:  9,
		DinnerLockHour: 19,
	}
}

// Validate checks that the tariff is usable.
func (t Tariff) Validate() error {
	if t.LunchWeight <= 0 {
		return errors.New("tariff lunch_weight must be positive")
	}
	if t.ExtraRiceRate < 0 {
		return errors.New("tariff extra_rice_rate must not be negative")
	}
	if t.LunchLockHour < 0 || t.DinnerLockHour > 24 || t.LunchLockHour > t.DinnerLockHour {
		return fmt.Errorf("tariff lock hours must satisfy 0 <= lunch (%d) <= dinner (%d) <= 24", t.LunchLockHour, t.DinnerLockHour)
	}
	return nil
}

var appConfig *Config

// LoadConfig loads configuration from the environment (and a .env file outside release mode) using Viper.
func LoadConfig() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		// A missing .env file is fine; the environment may already be populated.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("TIMEZONE", "Asia/Dhaka")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("RECONCILE_CRON", "30 3 * * *")

	for _, key := range []string{
		"PORT", "GIN_MODE", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
		"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "CLIENT_URL", "TIMEZONE", "REDIS_ADDRESS",
		"REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL", "RECONCILE_CRON", "TARIFF_FILE",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.Tariff = DefaultTariff()
	if cfg.TariffFile != "" {
		t, err := LoadTariff(cfg.TariffFile)
		if err != nil {
			return nil, err
		}
		cfg.Tariff = t
	}

	appConfig = &cfg
	return appConfig, nil
}

// LoadTariff reads a YAML tariff file. Keys absent from the file keep their defaults.
func LoadTariff(path string) (Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tariff{}, fmt.Errorf("reading tariff file: %w", err)
	}
	return ParseTariff(data)
}

// ParseTariff decodes YAML tariff data over the defaults and validates the result.
func ParseTariff(data []byte) (Tariff, error) {
	t := DefaultTariff()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tariff{}, fmt.Errorf("parsing tariff: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tariff{}, err
	}
	return t, nil
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
