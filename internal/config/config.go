package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Google GoogleConfig `yaml:"google" mapstructure:"google"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GoogleConfig holds Places API credentials.
type GoogleConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SyncConfig configures grid generation and request pacing.
type SyncConfig struct {
	CellKM            float64 `yaml:"cell_km" mapstructure:"cell_km"`
	RadiusM           int     `yaml:"radius_m" mapstructure:"radius_m"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	DetailDelayMS     int     `yaml:"detail_delay_ms" mapstructure:"detail_delay_ms"`
	CellDelayMS       int     `yaml:"cell_delay_ms" mapstructure:"cell_delay_ms"`
	CityDelayMS       int     `yaml:"city_delay_ms" mapstructure:"city_delay_ms"`
}

// CacheConfig configures the search response cache.
type CacheConfig struct {
	TTLMinutes     int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	CleanupMinutes int `yaml:"cleanup_minutes" mapstructure:"cleanup_minutes"`
}

// GeoConfig points at an optional boundary overlay file.
type GeoConfig struct {
	BoundariesFile string `yaml:"boundaries_file" mapstructure:"boundaries_file"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	AdminToken string `yaml:"admin_token" mapstructure:"admin_token"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// CleanupInterval returns the janitor interval as a duration.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupMinutes) * time.Minute
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "places.db")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("sync.cell_km", 1.5)
	v.SetDefault("sync.radius_m", 1000)
	v.SetDefault("sync.requests_per_second", 10)
	v.SetDefault("sync.detail_delay_ms", 100)
	v.SetDefault("sync.cell_delay_ms", 100)
	v.SetDefault("sync.city_delay_ms", 5000)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("cache.cleanup_minutes", 10)
	v.SetDefault("geo.boundaries_file", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
