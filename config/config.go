// Package config loads the service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/tracking"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig holds the accounting and detection parameters.
type EngineConfig struct {
	Timezone      string              `yaml:"timezone"`
	DefaultRegion string              `yaml:"default_region"`
	ShootKeywords []string            `yaml:"shoot_keywords"`
	Thresholds    ThresholdsConfig    `yaml:"thresholds"`
	Location      *time.Location      `yaml:"-"`
	Detection     tracking.Thresholds `yaml:"-"`
}

// ThresholdsConfig mirrors tracking.Thresholds. Zero values take the defaults.
type ThresholdsConfig struct {
	ShootMaxHours         float64 `yaml:"shoot_max_hours"`
	RegularMaxHours       float64 `yaml:"regular_max_hours"`
	UnderPerformanceRatio float64 `yaml:"under_performance_ratio"`
	NightWindowEndHour    int     `yaml:"night_window_end_hour"`
	MinNightHours         float64 `yaml:"min_night_hours"`
}

// ScannerConfig holds the periodic anomaly scan configuration.
type ScannerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalMinutes int           `yaml:"interval_minutes"`
	LookbackDays    int           `yaml:"lookback_days"`
	Interval        time.Duration `yaml:"-"`
}

// CacheConfig holds the holiday cache configuration.
type CacheConfig struct {
	HolidayTTLMinutes int           `yaml:"holiday_ttl_minutes"`
	HolidayTTL        time.Duration `yaml:"-"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Scanner: ScannerConfig{Enabled: true}}
	if err := cfg.applyDefaults(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration from path. An empty path uses defaults.
// A .env file in the working directory is loaded first if present, and
// WORKTIME_* variables override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{Scanner: ScannerConfig{Enabled: true}}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 40
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./worktime.db"
	}

	if cfg.Engine.Timezone == "" {
		cfg.Engine.Timezone = "Europe/Berlin"
	}
	loc, err := time.LoadLocation(cfg.Engine.Timezone)
	if err != nil {
		return fmt.Errorf("engine.timezone %q: %w", cfg.Engine.Timezone, err)
	}
	cfg.Engine.Location = loc
	if len(cfg.Engine.ShootKeywords) == 0 {
		cfg.Engine.ShootKeywords = tracking.DefaultShootKeywords
	}
	cfg.Engine.Detection = cfg.Engine.Thresholds.merge(tracking.DefaultThresholds())

	if cfg.Scanner.IntervalMinutes <= 0 {
		cfg.Scanner.IntervalMinutes = 60
	}
	cfg.Scanner.Interval = time.Duration(cfg.Scanner.IntervalMinutes) * time.Minute
	if cfg.Scanner.LookbackDays <= 0 {
		cfg.Scanner.LookbackDays = 30
	}

	if cfg.Cache.HolidayTTLMinutes <= 0 {
		cfg.Cache.HolidayTTLMinutes = 24 * 60
	}
	cfg.Cache.HolidayTTL = time.Duration(cfg.Cache.HolidayTTLMinutes) * time.Minute

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return nil
}

func (t ThresholdsConfig) merge(d tracking.Thresholds) tracking.Thresholds {
	if t.ShootMaxHours > 0 {
		d.ShootMaxHours = t.ShootMaxHours
	}
	if t.RegularMaxHours > 0 {
		d.RegularMaxHours = t.RegularMaxHours
	}
	if t.UnderPerformanceRatio > 0 {
		d.UnderPerformanceRatio = t.UnderPerformanceRatio
	}
	if t.NightWindowEndHour > 0 && t.NightWindowEndHour <= 24 {
		d.NightWindowEndHour = t.NightWindowEndHour
	}
	if t.MinNightHours > 0 {
		d.MinNightHours = t.MinNightHours
	}
	return d
}

// DefaultRegion returns the configured region for requests without one.
func (cfg *Config) DefaultRegion() generic.Region {
	return generic.Region(strings.ToUpper(cfg.Engine.DefaultRegion))
}

// Logger builds a logrus logger from the log section.
func (cfg *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvAsInt("WORKTIME_PORT", cfg.Server.Port)
	cfg.Server.RateLimitPerSec = getEnvAsFloat("WORKTIME_RATE_LIMIT", cfg.Server.RateLimitPerSec)
	if origins := getEnv("WORKTIME_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.Database.Path = getEnv("WORKTIME_DB_PATH", cfg.Database.Path)
	cfg.Engine.Timezone = getEnv("WORKTIME_TIMEZONE", cfg.Engine.Timezone)
	cfg.Engine.DefaultRegion = getEnv("WORKTIME_DEFAULT_REGION", cfg.Engine.DefaultRegion)
	if kw := getEnv("WORKTIME_SHOOT_KEYWORDS", ""); kw != "" {
		cfg.Engine.ShootKeywords = strings.Split(kw, ",")
	}
	cfg.Scanner.Enabled = getEnvAsBool("WORKTIME_SCANNER_ENABLED", cfg.Scanner.Enabled)
	cfg.Scanner.IntervalMinutes = getEnvAsInt("WORKTIME_SCANNER_INTERVAL_MINUTES", cfg.Scanner.IntervalMinutes)
	cfg.Scanner.LookbackDays = getEnvAsInt("WORKTIME_SCANNER_LOOKBACK_DAYS", cfg.Scanner.LookbackDays)
	cfg.Log.Level = getEnv("WORKTIME_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("WORKTIME_LOG_FORMAT", cfg.Log.Format)
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	if val, err := strconv.ParseFloat(getEnv(name, ""), 64); err == nil {
		return val
	}
	return defaultVal
}
