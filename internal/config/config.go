package config

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	MarketData MarketDataConfig `yaml:"marketdata" envconfig:"MARKETDATA"`
	Analytics  AnalyticsConfig  `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains API rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// MarketDataConfig contains the market data provider and cache settings.
type MarketDataConfig struct {
	ProviderName      string        `yaml:"provider_name" envconfig:"PROVIDER_NAME"`
	BaseURL           string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" envconfig:"BURST"`
	FetchConcurrency  int           `yaml:"fetch_concurrency" envconfig:"FETCH_CONCURRENCY"`
	RiskFreeRate      float64       `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE"`
	RedisAddr         string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword     string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	CacheTTL          time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
}

// AnalyticsConfig contains engine defaults and worker bounds. Request
// parameters override the Default* values per call; the worker bounds cap
// concurrency regardless of request size.
type AnalyticsConfig struct {
	DefaultLinkage          string  `yaml:"default_linkage" envconfig:"DEFAULT_LINKAGE"`
	SignificanceLevel       float64 `yaml:"significance_level" envconfig:"SIGNIFICANCE_LEVEL"`
	DefaultLookbackDays     int     `yaml:"default_lookback_days" envconfig:"DEFAULT_LOOKBACK_DAYS"`
	DefaultSpreadWindow     int     `yaml:"default_spread_window" envconfig:"DEFAULT_SPREAD_WINDOW"`
	DefaultEntryThreshold   float64 `yaml:"default_entry_threshold" envconfig:"DEFAULT_ENTRY_THRESHOLD"`
	DefaultExitThreshold    float64 `yaml:"default_exit_threshold" envconfig:"DEFAULT_EXIT_THRESHOLD"`
	MaxPairWorkers          int     `yaml:"max_pair_workers" envconfig:"MAX_PAIR_WORKERS"`
	MaxSolveWorkers         int     `yaml:"max_solve_workers" envconfig:"MAX_SOLVE_WORKERS"`
	DefaultMinVolume        int64   `yaml:"default_min_volume" envconfig:"DEFAULT_MIN_VOLUME"`
	DefaultExpirationFilter string  `yaml:"default_expiration_filter" envconfig:"DEFAULT_EXPIRATION_FILTER"`
}

// Load builds the configuration by layering the YAML file (when present)
// and QD_* environment variables over Default(), then validating the
// result. Each layer only overrides keys it sets.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// configFilePath returns the config file to load. QD_CONFIG_FILE wins;
// otherwise the first existing conventional location is used.
func configFilePath() string {
	if path := os.Getenv(envPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the merged configuration and normalizes the logging
// section. It mutates the receiver only for logging coercions.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Security.RateLimit.Enabled {
		if c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit rps and burst must be positive when enabled")
		}
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	// JSON is the only supported format; dual output is the default sink.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/quantdesk.log"
	}

	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("marketdata base URL must be set")
	}
	if c.MarketData.Timeout <= 0 {
		return fmt.Errorf("marketdata timeout must be positive")
	}
	if c.MarketData.RequestsPerSecond <= 0 || c.MarketData.Burst <= 0 {
		return fmt.Errorf("marketdata rate limit must be positive")
	}
	if c.MarketData.FetchConcurrency < 1 {
		return fmt.Errorf("marketdata fetch concurrency must be at least 1")
	}
	if math.IsNaN(c.MarketData.RiskFreeRate) || math.Abs(c.MarketData.RiskFreeRate) > 1 {
		return fmt.Errorf("marketdata risk-free rate must be a rate, got %g", c.MarketData.RiskFreeRate)
	}
	if c.MarketData.CacheTTL <= 0 {
		return fmt.Errorf("marketdata cache TTL must be positive")
	}

	if !slices.Contains(LinkageMethods, c.Analytics.DefaultLinkage) {
		return fmt.Errorf("invalid default linkage method: %s", c.Analytics.DefaultLinkage)
	}
	if c.Analytics.SignificanceLevel <= 0 || c.Analytics.SignificanceLevel >= 1 {
		return fmt.Errorf("significance level must be in (0, 1), got %g", c.Analytics.SignificanceLevel)
	}
	if c.Analytics.DefaultLookbackDays < MinLookbackDays || c.Analytics.DefaultLookbackDays > MaxLookbackDays {
		return fmt.Errorf("default lookback days must be in [%d, %d], got %d",
			MinLookbackDays, MaxLookbackDays, c.Analytics.DefaultLookbackDays)
	}
	if c.Analytics.DefaultSpreadWindow < MinSpreadWindow || c.Analytics.DefaultSpreadWindow > MaxSpreadWindow {
		return fmt.Errorf("default spread window must be in [%d, %d], got %d",
			MinSpreadWindow, MaxSpreadWindow, c.Analytics.DefaultSpreadWindow)
	}
	if c.Analytics.DefaultEntryThreshold <= 0 {
		return fmt.Errorf("default entry threshold must be positive")
	}
	if c.Analytics.DefaultExitThreshold < 0 || c.Analytics.DefaultExitThreshold >= c.Analytics.DefaultEntryThreshold {
		return fmt.Errorf("default exit threshold must be in [0, entry)")
	}
	if c.Analytics.MaxPairWorkers < 1 || c.Analytics.MaxSolveWorkers < 1 {
		return fmt.Errorf("analytics worker bounds must be at least 1")
	}
	if c.Analytics.DefaultMinVolume < 0 {
		return fmt.Errorf("default minimum volume must not be negative")
	}
	if !slices.Contains(ExpirationFilters, c.Analytics.DefaultExpirationFilter) {
		return fmt.Errorf("invalid default expiration filter: %s", c.Analytics.DefaultExpirationFilter)
	}

	return nil
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    65 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/quantdesk.log",
			Development: false,
		},
		MarketData: MarketDataConfig{
			ProviderName:      "quantfeed",
			BaseURL:           "http://localhost:8090",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
			FetchConcurrency:  4,
			RiskFreeRate:      0.045,
			RedisAddr:         "",
			RedisDB:           0,
			CacheTTL:          5 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			DefaultLinkage:          "ward",
			SignificanceLevel:       0.05,
			DefaultLookbackDays:     730,
			DefaultSpreadWindow:     20,
			DefaultEntryThreshold:   2.0,
			DefaultExitThreshold:    0.5,
			MaxPairWorkers:          8,
			MaxSolveWorkers:         16,
			DefaultMinVolume:        10,
			DefaultExpirationFilter: "near_term",
		},
	}
}
