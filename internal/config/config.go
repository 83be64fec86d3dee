// Package config defines the top-level configuration for the scanner and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/engine"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBSCAN_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Detect     DetectConfig     `toml:"detect"`
	Scan       ScanConfig       `toml:"scan"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost  string `toml:"gamma_host"`
	ClobHost   string `toml:"clob_host"`
	WsHost     string `toml:"ws_host"`
	MaxMarkets int    `toml:"max_markets"`
}

// KalshiConfig holds Kalshi exchange API parameters. Credentials are
// optional; market data is public.
type KalshiConfig struct {
	BaseURL           string `toml:"base_url"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	MaxMarkets        int    `toml:"max_markets"`
}

// DetectConfig holds every classifier threshold.
type DetectConfig struct {
	SpreadThreshold          float64  `toml:"spread_threshold"`
	ComboThreshold           float64  `toml:"combo_threshold"`
	ComboMatchThreshold      int      `toml:"combo_match_threshold"`
	CertaintyThreshold       float64  `toml:"certainty_threshold"`
	AmbiguityKeywords        []string `toml:"ambiguity_keywords"`
	CrossVenueThreshold      float64  `toml:"cross_venue_threshold"`
	CrossVenueMatchThreshold int      `toml:"cross_venue_match_threshold"`
	EnabledKinds             []string `toml:"enabled_kinds"`
	MaxMatchCandidates       int      `toml:"max_match_candidates"`
}

// ScanConfig holds scan-cycle parameters.
type ScanConfig struct {
	// Interval between cycles in watch mode.
	Interval duration `toml:"interval"`
}

// PostgresConfig holds PostgreSQL connection parameters. Disabled means scans
// are not persisted.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// MetricsConfig holds Prometheus endpoint parameters.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	det := engine.Defaults()
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost:  "https://gamma-api.polymarket.com",
			ClobHost:   "https://clob.polymarket.com",
			WsHost:     "wss://ws-subscriptions-clob.polymarket.com/ws/market",
			MaxMarkets: 2000,
		},
		Kalshi: KalshiConfig{
			BaseURL:    "https://api.elections.kalshi.com/trade-api/v2",
			MaxMarkets: 2000,
		},
		Detect: DetectConfig{
			SpreadThreshold:          det.SpreadThreshold,
			ComboThreshold:           det.ComboThreshold,
			ComboMatchThreshold:      det.ComboMatchThreshold,
			CertaintyThreshold:       det.CertaintyThreshold,
			AmbiguityKeywords:        det.AmbiguityKeywords,
			CrossVenueThreshold:      det.CrossVenueThreshold,
			CrossVenueMatchThreshold: det.CrossVenueMatchThreshold,
			MaxMatchCandidates:       det.MaxMatchCandidates,
		},
		Scan: ScanConfig{
			Interval: duration{20 * time.Second},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "arbscan",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbscan-data",
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"opportunity.monetary"},
		},
		Metrics: MetricsConfig{
			Addr: ":9091",
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// EngineConfig converts the detect section into the engine's config type.
func (c *Config) EngineConfig() engine.Config {
	kinds := make([]domain.OpportunityKind, 0, len(c.Detect.EnabledKinds))
	for _, k := range c.Detect.EnabledKinds {
		kinds = append(kinds, domain.OpportunityKind(k))
	}
	return engine.Config{
		SpreadThreshold:          c.Detect.SpreadThreshold,
		ComboThreshold:           c.Detect.ComboThreshold,
		ComboMatchThreshold:      c.Detect.ComboMatchThreshold,
		CertaintyThreshold:       c.Detect.CertaintyThreshold,
		AmbiguityKeywords:        c.Detect.AmbiguityKeywords,
		CrossVenueThreshold:      c.Detect.CrossVenueThreshold,
		CrossVenueMatchThreshold: c.Detect.CrossVenueMatchThreshold,
		EnabledKinds:             kinds,
		MaxMatchCandidates:       c.Detect.MaxMatchCandidates,
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":  true,
	"watch": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found. Detection thresholds are
// validated by the engine itself; everything else is checked here.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, watch)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}

	if strings.ToLower(c.Mode) == "watch" && c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be positive in watch mode")
	}

	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, "metrics: addr must not be empty when enabled")
	}

	if err := c.EngineConfig().Validate(); err != nil {
		errs = append(errs, "detect: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
