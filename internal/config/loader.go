package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration in three layers: defaults, then the TOML
// file at path (skipped when path is empty or the file does not exist), then
// ARBSCAN_* environment variables. A .env file in the working directory is
// loaded into the environment first if present.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	return cfg, nil
}

// applyEnvOverrides mutates cfg from ARBSCAN_* environment variables. Empty
// variables are ignored.
func applyEnvOverrides(cfg *Config) {
	setStr("ARBSCAN_MODE", &cfg.Mode)
	setStr("ARBSCAN_LOG_LEVEL", &cfg.LogLevel)

	setStr("ARBSCAN_POLYMARKET_GAMMA_HOST", &cfg.Polymarket.GammaHost)
	setStr("ARBSCAN_POLYMARKET_CLOB_HOST", &cfg.Polymarket.ClobHost)
	setStr("ARBSCAN_POLYMARKET_WS_HOST", &cfg.Polymarket.WsHost)
	setInt("ARBSCAN_POLYMARKET_MAX_MARKETS", &cfg.Polymarket.MaxMarkets)

	setStr("ARBSCAN_KALSHI_BASE_URL", &cfg.Kalshi.BaseURL)
	setStr("ARBSCAN_KALSHI_API_KEY", &cfg.Kalshi.ApiKey)
	setStr("ARBSCAN_KALSHI_RSA_PRIVATE_KEY_PATH", &cfg.Kalshi.RsaPrivateKeyPath)
	setInt("ARBSCAN_KALSHI_MAX_MARKETS", &cfg.Kalshi.MaxMarkets)

	setFloat64("ARBSCAN_DETECT_SPREAD_THRESHOLD", &cfg.Detect.SpreadThreshold)
	setFloat64("ARBSCAN_DETECT_COMBO_THRESHOLD", &cfg.Detect.ComboThreshold)
	setInt("ARBSCAN_DETECT_COMBO_MATCH_THRESHOLD", &cfg.Detect.ComboMatchThreshold)
	setFloat64("ARBSCAN_DETECT_CERTAINTY_THRESHOLD", &cfg.Detect.CertaintyThreshold)
	setStringSlice("ARBSCAN_DETECT_AMBIGUITY_KEYWORDS", &cfg.Detect.AmbiguityKeywords)
	setFloat64("ARBSCAN_DETECT_CROSS_VENUE_THRESHOLD", &cfg.Detect.CrossVenueThreshold)
	setInt("ARBSCAN_DETECT_CROSS_VENUE_MATCH_THRESHOLD", &cfg.Detect.CrossVenueMatchThreshold)
	setStringSlice("ARBSCAN_DETECT_ENABLED_KINDS", &cfg.Detect.EnabledKinds)
	setInt("ARBSCAN_DETECT_MAX_MATCH_CANDIDATES", &cfg.Detect.MaxMatchCandidates)

	setDuration("ARBSCAN_SCAN_INTERVAL", &cfg.Scan.Interval.Duration)

	setBool("ARBSCAN_POSTGRES_ENABLED", &cfg.Postgres.Enabled)
	setStr("ARBSCAN_POSTGRES_DSN", &cfg.Postgres.DSN)
	setStr("ARBSCAN_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("ARBSCAN_POSTGRES_PORT", &cfg.Postgres.Port)
	setStr("ARBSCAN_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setStr("ARBSCAN_POSTGRES_USER", &cfg.Postgres.User)
	setStr("ARBSCAN_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setStr("ARBSCAN_POSTGRES_SSL_MODE", &cfg.Postgres.SSLMode)
	setBool("ARBSCAN_POSTGRES_RUN_MIGRATIONS", &cfg.Postgres.RunMigrations)

	setBool("ARBSCAN_REDIS_ENABLED", &cfg.Redis.Enabled)
	setStr("ARBSCAN_REDIS_ADDR", &cfg.Redis.Addr)
	setStr("ARBSCAN_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("ARBSCAN_REDIS_DB", &cfg.Redis.DB)
	setBool("ARBSCAN_REDIS_TLS_ENABLED", &cfg.Redis.TLSEnabled)

	setBool("ARBSCAN_S3_ENABLED", &cfg.S3.Enabled)
	setStr("ARBSCAN_S3_ENDPOINT", &cfg.S3.Endpoint)
	setStr("ARBSCAN_S3_REGION", &cfg.S3.Region)
	setStr("ARBSCAN_S3_BUCKET", &cfg.S3.Bucket)
	setStr("ARBSCAN_S3_ACCESS_KEY", &cfg.S3.AccessKey)
	setStr("ARBSCAN_S3_SECRET_KEY", &cfg.S3.SecretKey)
	setBool("ARBSCAN_S3_USE_SSL", &cfg.S3.UseSSL)
	setBool("ARBSCAN_S3_FORCE_PATH_STYLE", &cfg.S3.ForcePathStyle)

	setStr("ARBSCAN_TELEGRAM_TOKEN", &cfg.Notify.TelegramToken)
	setStr("ARBSCAN_TELEGRAM_CHAT_ID", &cfg.Notify.TelegramChatID)
	setStr("ARBSCAN_DISCORD_WEBHOOK_URL", &cfg.Notify.DiscordWebhookURL)
	setStringSlice("ARBSCAN_NOTIFY_EVENTS", &cfg.Notify.Events)

	setBool("ARBSCAN_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setStr("ARBSCAN_METRICS_ADDR", &cfg.Metrics.Addr)
}

func setStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setStringSlice(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
