package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	s3blob "github.com/dkelsey/arbscan/internal/blob/s3"
	"github.com/dkelsey/arbscan/internal/cache/redis"
	"github.com/dkelsey/arbscan/internal/config"
	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/engine"
	"github.com/dkelsey/arbscan/internal/metrics"
	"github.com/dkelsey/arbscan/internal/notify"
	"github.com/dkelsey/arbscan/internal/scan"
	"github.com/dkelsey/arbscan/internal/store/postgres"
	"github.com/dkelsey/arbscan/internal/venue"
	"github.com/dkelsey/arbscan/internal/venue/kalshi"
	"github.com/dkelsey/arbscan/internal/venue/polymarket"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Adapters []venue.Adapter
	Scanner  *scan.Scanner

	// Polymarket is the concrete Polymarket adapter, kept alongside Adapters
	// so watch mode can list outcome tokens for WebSocket subscriptions.
	Polymarket *polymarket.Adapter

	Store    domain.ScanStore
	Cache    domain.ResultCache
	Archiver scan.Archiver
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Store = postgres.NewScanStore(pgClient.Pool())
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Cache = redis.NewResultCache(redisClient)
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client))
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Metrics ---
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	// --- Venue adapters ---
	deps.Polymarket = polymarket.NewAdapter(
		polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
		polymarket.NewClobClient(cfg.Polymarket.ClobHost),
		cfg.Polymarket.MaxMarkets,
		logger,
	)
	deps.Adapters = append(deps.Adapters, deps.Polymarket)

	kalshiClient := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.ApiKey != "" && cfg.Kalshi.RsaPrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			logger.Warn("wire: failed reading Kalshi RSA key, continuing unauthenticated",
				slog.String("path", cfg.Kalshi.RsaPrivateKeyPath),
				slog.String("error", err.Error()),
			)
		} else if err := kalshiClient.SetRSAPrivateKey(keyBytes); err != nil {
			logger.Warn("wire: failed parsing Kalshi RSA key, continuing unauthenticated",
				slog.String("path", cfg.Kalshi.RsaPrivateKeyPath),
				slog.String("error", err.Error()),
			)
		}
	}
	deps.Adapters = append(deps.Adapters, kalshi.NewAdapter(kalshiClient, cfg.Kalshi.MaxMarkets, logger))

	// --- Engine and scanner ---
	eng, err := engine.New(cfg.EngineConfig(), logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: %w", err)
	}
	deps.Scanner = scan.New(deps.Adapters, eng, scan.Options{
		Store:    deps.Store,
		Cache:    deps.Cache,
		Archiver: deps.Archiver,
		Notifier: deps.Notifier,
		Metrics:  deps.Metrics,
	}, logger)

	return deps, cleanup, nil
}
