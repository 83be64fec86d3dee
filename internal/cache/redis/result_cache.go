package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkelsey/arbscan/internal/domain"
)

const latestScanTTL = 30 * time.Minute

// ResultCache implements domain.ResultCache using a single Redis key holding
// the JSON-serialized latest scan. Read-side consumers poll this key instead
// of hitting Postgres on every refresh.
//
// Key schema:
//
//	scan:latest - JSON-encoded ScanRecord
type ResultCache struct {
	rdb *redis.Client
}

// NewResultCache creates a ResultCache backed by the given Client.
func NewResultCache(c *Client) *ResultCache {
	return &ResultCache{rdb: c.Underlying()}
}

const latestScanKey = "scan:latest"

// SetLatest stores the scan as the latest, with a TTL so a stalled scanner
// reads as "no data" rather than serving hours-old results.
func (rc *ResultCache) SetLatest(ctx context.Context, rec domain.ScanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal scan %s: %w", rec.ID, err)
	}
	if err := rc.rdb.Set(ctx, latestScanKey, data, latestScanTTL).Err(); err != nil {
		return fmt.Errorf("redis: set latest scan: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent scan. It returns domain.ErrNotFound
// when no scan has been cached or the entry has expired.
func (rc *ResultCache) GetLatest(ctx context.Context) (domain.ScanRecord, error) {
	data, err := rc.rdb.Get(ctx, latestScanKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanRecord{}, domain.ErrNotFound
		}
		return domain.ScanRecord{}, fmt.Errorf("redis: get latest scan: %w", err)
	}

	var rec domain.ScanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("redis: unmarshal latest scan: %w", err)
	}
	return rec, nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
