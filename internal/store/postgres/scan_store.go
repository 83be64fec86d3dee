package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkelsey/arbscan/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

const scanSelectCols = `id, started_at, finished_at,
	snapshots_considered, snapshots_skipped, matches_evaluated,
	records_dropped, opportunities`

// Insert stores a completed scan cycle.
func (s *ScanStore) Insert(ctx context.Context, rec domain.ScanRecord) error {
	const query = `
		INSERT INTO scans (
			id, started_at, finished_at,
			snapshots_considered, snapshots_skipped, matches_evaluated,
			records_dropped, opportunities, opportunity_count
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9
		)`

	dropped, err := json.Marshal(rec.RecordsDropped)
	if err != nil {
		return fmt.Errorf("postgres: marshal records_dropped for scan %s: %w", rec.ID, err)
	}
	opps, err := json.Marshal(rec.Opportunities)
	if err != nil {
		return fmt.Errorf("postgres: marshal opportunities for scan %s: %w", rec.ID, err)
	}

	_, err = s.pool.Exec(ctx, query,
		rec.ID, rec.StartedAt, rec.FinishedAt,
		rec.Summary.SnapshotsConsidered, rec.Summary.SnapshotsSkipped, rec.Summary.MatchesEvaluated,
		dropped, opps, len(rec.Opportunities),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert scan %s: %w", rec.ID, err)
	}
	return nil
}

// GetScan retrieves a single scan by its ID. It returns domain.ErrNotFound
// when no such scan exists.
func (s *ScanStore) GetScan(ctx context.Context, id string) (domain.ScanRecord, error) {
	query := `SELECT ` + scanSelectCols + ` FROM scans WHERE id = $1`

	rec, err := scanRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScanRecord{}, domain.ErrNotFound
		}
		return domain.ScanRecord{}, fmt.Errorf("postgres: get scan %s: %w", id, err)
	}
	return rec, nil
}

// ListRecent returns the most recent scans ordered by start time.
func (s *ScanStore) ListRecent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	query := `SELECT ` + scanSelectCols + ` FROM scans ORDER BY started_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent scans: %w", err)
	}
	defer rows.Close()

	var recs []domain.ScanRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent scans rows: %w", err)
	}
	return recs, nil
}

func scanRow(row pgx.Row) (domain.ScanRecord, error) {
	var rec domain.ScanRecord
	var dropped, opps []byte

	if err := row.Scan(
		&rec.ID, &rec.StartedAt, &rec.FinishedAt,
		&rec.Summary.SnapshotsConsidered, &rec.Summary.SnapshotsSkipped, &rec.Summary.MatchesEvaluated,
		&dropped, &opps,
	); err != nil {
		return domain.ScanRecord{}, err
	}

	if err := json.Unmarshal(dropped, &rec.RecordsDropped); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("unmarshal records_dropped: %w", err)
	}
	if err := json.Unmarshal(opps, &rec.Opportunities); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("unmarshal opportunities: %w", err)
	}
	return rec, nil
}

// Compile-time interface check.
var _ domain.ScanStore = (*ScanStore)(nil)
