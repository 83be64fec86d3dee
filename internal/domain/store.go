package domain

import (
	"context"
	"io"
)

// ScanStore persists completed scan cycles for later inspection. Persistence
// is a collaborator of the detection engine, never a dependency of it.
type ScanStore interface {
	Insert(ctx context.Context, rec ScanRecord) error
	GetScan(ctx context.Context, id string) (ScanRecord, error)
	ListRecent(ctx context.Context, limit int) ([]ScanRecord, error)
}

// ResultCache holds the most recent scan so read-side consumers (dashboards,
// bots) can fetch it without touching the primary store.
type ResultCache interface {
	SetLatest(ctx context.Context, rec ScanRecord) error
	GetLatest(ctx context.Context) (ScanRecord, error)
}

// BlobWriter uploads a single object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
