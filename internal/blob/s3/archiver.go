package s3blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dkelsey/arbscan/internal/domain"
	"github.com/dkelsey/arbscan/internal/export"
)

// Archiver uploads one CSV export per scan cycle, keyed by scan start time
// and ID, so a scan's findings survive cache expiry and store pruning.
type Archiver struct {
	writer domain.BlobWriter
}

// NewArchiver creates an Archiver uploading through the given writer.
func NewArchiver(writer domain.BlobWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveScan renders the scan to CSV and uploads it. It returns the object
// key the export was written to.
func (a *Archiver) ArchiveScan(ctx context.Context, rec *domain.ScanRecord) (string, error) {
	data, err := export.CSV(rec)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive scan %s: %w", rec.ID, err)
	}

	path := scanPath(rec)
	if err := a.writer.Put(ctx, path, bytes.NewReader(data), "text/csv"); err != nil {
		return "", fmt.Errorf("s3blob: archive scan %s: %w", rec.ID, err)
	}
	return path, nil
}

// scanPath builds the object key for a scan export, partitioned by day:
//
//	scans/2025-01-15/20250115T090205Z-<scan-id>.csv
func scanPath(rec *domain.ScanRecord) string {
	return fmt.Sprintf("scans/%s/%s-%s.csv",
		rec.StartedAt.UTC().Format("2006-01-02"),
		rec.StartedAt.UTC().Format("20060102T150405Z"),
		rec.ID,
	)
}
