package ports

import (
	"context"

	"github.com/phishguard/phishguard/internal/domain"
)

// ScanStore defines the contract for persisting and querying scan history.
//
// The scan path never awaits this store: results are handed off asynchronously
// after the response is produced, and persistence failures must never affect a
// scan that has already returned.
type ScanStore interface {
	// SaveScan persists a completed, timestamped URL scan.
	SaveScan(ctx context.Context, record domain.ScanRecord) error

	// RecentScans returns up to limit records, most recent first.
	RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// Lifecycle
	Close() error
}
