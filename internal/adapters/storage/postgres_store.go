package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/phishguard/phishguard/internal/domain"
)

// PostgresScanStore implements ports.ScanStore for PostgreSQL
type PostgresScanStore struct {
	db *sql.DB
}

// NewPostgresScanStore creates a new PostgreSQL scan history store
func NewPostgresScanStore(connStr string) (*PostgresScanStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	// In production, should be set based on workload
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresScanStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresScanStore) Close() error {
	return s.db.Close()
}

// InitSchema creates database tables if they don't exist
// In production, use proper migration tools
func (s *PostgresScanStore) InitSchema() error {
	schema := `
	-- ============================================================================
	-- SCANS TABLE
	-- ============================================================================
	-- Stores completed URL scan results for the history view.
	--
	-- Prototype simplifications:
	-- 1. details as JSONB {ml_score, ml_degraded, rule_result}
	--    Why: Details are always read alongside their parent scan (no joins needed)
	--    Production: Dedicated rule_hits table (id, scan_id, rule, weight) would
	--                enable queries like "all brand blocks this week"
	--
	-- 2. No retention policy
	--    Production: PARTITION BY RANGE(scanned_at) and drop old partitions
	--                instead of DELETE sweeps

	CREATE TABLE IF NOT EXISTS scans (
		id UUID PRIMARY KEY,
		url TEXT NOT NULL,
		score DECIMAL(5,4) NOT NULL,
		verdict VARCHAR(20) NOT NULL,
		details JSONB,
		scanned_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Backs RecentScans "most recent first"
	CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at DESC);
	-- Triage view: "show recent phishing verdicts"
	CREATE INDEX IF NOT EXISTS idx_scans_verdict ON scans(verdict, scanned_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveScan inserts a completed scan record
func (s *PostgresScanStore) SaveScan(ctx context.Context, record domain.ScanRecord) error {
	detailsJSON, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal scan details: %w", err)
	}

	query := `
		INSERT INTO scans (id, url, score, verdict, details, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.URL, record.Score, string(record.Verdict),
		detailsJSON, record.ScannedAt,
	)
	return err
}

// RecentScans retrieves the most recent scan records, newest first
func (s *PostgresScanStore) RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	query := `
		SELECT id, url, score, verdict, details, scanned_at
		FROM scans
		ORDER BY scanned_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ScanRecord, 0)
	for rows.Next() {
		var record domain.ScanRecord
		var verdict string
		var detailsJSON []byte

		if err := rows.Scan(
			&record.ID, &record.URL, &record.Score, &verdict,
			&detailsJSON, &record.ScannedAt,
		); err != nil {
			return nil, err
		}

		record.Verdict = domain.Verdict(verdict)
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &record.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal scan details: %w", err)
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
