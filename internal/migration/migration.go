package migration

import (
	"context"
	"fmt"

	"seqtrack/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRecordsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create records table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.createSequenceCounter(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create sequence counter")
	}

	return nil
}

// timestampType returns the column type that round-trips time.Time for the driver
func timestampType(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return "TIMESTAMP WITH TIME ZONE"
	}
	return "TIMESTAMP"
}

func (r *MigrationRunner) createRecordsTable(ctx context.Context, db *sqlx.DB) error {
	ts := timestampType(db)
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS records (
			id VARCHAR(64) PRIMARY KEY,
			sequence BIGINT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL DEFAULT '',
			species_name TEXT NOT NULL DEFAULT '',
			sequencing_id TEXT NOT NULL DEFAULT '',
			kit_type TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			ilab_id TEXT NOT NULL DEFAULT '',
			run_folder TEXT NOT NULL DEFAULT '',
			run_type TEXT NOT NULL DEFAULT '',
			clicked BOOLEAN NOT NULL DEFAULT false,
			source_file TEXT NOT NULL DEFAULT '',
			archive_key TEXT NOT NULL DEFAULT '',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)
	`, ts, ts))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_records_sequencing_id ON records(sequencing_id)",
		"CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return err
		}
	}

	return nil
}

// createSequenceCounter creates the counter that hands out record sequences.
// It is seeded from existing records so an older table keeps counting upward.
func (r *MigrationRunner) createSequenceCounter(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS record_counters (
			name VARCHAR(64) PRIMARY KEY,
			value BIGINT NOT NULL
		)
	`); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO record_counters (name, value)
		SELECT 'records', COALESCE(MAX(sequence), 0) FROM records
		WHERE NOT EXISTS (SELECT 1 FROM record_counters WHERE name = 'records')
	`)
	return err
}
