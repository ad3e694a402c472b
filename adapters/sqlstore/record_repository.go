package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"seqtrack/internal/errors"
	"seqtrack/models"
	"seqtrack/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const recordColumns = `id, sequence, customer_name, species_name, sequencing_id, kit_type, name, date,
	ilab_id, run_folder, run_type, clicked, source_file, archive_key, created_at, updated_at`

// recordRepository implements the RecordRepository interface
type recordRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sqlx.DB) ports.RecordRepository {
	return &recordRepository{db: db, now: time.Now}
}

// Create inserts a record under the next sequence. The counter only moves
// forward, so a deleted record's sequence is never handed out again.
func (r *recordRepository) Create(ctx context.Context, rec *models.Record) error {
	if rec.ID == "" {
		rec.ID = models.NewID()
	}
	now := r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StoreError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var sequence int64
	err = tx.QueryRowxContext(ctx,
		`UPDATE record_counters SET value = value + 1 WHERE name = 'records' RETURNING value`,
	).Scan(&sequence)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.StoreError("sequence counter missing; run migrations", err)
		}
		return errors.StoreError("failed to allocate record sequence", err)
	}

	query := tx.Rebind(`INSERT INTO records (
		id, sequence, customer_name, species_name, sequencing_id, kit_type, name, date,
		ilab_id, run_folder, run_type, clicked, source_file, archive_key, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = tx.ExecContext(ctx, query,
		rec.ID, sequence, rec.CustomerName, rec.SpeciesName, rec.SequencingID, rec.KitType, rec.Name, rec.Date,
		rec.ILabID, rec.RunFolder, rec.RunType, rec.Clicked, rec.SourceFile, rec.ArchiveKey,
		now, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return errors.StoreError("record sequence already taken", err)
		}
		return errors.StoreError("failed to create record", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError("failed to commit record", err)
	}

	rec.Sequence = sequence
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// Get retrieves a record by its ID
func (r *recordRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	var rec models.Record
	query := r.db.Rebind(`SELECT ` + recordColumns + ` FROM records WHERE id = ?`)
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("record " + id)
		}
		return nil, errors.StoreError("failed to get record", err)
	}
	return &rec, nil
}

// List retrieves all records in sequence order
func (r *recordRepository) List(ctx context.Context) ([]*models.Record, error) {
	records := make([]*models.Record, 0)
	query := `SELECT ` + recordColumns + ` FROM records ORDER BY sequence ASC`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, errors.StoreError("failed to list records", err)
	}
	return records, nil
}

// Update applies a partial update and returns the stored record
func (r *recordRepository) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return r.Get(ctx, id)
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	for _, f := range fields {
		sets = append(sets, f.Column+" = ?")
		args = append(args, f.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now().UTC(), id)

	query := r.db.Rebind(`UPDATE records SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError("failed to update record", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.StoreError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return nil, errors.NotFound("record " + id)
	}

	return r.Get(ctx, id)
}

// Delete removes a record from the database
func (r *recordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM records WHERE id = ?`), id)
	if err != nil {
		return errors.StoreError("failed to delete record", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.StoreError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NotFound("record " + id)
	}

	return nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.StoreError("database unreachable", err)
	}
	return nil
}

func (r *recordRepository) Close() error {
	return r.db.Close()
}
