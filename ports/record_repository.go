package ports

import (
	"context"
	"io"

	"seqtrack/models"
)

// RecordRepository defines the interface for record storage operations
type RecordRepository interface {
	// Create assigns ID, Sequence and timestamps, then stores the record
	Create(ctx context.Context, rec *models.Record) error
	Get(ctx context.Context, id string) (*models.Record, error)
	// List returns every record ordered by Sequence ascending
	List(ctx context.Context) ([]*models.Record, error)
	Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error)
	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}

// BlobStore keeps the original uploaded spreadsheets
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
