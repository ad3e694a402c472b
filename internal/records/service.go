// Package records runs the upload, listing and mutation flows over a
// record repository and the upload archive.
package records

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"seqtrack/adapters/excel"
	"seqtrack/internal"
	"seqtrack/internal/errors"
	"seqtrack/internal/projectid"
	"seqtrack/internal/storage"
	"seqtrack/models"
	"seqtrack/ports"
)

// DefaultMaxUploadBytes caps an uploaded spreadsheet
const DefaultMaxUploadBytes = 50 * 1024 * 1024

// Service handles record uploads, listings and row callbacks
type Service struct {
	repo           ports.RecordRepository
	blobs          ports.BlobStore
	extractor      *excel.Extractor
	numbering      projectid.Numbering
	maxUploadBytes int64
	logger         *internal.Logger
	metrics        *Metrics
	notifier       Notifier
}

// Option customises a Service
type Option func(*Service)

// WithBlobStore archives every upload in blobs
func WithBlobStore(blobs ports.BlobStore) Option {
	return func(s *Service) { s.blobs = blobs }
}

func WithNumbering(n projectid.Numbering) Option {
	return func(s *Service) { s.numbering = n }
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func WithLogger(l *internal.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithExtractor(e *excel.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// NewService creates a record service over repo
func NewService(repo ports.RecordRepository, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		extractor:      excel.NewDefaultExtractor(),
		numbering:      projectid.NumberingStable,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Numbering returns the configured numbering mode
func (s *Service) Numbering() projectid.Numbering {
	return s.numbering
}

// MaxUploadBytes returns the upload size cap
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Extractor returns the extractor used for uploads
func (s *Service) Extractor() *excel.Extractor {
	return s.extractor
}

// Upload extracts one spreadsheet, archives it and stores the record.
// Nothing is written when extraction fails.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (rec *models.Record, err error) {
	defer func() { s.metrics.upload(err) }()

	upload, err := s.prepare(filename, r)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, upload)
}

// preparedUpload is an extracted spreadsheet that has not been written anywhere yet
type preparedUpload struct {
	filename string
	data     []byte
	record   *models.Record
}

func (s *Service) prepare(filename string, r io.Reader) (*preparedUpload, error) {
	if r == nil {
		return nil, errors.InvalidUpload("no file uploaded", nil)
	}
	if !excel.HasSupportedExtension(filename) {
		return nil, errors.InvalidUpload(fmt.Sprintf("unsupported file type %q", filepath.Ext(filename)), nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))
	if err != nil {
		return nil, errors.InvalidUpload("failed to read upload", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, errors.InvalidUpload(fmt.Sprintf("file exceeds %d bytes", s.maxUploadBytes), nil)
	}

	rec, err := s.extractor.ExtractBytes(data)
	if err != nil {
		s.logger.Warn("[Upload] extraction failed for %s: %v", filename, err)
		return nil, err
	}
	rec.SourceFile = filepath.Base(filename)

	return &preparedUpload{filename: filename, data: data, record: rec}, nil
}

func (s *Service) commit(ctx context.Context, upload *preparedUpload) (*models.Record, error) {
	rec := upload.record

	if s.blobs != nil {
		key := storage.ArchiveKey(models.NewID(), upload.filename)
		if err := s.blobs.Put(ctx, key, bytes.NewReader(upload.data), int64(len(upload.data))); err != nil {
			return nil, errors.WithCode(errors.CodeStoreError, err)
		}
		rec.ArchiveKey = key
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if rec.ArchiveKey != "" {
			if derr := s.blobs.Delete(ctx, rec.ArchiveKey); derr != nil {
				s.logger.Warn("[Upload] failed to remove archive %s: %v", rec.ArchiveKey, derr)
			}
		}
		s.logger.Error("[Upload] failed to store record from %s: %v", upload.filename, err)
		return nil, errors.WithCode(errors.CodeStoreError, err)
	}

	s.logger.Info("[Upload] stored record %s (sequence %d) from %s", rec.ID, rec.Sequence, rec.SourceFile)
	s.notify(EventCreated, rec.ID)
	return rec, nil
}

// List returns every stored record in sequence order
func (s *Service) List(ctx context.Context) ([]*models.Record, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.WithCode(errors.CodeStoreError, err)
	}
	return list, nil
}

// Rows expands every record into its display rows
func (s *Service) Rows(ctx context.Context) ([]models.DisplayRow, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := projectid.NewListing(s.numbering).AddAll(list).Rows()
	s.metrics.rows(len(rows))
	return rows, nil
}

// Toggle sets only the clicked flag of a record
func (s *Service) Toggle(ctx context.Context, id string, clicked bool) (rec *models.Record, err error) {
	defer func() { s.metrics.mutation("toggle", err) }()

	if id, err = models.ParseID(id); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	rec, err = s.repo.Update(ctx, id, models.RecordPatch{Clicked: &clicked})
	if err != nil {
		return nil, errors.WithCode(errors.CodeStoreError, err)
	}
	s.logger.Debug("[Records] record %s clicked=%t", id, clicked)
	s.notify(EventUpdated, id)
	return rec, nil
}

// Edit applies a partial update of the record's fields
func (s *Service) Edit(ctx context.Context, id string, patch models.RecordPatch) (rec *models.Record, err error) {
	defer func() { s.metrics.mutation("edit", err) }()

	if id, err = models.ParseID(id); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	if patch.IsEmpty() {
		return nil, errors.InvalidInput("no fields to update")
	}
	rec, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, errors.WithCode(errors.CodeStoreError, err)
	}
	s.logger.Info("[Records] record %s edited", id)
	s.notify(EventUpdated, id)
	return rec, nil
}

// Delete removes a record and its archived upload
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.mutation("delete", err) }()

	if id, err = models.ParseID(id); err != nil {
		return errors.InvalidInput(err.Error())
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return errors.WithCode(errors.CodeStoreError, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.WithCode(errors.CodeStoreError, err)
	}
	if rec.ArchiveKey != "" && s.blobs != nil {
		if derr := s.blobs.Delete(ctx, rec.ArchiveKey); derr != nil {
			s.logger.Warn("[Records] failed to remove archive %s: %v", rec.ArchiveKey, derr)
		}
	}
	s.logger.Info("[Records] record %s deleted", id)
	s.notify(EventDeleted, id)
	return nil
}

// Archive opens the original upload of a record
func (s *Service) Archive(ctx context.Context, id string) (io.ReadCloser, *models.Record, error) {
	id, err := models.ParseID(id)
	if err != nil {
		return nil, nil, errors.InvalidInput(err.Error())
	}
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, errors.WithCode(errors.CodeStoreError, err)
	}
	if rec.ArchiveKey == "" || s.blobs == nil {
		return nil, nil, errors.NotFound("archive for record " + id)
	}
	rc, err := s.blobs.Get(ctx, rec.ArchiveKey)
	if err != nil {
		return nil, nil, errors.WithCode(errors.CodeStoreError, err)
	}
	return rc, rec, nil
}

// Summary describes the current listing
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sum, err := Summarize(list)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarise records")
	}
	return sum, nil
}

// Ping checks the repository
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
