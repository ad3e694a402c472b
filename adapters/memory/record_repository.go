package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"seqtrack/internal/errors"
	"seqtrack/internal/projectid"
	"seqtrack/models"
	"seqtrack/ports"
)

// RecordRepository implements ports.RecordRepository with in-memory storage.
// Records are copied on the way in and out.
type RecordRepository struct {
	records map[string]models.Record
	seq     *projectid.Sequencer
	now     func() time.Time
	mu      sync.RWMutex
}

var _ ports.RecordRepository = (*RecordRepository)(nil)

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{
		records: make(map[string]models.Record),
		seq:     projectid.NewSequencer(0),
		now:     time.Now,
	}
}

func (s *RecordRepository) Create(ctx context.Context, rec *models.Record) error {
	if rec.ID == "" {
		rec.ID = models.NewID()
	}
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return errors.StoreError("record "+rec.ID+" already exists", nil)
	}
	rec.Sequence = s.seq.Next()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = *rec
	return nil
}

func (s *RecordRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("record " + id)
	}
	return &rec, nil
}

func (s *RecordRepository) List(ctx context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.Record, 0, len(s.records))
	for _, rec := range s.records {
		rec := rec
		list = append(list, &rec)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Sequence < list[j].Sequence })
	return list, nil
}

func (s *RecordRepository) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("record " + id)
	}
	if !patch.IsEmpty() {
		patch.Apply(&rec)
		rec.UpdatedAt = s.now().UTC()
		s.records[id] = rec
	}
	return &rec, nil
}

func (s *RecordRepository) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.NotFound("record " + id)
	}
	delete(s.records, id)
	return nil
}

func (s *RecordRepository) Ping(ctx context.Context) error { return nil }

func (s *RecordRepository) Close() error { return nil }
