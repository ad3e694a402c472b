package sqlstore

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqtrack/internal/errors"
	"seqtrack/internal/migration"
	"seqtrack/models"
	"seqtrack/ports"
)

func newSQLiteRepo(t *testing.T) ports.RecordRepository {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	repo := NewRecordRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newMockRepo(t *testing.T) (ports.RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRecordRepository(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestRecordRepository_CreateAssignsSequence(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	first := &models.Record{CustomerName: "Jane Doe", SequencingID: "SEQ1", Date: "2023-10-05"}
	second := &models.Record{CustomerName: "John Smith", SequencingID: "SEQ2"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.CustomerName)
	assert.Equal(t, "2023-10-05", got.Date)
	assert.False(t, got.Clicked)
}

func TestRecordRepository_SequenceSurvivesDelete(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	recs := make([]*models.Record, 3)
	for i := range recs {
		recs[i] = &models.Record{SequencingID: "S"}
		require.NoError(t, repo.Create(ctx, recs[i]))
	}

	require.NoError(t, repo.Delete(ctx, recs[0].ID))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].Sequence)
	assert.Equal(t, int64(3), list[1].Sequence)

	next := &models.Record{SequencingID: "S"}
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, int64(4), next.Sequence)
}

func TestRecordRepository_DeletedLastSequenceNotReissued(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	recs := make([]*models.Record, 3)
	for i := range recs {
		recs[i] = &models.Record{SequencingID: "S"}
		require.NoError(t, repo.Create(ctx, recs[i]))
	}
	require.Equal(t, int64(3), recs[2].Sequence)

	require.NoError(t, repo.Delete(ctx, recs[2].ID))

	next := &models.Record{SequencingID: "S"}
	require.NoError(t, repo.Create(ctx, next))
	assert.Equal(t, int64(4), next.Sequence)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 2, 4}, []int64{list[0].Sequence, list[1].Sequence, list[2].Sequence})
}

func TestRecordRepository_Postgres_CreateUsesCounter(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE record_counters SET value = value + 1 WHERE name = 'records' RETURNING value")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3")).
		WithArgs("r1", int64(7), "Jane Doe", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := &models.Record{ID: "r1", CustomerName: "Jane Doe"}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, int64(7), rec.Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListEmpty(t *testing.T) {
	repo := newSQLiteRepo(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRecordRepository_Update(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	rec := &models.Record{CustomerName: "Jane Doe", RunType: "single"}
	require.NoError(t, repo.Create(ctx, rec))

	clicked := true
	runType := "paired"
	updated, err := repo.Update(ctx, rec.ID, models.RecordPatch{Clicked: &clicked, RunType: &runType})
	require.NoError(t, err)

	assert.True(t, updated.Clicked)
	assert.Equal(t, "paired", updated.RunType)
	assert.Equal(t, "Jane Doe", updated.CustomerName)
	assert.Equal(t, rec.Sequence, updated.Sequence)
}

func TestRecordRepository_NotFound(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	clicked := true

	_, err := repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = repo.Update(ctx, "missing", models.RecordPatch{Clicked: &clicked})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	err = repo.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestRecordRepository_DeleteTwice(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	rec := &models.Record{}
	require.NoError(t, repo.Create(ctx, rec))
	require.NoError(t, repo.Delete(ctx, rec.ID))

	err := repo.Delete(ctx, rec.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestRecordRepository_Postgres_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE record_counters SET value = value + 1")).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(4)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO records")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Record{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStoreError))
	assert.Contains(t, err.Error(), "sequence already taken")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Postgres_Placeholders(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM records WHERE id = $1")).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Postgres_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	clicked := true

	mock.ExpectExec(regexp.QuoteMeta("UPDATE records SET clicked = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(true, sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), "gone", models.RecordPatch{Clicked: &clicked})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Postgres_ListFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM records ORDER BY sequence ASC`).
		WillReturnError(assert.AnError)

	_, err := repo.List(context.Background())
	assert.True(t, errors.Is(err, errors.CodeStoreError))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
