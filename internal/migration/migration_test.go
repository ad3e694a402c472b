package migration

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRun_SQLiteIsRepeatable(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	runner := NewRunner()
	require.NoError(t, runner.Run(context.Background(), db))
	require.NoError(t, runner.Run(context.Background(), db))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM records"))
	assert.Zero(t, count)

	_, err = db.Exec(`INSERT INTO records (id, sequence, created_at, updated_at) VALUES ('a', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO records (id, sequence, created_at, updated_at) VALUES ('b', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	assert.Error(t, err, "sequence must be unique")
}

func TestRun_SeedsCounterFromExistingRecords(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	runner := NewRunner()
	require.NoError(t, runner.createRecordsTable(context.Background(), db))
	_, err = db.Exec(`INSERT INTO records (id, sequence, created_at, updated_at) VALUES ('a', 9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), db))
	require.NoError(t, runner.Run(context.Background(), db))

	var value int64
	require.NoError(t, db.Get(&value, "SELECT value FROM record_counters WHERE name = 'records'"))
	assert.Equal(t, int64(9), value)
}

func TestRun_PostgresUsesTimezoneColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectExec(regexp.QuoteMeta("created_at TIMESTAMP WITH TIME ZONE NOT NULL")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("idx_records_sequencing_id").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("idx_records_created_at").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS record_counters").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO record_counters").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRunner().Run(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_WrapsFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)

	err = NewRunner().Run(context.Background(), sqlx.NewDb(mockDB, "postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create records table")
}
