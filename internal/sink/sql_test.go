package sink

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/sqlite"
)

func TestDialectBind(t *testing.T) {
	q := "INSERT INTO t (a, b, c) VALUES (?, ?, ?)"
	assert.Equal(t, "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)", DialectPostgres.bind(q))
	assert.Equal(t, q, DialectSQLite.bind(q))
}

func TestSQLSinkPublishPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewSQLSink("postgres", db, DialectPostgres, 2)
	r := testReport()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM wordfreq_entries WHERE run_id = \$1`).
		WithArgs("run-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM wordfreq_runs WHERE run_id = \$1`).
		WithArgs("run-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO wordfreq_runs`).
		WithArgs("run-1", "in.txt", "out.txt", int64(8), 5, r.StartedAt, int64(1500)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(`INSERT INTO wordfreq_entries \(run_id, seq, word, occurrences\) VALUES \(\$1, \$2, \$3, \$4\)`)
	prep.ExpectExec().WithArgs("run-1", 1, "This", int64(2)).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("run-1", 2, "is", int64(2)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Publish(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkPublishRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewSQLSink("postgres", db, DialectPostgres, 0)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM wordfreq_entries`).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	assert.Error(t, s.Publish(context.Background(), testReport()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewSQLSink("postgres", db, DialectPostgres, 0)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS wordfreq_runs .*TIMESTAMPTZ`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS wordfreq_entries`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSinkSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	s := NewSQLSink("sqlite", db, DialectSQLite, 0)
	defer s.Close()

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "schema creation is idempotent")

	// Publishing twice must not duplicate rows.
	require.NoError(t, s.Publish(ctx, testReport()))
	require.NoError(t, s.Publish(ctx, testReport()))

	var runs, tokens int64
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(total_tokens) FROM wordfreq_runs`).Scan(&runs, &tokens))
	assert.Equal(t, int64(1), runs)
	assert.Equal(t, int64(8), tokens)

	rows, err := db.QueryContext(ctx, `SELECT word, occurrences FROM wordfreq_entries WHERE run_id = ? ORDER BY seq`, "run-1")
	require.NoError(t, err)
	defer rows.Close()
	var words []string
	var counts []int64
	for rows.Next() {
		var w string
		var n int64
		require.NoError(t, rows.Scan(&w, &n))
		words = append(words, w)
		counts = append(counts, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"This", "is", "test", "a", "simple"}, words)
	assert.Equal(t, []int64{2, 2, 2, 1, 1}, counts)
}
