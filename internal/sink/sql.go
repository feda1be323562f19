package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/postgres"
)

// Dialect selects placeholder and column-type syntax.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// bind rewrites ? placeholders into $n for Postgres.
func (d Dialect) bind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) schema() []string {
	ts := "TIMESTAMPTZ"
	if d == DialectSQLite {
		ts = "TIMESTAMP"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS wordfreq_runs (
			run_id         TEXT PRIMARY KEY,
			input_path     TEXT NOT NULL,
			output_path    TEXT NOT NULL,
			total_tokens   BIGINT NOT NULL,
			distinct_words BIGINT NOT NULL,
			started_at     ` + ts + ` NOT NULL,
			duration_ms    BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wordfreq_entries (
			run_id      TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			word        TEXT NOT NULL,
			occurrences BIGINT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
	}
}

// SQLSink archives reports in a relational database: one wordfreq_runs row
// per run and one wordfreq_entries row per word, in report order.
type SQLSink struct {
	name       string
	db         *sql.DB
	dialect    Dialect
	maxEntries int
}

func NewSQLSink(name string, db *sql.DB, dialect Dialect, maxEntries int) *SQLSink {
	return &SQLSink{name: name, db: db, dialect: dialect, maxEntries: maxEntries}
}

func (s *SQLSink) Name() string { return s.name }

// EnsureSchema creates the archive tables if they do not exist.
func (s *SQLSink) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Publish replaces any rows already stored for the run, so retrying a
// publish is safe.
func (s *SQLSink) Publish(ctx context.Context, r *Report) error {
	entries := report.Top(r.Entries, s.maxEntries)
	return postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.bind(`DELETE FROM wordfreq_entries WHERE run_id = ?`), r.RunID); err != nil {
			return fmt.Errorf("clearing entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.dialect.bind(`DELETE FROM wordfreq_runs WHERE run_id = ?`), r.RunID); err != nil {
			return fmt.Errorf("clearing run: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			s.dialect.bind(`INSERT INTO wordfreq_runs
				(run_id, input_path, output_path, total_tokens, distinct_words, started_at, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
			r.RunID, r.Input, r.Output, r.TotalTokens, len(r.Entries), r.StartedAt.UTC(), r.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.dialect.bind(
			`INSERT INTO wordfreq_entries (run_id, seq, word, occurrences) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("preparing entry insert: %w", err)
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, r.RunID, i+1, e.Word, e.Count); err != nil {
				return fmt.Errorf("inserting entry %q: %w", e.Word, err)
			}
		}
		return nil
	})
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
