// Package runlog journals pipeline run outcomes to sqlite. It records
// how runs went, never the fetched data itself.
package runlog

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) (Store, error) {
	_, err := database.Exec(Schema)
	if err != nil {
		return Store{}, err
	}
	return Store{db: database}, nil
}

// Run is one journal row. Stage is the stage the run ended in ("done"
// on success), ErrorKind is empty on success.
type Run struct {
	Source    string
	Sink      string
	Stage     string
	ErrorKind string
	Bytes     int64
	Duration  time.Duration
	StartedAt time.Time
}

func (s Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs
		    (source, sink, stage, error_kind, bytes, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Source,
		run.Sink,
		run.Stage,
		run.ErrorKind,
		run.Bytes,
		run.Duration.Milliseconds(),
		run.StartedAt.Unix(),
	)
	return err
}

// Recent returns up to limit runs, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT source, sink, stage, error_kind, bytes, duration_ms, started_at
		 FROM pipeline_runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var durationMs int64
		var startedAt int64
		err := rows.Scan(
			&run.Source,
			&run.Sink,
			&run.Stage,
			&run.ErrorKind,
			&run.Bytes,
			&durationMs,
			&startedAt,
		)
		if err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.StartedAt = time.Unix(startedAt, 0)
		out = append(out, run)
	}
	return out, rows.Err()
}
