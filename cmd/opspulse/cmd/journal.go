package cmd

import (
	"context"
	"log/slog"
	"opspulse/lib/pipeline"
	"opspulse/lib/runlog"
	"time"
)

// journalRun appends the run outcome to the configured runlog
// database. Journalling is best-effort: a failure here never changes
// the command's exit code.
func journalRun(ctx context.Context, start time.Time, source, sink string, rec pipeline.Record, runErr error) {
	if !config.Runlog.Enabled() {
		return
	}

	db, err := config.Runlog.OpenDB()
	if err != nil {
		slog.Warn("failed to open runlog database", "err", err)
		return
	}
	defer db.Close()

	store, err := runlog.NewStore(db)
	if err != nil {
		slog.Warn("failed to init runlog store", "err", err)
		return
	}
	err = store.Record(ctx, runlog.Run{
		Source:    source,
		Sink:      sink,
		Stage:     string(pipeline.StageOf(runErr)),
		ErrorKind: string(pipeline.KindOf(runErr)),
		Bytes:     rec.Bytes,
		Duration:  time.Since(start),
		StartedAt: start,
	})
	if err != nil {
		slog.Warn("failed to journal run", "err", err)
	}
}
