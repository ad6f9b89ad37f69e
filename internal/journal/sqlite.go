package journal

import (
	"context"
	"database/sql"
	"fmt"

	"logtidy/internal/journal/migrations"
	"logtidy/internal/logtidy"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements the Journal interface using SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens the journal at path and brings its schema up to date.
// path can be a file path or ":memory:" for an in-memory journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing journal %s: %w", path, err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: PRAGMAs are per connection and every ":memory:"
	// connection is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// RecordRun stores a run and its deletions in one transaction.
func (j *SQLiteJournal) RecordRun(run *logtidy.RunRecord) error {
	ctx := context.Background()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, location, started_at, finished_at, status, error,
			reclaimed_bytes, archives_reclaimed, files_archived, files_skipped,
			archives_created, archives_merged, archives_expired
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Location, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status, run.Error,
		run.ReclaimedBytes, run.ArchivesReclaimed, run.FilesArchived, run.FilesSkipped,
		run.ArchivesCreated, run.ArchivesMerged, run.ArchivesExpired,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, d := range run.Deletions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_deletions (run_id, path, reason) VALUES (?, ?, ?)`,
			run.ID, d.Path, string(d.Reason),
		)
		if err != nil {
			return fmt.Errorf("inserting deletion %s: %w", d.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (j *SQLiteJournal) RecentRuns(limit int) ([]*logtidy.RunRecord, error) {
	rows, err := j.db.QueryContext(context.Background(), `
		SELECT id, location, started_at, finished_at, status, error,
			reclaimed_bytes, archives_reclaimed, files_archived, files_skipped,
			archives_created, archives_merged, archives_expired
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*logtidy.RunRecord
	for rows.Next() {
		r := &logtidy.RunRecord{}
		err := rows.Scan(
			&r.ID, &r.Location, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Error,
			&r.ReclaimedBytes, &r.ArchivesReclaimed, &r.FilesArchived, &r.FilesSkipped,
			&r.ArchivesCreated, &r.ArchivesMerged, &r.ArchivesExpired,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return runs, nil
}

// DeletionsForRun returns the deletions recorded for a run in insertion order.
func (j *SQLiteJournal) DeletionsForRun(runID string) ([]logtidy.Deletion, error) {
	rows, err := j.db.QueryContext(context.Background(),
		`SELECT path, reason FROM run_deletions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying deletions: %w", err)
	}
	defer rows.Close()

	var deletions []logtidy.Deletion
	for rows.Next() {
		var d logtidy.Deletion
		var reason string
		if err := rows.Scan(&d.Path, &reason); err != nil {
			return nil, fmt.Errorf("scanning deletion: %w", err)
		}
		d.Reason = logtidy.DeletionReason(reason)
		deletions = append(deletions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading deletions: %w", err)
	}
	return deletions, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// Compile-time check that SQLiteJournal implements logtidy.Journal interface
var _ logtidy.Journal = (*SQLiteJournal)(nil)
