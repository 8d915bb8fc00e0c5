package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var _ Recorder = (*Journal)(nil)

// Journal is an append-only log of item outcomes kept in SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and brings
// its schema up to date.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// One writer at a time; the run itself is sequential.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}

	version, err := upgradeSchema(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"version": version,
	}).Debug("History journal ready")

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, entry Entry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO downloads (
			run_id, action, feed_url, feed_title, guid, title,
			enclosure_url, target, outcome, error, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.Action, entry.FeedURL, entry.FeedTitle, entry.GUID, entry.Title,
		entry.EnclosureURL, entry.Target, string(entry.Outcome), entry.Error,
		recordedAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", entry.Outcome, entry.GUID, err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, run_id, action, feed_url, feed_title, guid, title,
			enclosure_url, target, outcome, error, recorded_at
		FROM downloads
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var outcome, recordedAt string

		err := rows.Scan(&entry.ID, &entry.RunID, &entry.Action, &entry.FeedURL, &entry.FeedTitle,
			&entry.GUID, &entry.Title, &entry.EnclosureURL, &entry.Target, &outcome, &entry.Error,
			&recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Outcome = Outcome(outcome)
		if entry.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("invalid recorded_at %q: %w", recordedAt, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}

// CountByOutcome totals the entries of one run by outcome.
func (j *Journal) CountByOutcome(ctx context.Context, runID string) (map[Outcome]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM downloads WHERE run_id = ? GROUP BY outcome
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	defer rows.Close()

	counts := make(map[Outcome]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan history count: %w", err)
		}
		counts[Outcome(outcome)] = count
	}

	return counts, rows.Err()
}
