// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a record of past conversions in a local
// SQLite database. Recording is best-effort: a conversion never fails
// because its history row could not be written.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "history.db"

// Status of a recorded conversion.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Record is one finished (or failed) conversion job.
type Record struct {
	ID            int64
	Input         string
	Output        string
	Pages         int
	TextlessPages int
	TOCEntries    int
	Status        string
	FailedStage   string
	Detail        string
	Duration      time.Duration
	StartedAt     time.Time
}

// Store manages the conversion history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dir/history.db,
// creating the schema when it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		pages INTEGER NOT NULL,
		textless_pages INTEGER NOT NULL,
		toc_entries INTEGER NOT NULL,
		status TEXT NOT NULL,
		failed_stage TEXT,
		detail TEXT,
		duration_ms INTEGER NOT NULL,
		started_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Add inserts one record.
func (s *Store) Add(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions
			(input, output, pages, textless_pages, toc_entries, status, failed_stage, detail, duration_ms, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Input, rec.Output, rec.Pages, rec.TextlessPages, rec.TOCEntries,
		rec.Status, rec.FailedStage, rec.Detail,
		rec.Duration.Milliseconds(), rec.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, output, pages, textless_pages, toc_entries, status, failed_stage, detail, duration_ms, started_at
		 FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var durationMS int64
		var startedAt string
		if err := rows.Scan(
			&rec.ID, &rec.Input, &rec.Output, &rec.Pages, &rec.TextlessPages,
			&rec.TOCEntries, &rec.Status, &rec.FailedStage, &rec.Detail,
			&durationMS, &startedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning conversion record: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			rec.StartedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
