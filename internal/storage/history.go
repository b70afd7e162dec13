// Package storage persists run history in SQLite and archives finished
// subtitle files locally and, optionally, to Google Drive.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline run.
type Run struct {
	JobID           string
	VideoPath       string
	OutputPath      string
	Language        string
	Model           string
	CueCount        int
	DurationSeconds float64
	Status          string
	Error           string
	CreatedAt       time.Time
}

// History records completed and failed runs in a SQLite database.
type History struct {
	db *sql.DB
}

// NewHistory opens (creating if needed) the history database.
func NewHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		video_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		language TEXT,
		model TEXT,
		cue_count INTEGER,
		duration_seconds REAL,
		status TEXT NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &History{db: db}, nil
}

// SaveRun records one finished run.
func (h *History) SaveRun(run Run) error {
	query := `
	INSERT INTO runs (job_id, video_path, output_path, language, model, cue_count, duration_seconds, status, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := h.db.Exec(query, run.JobID, run.VideoPath, run.OutputPath, run.Language,
		run.Model, run.CueCount, run.DurationSeconds, run.Status, run.Error, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %v", err)
	}
	return nil
}

// GetRun retrieves one run by job ID.
func (h *History) GetRun(jobID string) (*Run, error) {
	query := `
	SELECT job_id, video_path, output_path, language, model, cue_count, duration_seconds, status, error, created_at
	FROM runs WHERE job_id = ?
	`

	run, err := scanRun(h.db.QueryRow(query, jobID))
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %v", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (h *History) ListRuns(limit int) ([]Run, error) {
	query := `
	SELECT job_id, video_path, output_path, language, model, cue_count, duration_seconds, status, error, created_at
	FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
	`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %v", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			continue
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	err := s.Scan(&run.JobID, &run.VideoPath, &run.OutputPath, &run.Language, &run.Model,
		&run.CueCount, &run.DurationSeconds, &run.Status, &run.Error, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Close closes the database connection.
func (h *History) Close() error {
	return h.db.Close()
}
