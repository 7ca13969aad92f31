// Package history keeps a local record of processed videos: one row per
// run and a short list of recently opened files.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MaxRecent is how many distinct videos the recent list keeps.
const MaxRecent = 10

//go:embed schema.sql
var schemaSQL string

type Store struct {
	*sql.DB
}

// Run is one processed video.
type Run struct {
	ID         string
	Video      string
	StartedAt  time.Time
	FinishedAt time.Time
	FPS        float64
	Frames     int
	Segments   int
	Clips      int
	Total      int
	Merged     string
	Cancelled  bool
	Error      string
}

// Recent is an entry of the recent videos list.
type Recent struct {
	Video    string
	OpenedAt time.Time
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; one connection also keeps a
	// :memory: database shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db}, nil
}

// RecordRun stores r, replacing any run with the same ID.
func (s *Store) RecordRun(r Run) error {
	query := `
		INSERT OR REPLACE INTO runs
			(id, video, started_at, finished_at, fps, frames, segments, clips, total, merged, cancelled, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.Exec(query,
		r.ID, r.Video, r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(),
		r.FPS, r.Frames, r.Segments, r.Clips, r.Total, r.Merged, r.Cancelled, r.Error)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Runs returns up to limit runs, most recent first. A limit <= 0 returns
// all of them.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, video, started_at, finished_at, fps, frames, segments, clips, total, merged, cancelled, error
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := s.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Video, &started, &finished, &r.FPS, &r.Frames,
			&r.Segments, &r.Clips, &r.Total, &r.Merged, &r.Cancelled, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Touch moves video to the top of the recent list and drops entries past
// MaxRecent.
func (s *Store) Touch(video string) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO recent_videos (video, seq, opened_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM recent_videos), ?)
		ON CONFLICT (video) DO UPDATE SET seq = excluded.seq, opened_at = excluded.opened_at
	`, video, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to update recent videos: %w", err)
	}

	_, err = tx.Exec(`
		DELETE FROM recent_videos
		WHERE video NOT IN (SELECT video FROM recent_videos ORDER BY seq DESC LIMIT ?)
	`, MaxRecent)
	if err != nil {
		return fmt.Errorf("failed to trim recent videos: %w", err)
	}

	return tx.Commit()
}

// Recent returns the recent videos list, most recent first.
func (s *Store) Recent() ([]Recent, error) {
	rows, err := s.Query(`SELECT video, opened_at FROM recent_videos ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent videos: %w", err)
	}
	defer rows.Close()

	var out []Recent
	for rows.Next() {
		var (
			r      Recent
			opened int64
		)
		if err := rows.Scan(&r.Video, &opened); err != nil {
			return nil, err
		}
		r.OpenedAt = time.UnixMilli(opened)
		out = append(out, r)
	}
	return out, rows.Err()
}
