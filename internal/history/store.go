package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store records play history in SQLite and answers completion statistics
type Store struct {
	db *sql.DB
}

// Record is one play of a track. CompletedAt is zero for plays that were
// interrupted or skipped before reaching natural completion.
type Record struct {
	ID          int64
	Filename    string
	StartedAt   time.Time
	Duration    time.Duration
	Listened    bool
	CompletedAt time.Time
}

// Completed reports whether the play reached natural completion
func (r Record) Completed() bool {
	return !r.CompletedAt.IsZero()
}

// Stats summarizes play history
type Stats struct {
	Total     int
	Completed int
	Rate      float64
}

// NewStore opens (creating if needed) the play history database
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			listened BOOLEAN NOT NULL DEFAULT 0,
			completed_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_plays_open ON plays(filename, completed_at);
		CREATE INDEX IF NOT EXISTS idx_plays_started ON plays(started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordStart creates an open play record for filename. If an open record
// for the same filename already exists its start timestamp is updated
// instead of inserting a duplicate.
func (s *Store) RecordStart(ctx context.Context, filename string, duration time.Duration) (int64, error) {
	now := time.Now().Unix()

	id, err := s.openRecordID(ctx, filename)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		_, err := s.db.ExecContext(ctx,
			"UPDATE plays SET started_at = ?, duration = ? WHERE id = ?",
			now, int64(duration.Seconds()), id)
		if err != nil {
			return 0, fmt.Errorf("failed to refresh open play record: %w", err)
		}
		return id, nil
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO plays (filename, started_at, duration) VALUES (?, ?, ?)",
		filename, now, int64(duration.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("failed to insert play record: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	return newID, nil
}

// MarkListened flags the open play record for filename as meaningfully
// listened. No-op if there is no open record.
func (s *Store) MarkListened(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE plays SET listened = 1 WHERE filename = ? AND completed_at IS NULL",
		filename)
	if err != nil {
		return fmt.Errorf("failed to mark play as listened: %w", err)
	}
	return nil
}

// RecordCompletion stamps the open play record for filename with a
// completion time. No-op if there is no open record.
func (s *Store) RecordCompletion(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE plays SET completed_at = ? WHERE filename = ? AND completed_at IS NULL",
		time.Now().Unix(), filename)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

// CompletionStats returns overall play counts and the completion rate
func (s *Store) CompletionStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(completed_at)
		FROM plays
	`).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}

	if stats.Total > 0 {
		stats.Rate = float64(stats.Completed) / float64(stats.Total)
	}
	return stats, nil
}

// Recent returns the most recent play records, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, filename, started_at, duration, listened, COALESCE(completed_at, 0)
		FROM plays
		ORDER BY started_at DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plays: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var startedUnix, durationSecs, completedUnix int64

		if err := rows.Scan(&r.ID, &r.Filename, &startedUnix, &durationSecs, &r.Listened, &completedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan play record: %w", err)
		}

		r.StartedAt = time.Unix(startedUnix, 0)
		r.Duration = time.Duration(durationSecs) * time.Second
		if completedUnix != 0 {
			r.CompletedAt = time.Unix(completedUnix, 0)
		}

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating play records: %w", err)
	}

	return records, nil
}

// openRecordID returns the id of the open (uncompleted) record for
// filename, or 0 if none exists
func (s *Store) openRecordID(ctx context.Context, filename string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM plays
		WHERE filename = ? AND completed_at IS NULL
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, filename).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up open play record: %w", err)
	}
	return id, nil
}
