// Package history records sessions and their matches in a SQLite database.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
	path string
}

// SessionRecord is one stored session.
type SessionRecord struct {
	ID         int64         `yaml:"id"               json:"id"`
	Profile    string        `yaml:"profile"          json:"profile"`
	Alias      string        `yaml:"alias,omitempty"  json:"alias,omitempty"`
	Window     string        `yaml:"window,omitempty" json:"window,omitempty"`
	StartedAt  time.Time     `yaml:"started_at"       json:"started_at"`
	Duration   time.Duration `yaml:"duration"         json:"duration"`
	Iterations int           `yaml:"iterations"       json:"iterations"`
	Found      int           `yaml:"found"            json:"found"`
	Near       int           `yaml:"near"             json:"near"`
	Clicks     int           `yaml:"clicks"           json:"clicks"`
	Error      string        `yaml:"error,omitempty"  json:"error,omitempty"`
	Finished   bool          `yaml:"finished"         json:"finished"`
}

// EventRecord is one found or near match within a session.
type EventRecord struct {
	SessionID int64     `yaml:"session_id"      json:"session_id"`
	At        time.Time `yaml:"at"              json:"at"`
	Iteration int       `yaml:"iteration"       json:"iteration"`
	Template  string    `yaml:"template"        json:"template"`
	Decision  string    `yaml:"decision"        json:"decision"`
	Score     float64   `yaml:"score"           json:"score"`
	X         int       `yaml:"x"               json:"x"`
	Y         int       `yaml:"y"               json:"y"`
	Clicked   bool      `yaml:"clicked"         json:"clicked"`
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// StartSession inserts a new unfinished session and returns its ID.
func (s *Store) StartSession(profile, alias, window string, startedAt time.Time) (int64, error) {
	res, err := s.conn.Exec(`
		INSERT INTO sessions (profile, alias, window_title, started_at)
		VALUES (?, ?, ?, ?)
	`, profile, alias, window, startedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	return res.LastInsertId()
}

// FinishSession stores the final counters of a session.
func (s *Store) FinishSession(id int64, rec SessionRecord) error {
	_, err := s.conn.Exec(`
		UPDATE sessions
		SET duration_ms = ?,
		    iterations = ?,
		    found = ?,
		    near = ?,
		    clicks = ?,
		    error = ?,
		    finished = 1
		WHERE id = ?
	`, rec.Duration.Milliseconds(), rec.Iterations, rec.Found, rec.Near, rec.Clicks, rec.Error, id)
	if err != nil {
		return fmt.Errorf("failed to finish session %d: %w", id, err)
	}
	return nil
}

// AddEvent stores one match event.
func (s *Store) AddEvent(ev EventRecord) error {
	_, err := s.conn.Exec(`
		INSERT INTO events (session_id, at, iteration, template, decision, score, x, y, clicked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.SessionID, ev.At.UnixMilli(), ev.Iteration, ev.Template, ev.Decision, ev.Score, ev.X, ev.Y, ev.Clicked)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first. An empty
// profile matches every profile.
func (s *Store) RecentSessions(profile string, limit int) ([]SessionRecord, error) {
	rows, err := s.conn.Query(`
		SELECT id, profile, alias, window_title, started_at, duration_ms,
		       iterations, found, near, clicks, error, finished
		FROM sessions
		WHERE ? = '' OR profile = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, profile, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			r          SessionRecord
			started    int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Profile, &r.Alias, &r.Window, &started, &durationMS,
			&r.Iterations, &r.Found, &r.Near, &r.Clicks, &r.Error, &r.Finished); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Session returns one session by ID.
func (s *Store) Session(id int64) (SessionRecord, error) {
	var (
		r          SessionRecord
		started    int64
		durationMS int64
	)
	err := s.conn.QueryRow(`
		SELECT id, profile, alias, window_title, started_at, duration_ms,
		       iterations, found, near, clicks, error, finished
		FROM sessions
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Profile, &r.Alias, &r.Window, &started, &durationMS,
		&r.Iterations, &r.Found, &r.Near, &r.Clicks, &r.Error, &r.Finished)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("session %d not found", id)
	}
	if err != nil {
		return r, fmt.Errorf("failed to get session %d: %w", id, err)
	}
	r.StartedAt = time.UnixMilli(started)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}

// Events returns the events of a session in insertion order.
func (s *Store) Events(sessionID int64) ([]EventRecord, error) {
	rows, err := s.conn.Query(`
		SELECT session_id, at, iteration, template, decision, score, x, y, clicked
		FROM events
		WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			ev EventRecord
			at int64
		)
		if err := rows.Scan(&ev.SessionID, &at, &ev.Iteration, &ev.Template, &ev.Decision,
			&ev.Score, &ev.X, &ev.Y, &ev.Clicked); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.At = time.UnixMilli(at)
		out = append(out, ev)
	}
	return out, rows.Err()
}
