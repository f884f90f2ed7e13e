package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migration struct {
	version     int
	description string
	up          string
}

var migrations = []migration{
	{
		version:     1,
		description: "create sessions table",
		up: `
			CREATE TABLE sessions (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				profile     TEXT    NOT NULL,
				alias       TEXT    NOT NULL DEFAULT '',
				window_title TEXT   NOT NULL DEFAULT '',
				started_at  INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				iterations  INTEGER NOT NULL DEFAULT 0,
				found       INTEGER NOT NULL DEFAULT 0,
				near        INTEGER NOT NULL DEFAULT 0,
				clicks      INTEGER NOT NULL DEFAULT 0,
				error       TEXT    NOT NULL DEFAULT '',
				finished    INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX idx_sessions_profile ON sessions(profile, started_at);
		`,
	},
	{
		version:     2,
		description: "create events table",
		up: `
			CREATE TABLE events (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				at         INTEGER NOT NULL,
				iteration  INTEGER NOT NULL,
				template   TEXT    NOT NULL,
				decision   TEXT    NOT NULL,
				score      REAL    NOT NULL,
				x          INTEGER NOT NULL,
				y          INTEGER NOT NULL,
				clicked    INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX idx_events_session ON events(session_id);
		`,
	},
}

// Version returns the highest applied schema version.
func (s *Store) Version() (int, error) {
	var version int
	err := s.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}
	current, err := s.Version()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return err
		}
		slog.Debug("applied history migration", "version", m.version, "description", m.description)
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	if err := func(tx *sql.Tx) error {
		if _, err := tx.Exec(m.up); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`, m.version, time.Now().UnixMilli())
		return err
	}(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("migration %d: %v, rollback error: %w", m.version, err, rbErr)
		}
		return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
	}
	return tx.Commit()
}
