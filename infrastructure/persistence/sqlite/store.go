// Package sqlite persists full-store snapshots in a SQLite database.
package sqlite

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"skilltree-backend/application/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS skills (
	seq        INTEGER PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	parent_id  TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	seq      INTEGER PRIMARY KEY,
	id       TEXT NOT NULL UNIQUE,
	skill_id TEXT NOT NULL,
	name     TEXT NOT NULL,
	unit     TEXT,
	value    REAL NOT NULL,
	target   REAL
);

CREATE INDEX IF NOT EXISTS idx_skills_parent ON skills(parent_id);
CREATE INDEX IF NOT EXISTS idx_counters_skill ON counters(skill_id);
`

// Store is a SQLite-backed snapshot store. Every persist replaces the full
// table contents inside one transaction; row order (seq) preserves the
// snapshot's insertion order across restarts.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the snapshot database at the given path
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create schema")
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Persist replaces the stored snapshot with the given one
func (s *Store) Persist(ctx context.Context, snap ports.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM counters`); err != nil {
		return errors.Wrap(err, "failed to clear counters")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM skills`); err != nil {
		return errors.Wrap(err, "failed to clear skills")
	}

	for i, rec := range snap.Skills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skills (seq, id, name, parent_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, rec.ID, rec.Name, rec.ParentID, rec.CreatedAt, rec.UpdatedAt,
		); err != nil {
			return errors.Wrapf(err, "failed to insert skill %s", rec.ID)
		}
	}
	for i, rec := range snap.Counters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO counters (seq, id, skill_id, name, unit, value, target)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i+1, rec.ID, rec.SkillID, rec.Name, rec.Unit, rec.Value, rec.Target,
		); err != nil {
			return errors.Wrapf(err, "failed to insert counter %s", rec.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit snapshot")
	}
	return nil
}

// Load reads the stored snapshot in insertion order
func (s *Store) Load(ctx context.Context) (ports.Snapshot, error) {
	var snap ports.Snapshot

	if err := s.db.SelectContext(ctx, &snap.Skills,
		`SELECT id, name, parent_id, created_at, updated_at FROM skills ORDER BY seq`,
	); err != nil {
		return ports.Snapshot{}, errors.Wrap(err, "failed to load skills")
	}
	if err := s.db.SelectContext(ctx, &snap.Counters,
		`SELECT id, skill_id, name, unit, value, target FROM counters ORDER BY seq`,
	); err != nil {
		return ports.Snapshot{}, errors.Wrap(err, "failed to load counters")
	}
	return snap, nil
}
