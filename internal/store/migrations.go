package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ayusman/hologram/internal/orbit"
)

const seededKey = "bodies_seeded"

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS bodies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			color TEXT NOT NULL DEFAULT '',
			distance REAL NOT NULL CHECK(distance >= 0),
			size REAL NOT NULL,
			speed REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			temperature TEXT NOT NULL DEFAULT '',
			gravity TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application flags as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bodies_position ON bodies(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// seed inserts the default bodies once. A catalog the user emptied on
// purpose stays empty.
func (s *Store) seed() error {
	return s.seedBodies(orbit.DefaultBodies())
}

// seedBodies writes bodies and the seeded marker in one transaction, so a
// failed seed leaves nothing behind and is retried on the next start.
func (s *Store) seedBodies(bodies []orbit.Body) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var value string
	err = tx.QueryRow(`SELECT value FROM settings WHERE key = ?`, seededKey).Scan(&value)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	repo := &BodyRepository{db: tx}
	for _, b := range bodies {
		if err := repo.Create(FromOrbit(b)); err != nil {
			return fmt.Errorf("seed %s: %w", b.Name, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, seededKey, "1"); err != nil {
		return err
	}
	return tx.Commit()
}
