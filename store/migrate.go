package store

import (
	"database/sql"
	_ "embed"

	"github.com/rotisserie/eris"
)

//go:embed migrations/001_initial_schema.sql
var migration001 string

// runMigrations applies the pending schema migrations of the sqlite driver.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return eris.Wrap(err, "failed to create schema_migrations table")
	}

	migrations := []struct {
		sql     string
		version int
	}{
		{version: 1, sql: migration001},
	}

	for _, m := range migrations {
		var count int

		err := db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?",
			m.version,
		).Scan(&count)
		if err != nil {
			return eris.Wrapf(err, "failed to check migration %d", m.version)
		}

		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return eris.Wrapf(err, "failed to begin transaction for migration %d", m.version)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return eris.Wrapf(err, "failed to execute migration %d", m.version)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return eris.Wrapf(err, "failed to record migration %d", m.version)
		}

		if err := tx.Commit(); err != nil {
			return eris.Wrapf(err, "failed to commit migration %d", m.version)
		}
	}

	return nil
}
