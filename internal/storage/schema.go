package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createSnapshotsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}
		db.logger.Debug("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations brings an existing database to currentSchemaVersion. A
// database newer than this binary is rejected.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	switch {
	case version == currentSchemaVersion:
		return nil
	case version == 0:
		// Created but never initialized, e.g. an interrupted first run.
		return db.initializeSchema()
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations", "from_version", version, "to_version", currentSchemaVersion)
	return db.WithTx(func(tx *sql.Tx) error {
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createSnapshotsTable creates the snapshots table. data holds the
// zstd-compressed canonical JSON; fingerprint is its BLAKE2b-256 hex digest.
func createSnapshotsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			functions INTEGER NOT NULL,
			enums INTEGER NOT NULL,
			globals INTEGER NOT NULL,
			data BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at)`); err != nil {
		return fmt.Errorf("failed to create snapshots index: %w", err)
	}
	return nil
}
