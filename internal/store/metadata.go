package store

import (
	"database/sql"
	"fmt"
)

const fingerprintKey = "fingerprint"

// GetMetadata returns the value stored under key and whether it exists.
func (s *Store) GetMetadata(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get metadata %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// SyncFingerprint drops every cached document when fp differs from the
// fingerprint they were produced under, then records fp. It reports whether
// documents were invalidated.
func (s *Store) SyncFingerprint(fp string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("sync fingerprint: begin: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRow("SELECT value FROM metadata WHERE key = ?", fingerprintKey).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return false, fmt.Errorf("sync fingerprint: read: %w", err)
	case stored == fp:
		return false, nil
	}

	res, err := tx.Exec("DELETE FROM documents")
	if err != nil {
		return false, fmt.Errorf("sync fingerprint: clear: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		fingerprintKey, fp,
	); err != nil {
		return false, fmt.Errorf("sync fingerprint: write: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sync fingerprint: commit: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
