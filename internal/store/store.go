package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for cached response documents,
// watched files and driver metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
  key             TEXT PRIMARY KEY,
  dialect         TEXT NOT NULL,
  status          TEXT NOT NULL,
  body            BLOB NOT NULL,
  created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  dialect         TEXT NOT NULL,
  hash            TEXT NOT NULL,
  document_key    TEXT,
  status          TEXT NOT NULL,
  last_indexed    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_dialect ON documents(dialect);
CREATE INDEX IF NOT EXISTS idx_files_dialect ON files(dialect);
CREATE INDEX IF NOT EXISTS idx_files_document ON files(document_key);
`

// Stats summarizes the store's contents.
type Stats struct {
	Documents   int
	Files       int
	Bytes       int64
	Fingerprint string
}

// Stats counts documents and files and reports the stored fingerprint.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(LENGTH(body)), 0) FROM documents").Scan(&st.Documents, &st.Bytes)
	if err != nil {
		return st, fmt.Errorf("stats: documents: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM files").Scan(&st.Files); err != nil {
		return st, fmt.Errorf("stats: files: %w", err)
	}
	fp, _, err := s.GetMetadata(fingerprintKey)
	if err != nil {
		return st, err
	}
	st.Fingerprint = fp
	return st, nil
}
