package store

import (
	"database/sql"
	"fmt"
)

// --- Document operations ---

func (s *Store) PutDocument(doc *Document) error {
	if err := putDocument(s.db, doc); err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// GetDocument returns the document stored under key, or nil when there is
// none.
func (s *Store) GetDocument(key string) (*Document, error) {
	d := &Document{}
	err := s.db.QueryRow(
		"SELECT key, dialect, status, body, created_at FROM documents WHERE key = ?", key,
	).Scan(&d.Key, &d.Dialect, &d.Status, &d.Body, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// DeleteDocuments removes every cached document and returns how many there
// were.
func (s *Store) DeleteDocuments() (int64, error) {
	res, err := s.db.Exec("DELETE FROM documents")
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return res.RowsAffected()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func putDocument(db execer, doc *Document) error {
	_, err := db.Exec(
		`INSERT INTO documents (key, dialect, status, body, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET dialect = excluded.dialect, status = excluded.status,
		   body = excluded.body, created_at = excluded.created_at`,
		doc.Key, doc.Dialect, doc.Status, doc.Body, doc.CreatedAt,
	)
	return err
}

// --- File operations ---

// UpsertFile records f by path and sets f.ID.
func (s *Store) UpsertFile(f *File) (int64, error) {
	id, err := upsertFile(s.db, f)
	if err != nil {
		return 0, fmt.Errorf("upsert file: %w", err)
	}
	return id, nil
}

func upsertFile(db interface {
	execer
	QueryRow(query string, args ...any) *sql.Row
}, f *File) (int64, error) {
	_, err := db.Exec(
		`INSERT INTO files (path, dialect, hash, document_key, status, last_indexed) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET dialect = excluded.dialect, hash = excluded.hash,
		   document_key = excluded.document_key, status = excluded.status, last_indexed = excluded.last_indexed`,
		f.Path, f.Dialect, f.Hash, f.DocumentKey, f.Status, f.LastIndexed,
	)
	if err != nil {
		return 0, err
	}
	if err := db.QueryRow("SELECT id FROM files WHERE path = ?", f.Path).Scan(&f.ID); err != nil {
		return 0, err
	}
	return f.ID, nil
}

func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	var docKey sql.NullString
	err := s.db.QueryRow(
		"SELECT id, path, dialect, hash, document_key, status, last_indexed FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Dialect, &f.Hash, &docKey, &f.Status, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	f.DocumentKey = docKey.String
	return f, nil
}

func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, path, dialect, hash, document_key, status, last_indexed FROM files ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		var docKey sql.NullString
		if err := rows.Scan(&f.ID, &f.Path, &f.Dialect, &f.Hash, &docKey, &f.Status, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.DocumentKey = docKey.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile forgets a watched file. Its document stays cached since other
// files may share the content.
func (s *Store) DeleteFile(path string) error {
	if _, err := s.db.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
