package store

import "fmt"

// CommitBatch writes everything buffered in batch within a single
// transaction. Documents go first so a file never points at a document that
// is not stored yet. Later writes to the same key or path win.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for i := range batch.Documents {
		doc := &batch.Documents[i]
		if err := putDocument(tx, doc); err != nil {
			return fmt.Errorf("commit batch: document %s: %w", shortKey(doc.Key), err)
		}
	}
	for i := range batch.Files {
		f := &batch.Files[i]
		if _, err := upsertFile(tx, f); err != nil {
			return fmt.Errorf("commit batch: file %q: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	batch.Documents = nil
	batch.Files = nil
	return nil
}
