package store

import "sync"

// BatchedStore buffers document and file writes in memory so a burst of
// changes commits in one transaction. Reads of documents check the buffer
// first and fall through to the underlying Store.
//
// Thread safety: the mutex protects the buffers. Reads that fall through
// go to the Store, which is safe for concurrent use.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	Documents []Document
	Files     []File

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by s for reads.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) PutDocument(doc *Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Documents = append(b.Documents, *doc)
	return nil
}

// UpsertFile buffers f and assigns it a fake (negative) ID until commit.
func (b *BatchedStore) UpsertFile(f *File) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f.ID = b.nextFakeID
	b.nextFakeID--
	b.Files = append(b.Files, *f)
	return f.ID, nil
}

func (b *BatchedStore) GetDocument(key string) (*Document, error) {
	b.mu.Lock()
	for i := len(b.Documents) - 1; i >= 0; i-- {
		if b.Documents[i].Key == key {
			d := b.Documents[i]
			b.mu.Unlock()
			return &d, nil
		}
	}
	b.mu.Unlock()
	return b.store.GetDocument(key)
}

// Len reports how many writes are buffered.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Documents) + len(b.Files)
}
