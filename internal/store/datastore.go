package store

// DataStore is the write side the watcher uses. Both Store (direct SQLite)
// and BatchedStore (in-memory buffering until a debounce window closes)
// implement it.
type DataStore interface {
	PutDocument(doc *Document) error
	UpsertFile(f *File) (int64, error)
	GetDocument(key string) (*Document, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
