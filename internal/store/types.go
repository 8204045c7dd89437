package store

import "time"

// Document is one cached response, keyed by the hash of the request content
// and everything else that shapes the response.
type Document struct {
	Key       string
	Dialect   string
	Status    string
	Body      []byte
	CreatedAt time.Time
}

// File is a source file the watcher has serialized.
type File struct {
	ID          int64
	Path        string
	Dialect     string
	Hash        string
	DocumentKey string
	Status      string
	LastIndexed time.Time
}
