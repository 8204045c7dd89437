package cppdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/jward/cppdriver/internal/parser"
	"github.com/jward/cppdriver/internal/protocol"
	"github.com/jward/cppdriver/internal/store"
)

// ErrNoStore is returned by operations that need a document store when the
// Driver has none.
var ErrNoStore = errors.New("cppdriver: no document store configured")

// IndexResult counts what one IndexFiles call did.
type IndexResult struct {
	Indexed   int // serialized and stored
	Unchanged int // same content hash as the stored record
	Failed    int // recorded with a non-ok status
}

// workItem holds everything a worker needs to serialize one file.
type workItem struct {
	path    string
	dialect parser.Dialect
	content []byte
	hash    string
}

type workResult struct {
	item workItem
	body json.RawMessage
	err  error
}

// IndexFiles serializes the C and C++ files among paths into the store,
// skipping files whose content has not changed. It runs in three phases:
//
//	Phase A (serial):   dialect detection, read and hash check.
//	Phase B (parallel): parse and serialize via a worker pool.
//	Phase C (serial):   buffer documents and file records, commit once.
//
// A file that fails to serialize is recorded with the failure's status and
// no document; it does not fail the call.
func (d *Driver) IndexFiles(ctx context.Context, paths []string) (IndexResult, error) {
	var res IndexResult
	if d.store == nil {
		return res, ErrNoStore
	}

	// ---- Phase A: Serial file preparation ----
	var items []workItem
	for _, path := range paths {
		item, skip, err := d.prepareFile(path)
		if err != nil {
			return res, fmt.Errorf("cppdriver: prepare %s: %w", path, err)
		}
		if skip {
			res.Unchanged++
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return res, nil
	}

	// ---- Phase B: Parallel serialization ----
	numWorkers := max(1, min(goruntime.NumCPU(), len(items)))

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	resultCh := make(chan workResult, len(items))
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				body, err := d.transcode(ctx, item.dialect, item.content)
				resultCh <- workResult{item: item, body: body, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	batch := store.NewBatchedStore(d.store)
	now := time.Now()
	for r := range resultCh {
		f := &store.File{
			Path:        r.item.path,
			Dialect:     string(r.item.dialect),
			Hash:        r.item.hash,
			Status:      string(protocol.StatusOK),
			LastIndexed: now,
		}
		if r.err != nil {
			f.Status = string(protocol.Classify(r.err))
			d.log.Warn("file not serialized", "path", r.item.path, "err", r.err)
			res.Failed++
		} else {
			f.DocumentKey = store.DocumentKey(r.item.content, string(r.item.dialect), d.fingerprint)
			err := batch.PutDocument(&store.Document{
				Key:       f.DocumentKey,
				Dialect:   f.Dialect,
				Status:    f.Status,
				Body:      r.body,
				CreatedAt: now,
			})
			if err != nil {
				return res, fmt.Errorf("cppdriver: buffer %s: %w", r.item.path, err)
			}
			res.Indexed++
		}
		if _, err := batch.UpsertFile(f); err != nil {
			return res, fmt.Errorf("cppdriver: buffer %s: %w", r.item.path, err)
		}
	}

	if err := d.store.CommitBatch(batch); err != nil {
		return res, fmt.Errorf("cppdriver: commit: %w", err)
	}
	d.log.Info("indexed files", "indexed", res.Indexed, "unchanged", res.Unchanged, "failed", res.Failed)
	return res, nil
}

// prepareFile does Phase A work for one file. skip is true for unsupported
// extensions and unchanged content.
func (d *Driver) prepareFile(path string) (workItem, bool, error) {
	dialect, ok := parser.DialectForFile(path)
	if !ok {
		return workItem{}, true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := store.ContentHash(content)

	existing, err := d.store.FileByPath(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash && existing.Dialect == string(dialect) {
		return workItem{}, true, nil
	}
	return workItem{path: path, dialect: dialect, content: content, hash: hash}, false, nil
}

// RemoveFile forgets an indexed file.
func (d *Driver) RemoveFile(path string) error {
	if d.store == nil {
		return ErrNoStore
	}
	return d.store.DeleteFile(path)
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"build":        true,
	"cmake-build":  true,
	"node_modules": true,
	"third_party":  true,
	"vendor":       true,
}

// SkipDir reports whether a directory named name is excluded from indexing
// and watching. Hidden directories are always excluded.
func SkipDir(name string) bool {
	return (strings.HasPrefix(name, ".") && name != "." && name != "..") || skipDirs[name]
}

// IndexDirectory indexes every C and C++ file under root. Inside a git
// repository it uses git ls-files to respect .gitignore; otherwise it walks
// the tree, skipping the directories SkipDir names.
func (d *Driver) IndexDirectory(ctx context.Context, root string) (IndexResult, error) {
	paths, err := gitListFiles(root)
	if err != nil {
		paths, err = walkListFiles(root)
		if err != nil {
			return IndexResult{}, err
		}
	}
	return d.IndexFiles(ctx, paths)
}

// gitListFiles lists tracked and untracked, non-ignored C and C++ files
// under root.
func gitListFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := parser.DialectForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a
// fallback when git is not available.
func walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if path != root && SkipDir(e.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := parser.DialectForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cppdriver: walk directory: %w", err)
	}
	return paths, nil
}
