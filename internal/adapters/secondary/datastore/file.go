// Package datastore implements §4.1's pluggable document store: one JSON
// file per id, atomic write-then-rename persistence, and a process-wide
// factory cache so at most one DataStore instance exists per id.
package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"
)

// FileDataStore is one JSON document backed by a file, guarded by an
// in-process mutex (so concurrent Set/Delete calls from goroutines never
// interleave) and an OS file lock (so the rename sequence stays atomic
// even if another process shares the same data directory).
type FileDataStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	doc  map[string]any
}

func newFileDataStore(path string, defaults map[string]any) (*FileDataStore, error) {
	ds := &FileDataStore{path: path, lock: flock.New(path + ".lock")}
	if err := ds.load(defaults); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *FileDataStore) load(defaults map[string]any) error {
	data, err := os.ReadFile(ds.path)
	if os.IsNotExist(err) {
		ds.doc = cloneMap(defaults)
		return ds.persistLocked()
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", ds.path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", ds.path, err)
	}
	for k, v := range defaults {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}
	ds.doc = doc
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (ds *FileDataStore) persistLocked() error {
	if err := ds.lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", ds.path, err)
	}
	defer ds.lock.Unlock()

	data, err := json.MarshalIndent(ds.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", ds.path, err)
	}
	tmp := ds.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, ds.path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmp, ds.path, err)
	}
	return nil
}

func (ds *FileDataStore) Get(ctx context.Context, key []string, def any) (any, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if v, ok := getAtPath(ds.doc, key); ok {
		return v, nil
	}
	return def, nil
}

func (ds *FileDataStore) Set(ctx context.Context, key []string, value any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	setAtPath(ds.doc, key, value)
	return ds.persistLocked()
}

func (ds *FileDataStore) Delete(ctx context.Context, key []string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	deleteAtPath(ds.doc, key)
	return ds.persistLocked()
}

func (ds *FileDataStore) GetRoot(ctx context.Context) (map[string]any, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return cloneMap(ds.doc), nil
}
