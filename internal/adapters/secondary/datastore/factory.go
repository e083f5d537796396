package datastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// FileFactory implements ports.DataStoreFactory: one JSON file per id
// under Dir, cached so repeated lookups of the same id share one
// FileDataStore instance (required since each DataStore serializes its
// own writes).
type FileFactory struct {
	mu    sync.Mutex
	dir   string
	cache map[string]ports.DataStore
}

func NewFileFactory(dir string) (*FileFactory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileFactory{dir: dir, cache: make(map[string]ports.DataStore)}, nil
}

func (f *FileFactory) pathFor(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileFactory) Create(ctx context.Context, id string, defaults map[string]any) (ports.DataStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ds, ok := f.cache[id]; ok {
		return ds, nil
	}
	ds, err := newFileDataStore(f.pathFor(id), defaults)
	if err != nil {
		return nil, err
	}
	f.cache[id] = ds
	return ds, nil
}

func (f *FileFactory) Get(ctx context.Context, id string) (ports.DataStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ds, ok := f.cache[id]; ok {
		return ds, nil
	}
	if _, err := os.Stat(f.pathFor(id)); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	ds, err := newFileDataStore(f.pathFor(id), map[string]any{})
	if err != nil {
		return nil, err
	}
	f.cache[id] = ds
	return ds, nil
}

func (f *FileFactory) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, id)
	err := os.Remove(f.pathFor(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
