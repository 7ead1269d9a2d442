// Package storage persists the published pricing state.
// Supports multiple backends: memory, file, PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"cleanquote/core/pricing"
	"cleanquote/internal/config"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile     Backend = config.BackendFile
	BackendPostgres Backend = config.BackendPostgres
	BackendMemory   Backend = config.BackendMemory
)

// Store is a pricing.Persister that holds resources to release
type Store interface {
	pricing.Persister

	// Close closes the store
	Close() error
}

// FileStore keeps the state as one JSON document on disk. Saves write a
// temporary file and rename it over the old one, so a crash never leaves a
// half-written state behind.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the state file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*pricing.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state pricing.State
	if err := json.UnmarshalContext(ctx, data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state %s: %w", s.path, err)
	}
	return &state, nil
}

func (s *FileStore) Save(ctx context.Context, state *pricing.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".pricing-state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore keeps the state in process (for testing and ephemeral runs)
type MemoryStore struct {
	state *pricing.State
	saves int
	mu    sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*pricing.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state *pricing.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.saves++
	return nil
}

// Saves returns how many states were saved
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates a store for the configured backend
func StoreFactory(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch Backend(cfg.Backend) {
	case BackendFile:
		return NewFileStore(cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
