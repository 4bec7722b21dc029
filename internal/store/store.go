package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/sean-lai-sh/agent-manager/internal/errors"
	"github.com/sean-lai-sh/agent-manager/internal/project"
)

const (
	// StateFileName is the name of the state document within the state directory.
	StateFileName = "project.json"

	// LockFileName is the name of the advisory lock file within the state directory.
	LockFileName = "project.lock"
)

// Store is the persistence interface consumed by the orchestrator.
type Store interface {
	// Load reads the persisted state. Returns an error matching
	// errors.ErrStateNotFound when no document exists yet (first run) and
	// errors.ErrStateCorrupted when the document cannot be decoded.
	Load(ctx context.Context) (*project.State, error)

	// Save atomically replaces the persisted state document.
	Save(ctx context.Context, state *project.State) error

	// Exists reports whether a state document is present.
	Exists(ctx context.Context) (bool, error)

	// Path returns the path of the state document.
	Path() string
}

// FileStore is the file-based Store implementation. The state document
// lives at <stateDir>/project.json and the process lock at
// <stateDir>/project.lock.
type FileStore struct {
	stateDir string
	flk      *flock.Flock
	mu       sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at the given state directory.
// The directory is created if it does not exist.
func NewFileStore(stateDir string) (*FileStore, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, errors.NewStoreError("failed to create state directory", err).WithPath(stateDir)
	}
	return &FileStore{
		stateDir: stateDir,
		flk:      flock.New(filepath.Join(stateDir, LockFileName)),
	}, nil
}

// AcquireLock takes the advisory process lock for the state directory.
// Returns an error matching errors.ErrStateLocked when another process
// already holds it.
func (s *FileStore) AcquireLock() error {
	locked, err := s.flk.TryLock()
	if err != nil {
		return errors.NewStoreError("failed to acquire process lock", err).WithPath(s.flk.Path())
	}
	if !locked {
		return errors.NewStoreError("state directory is in use by another process", errors.ErrStateLocked).WithPath(s.flk.Path())
	}
	return nil
}

// ReleaseLock drops the advisory process lock. Safe to call when the
// lock is not held.
func (s *FileStore) ReleaseLock() error {
	return s.flk.Unlock()
}

// Load reads and decodes the state document.
func (s *FileStore) Load(ctx context.Context) (*project.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewStoreError("no state document", errors.ErrStateNotFound).WithPath(path)
		}
		return nil, errors.NewStoreError("failed to read state document", err).WithPath(path)
	}

	var state project.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.NewStoreError("failed to decode state document", fmt.Errorf("%w: %v", errors.ErrStateCorrupted, err)).WithPath(path)
	}
	if state.ProjectID == "" {
		return nil, errors.NewStoreError("state document missing project id", errors.ErrStateCorrupted).WithPath(path)
	}

	// A hand-edited document may omit the collection fields.
	if state.Plans == nil {
		state.Plans = map[string]project.PlanSnapshot{}
	}

	return &state, nil
}

// Save encodes the state and writes it atomically.
func (s *FileStore) Save(ctx context.Context, state *project.State) error {
	if state == nil {
		return errors.NewStoreError("cannot save nil state", nil).WithPath(s.Path())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.NewStoreError("failed to encode state", err).WithPath(s.Path())
	}
	data = append(data, '\n')

	// The directory may have been removed since construction.
	if err := os.MkdirAll(s.stateDir, 0755); err != nil {
		return errors.NewStoreError("failed to create state directory", err).WithPath(s.stateDir)
	}

	if err := atomicWriteFile(s.Path(), data, 0644); err != nil {
		return errors.NewStoreError("failed to write state document", err).WithPath(s.Path())
	}
	return nil
}

// Exists reports whether a state document is present.
func (s *FileStore) Exists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.NewStoreError("failed to check state document", err).WithPath(s.Path())
	}
	return true, nil
}

// Delete removes the state document. Used when re-initializing a
// project over an existing one.
func (s *FileStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil {
		if os.IsNotExist(err) {
			return errors.NewStoreError("no state document", errors.ErrStateNotFound).WithPath(s.Path())
		}
		return errors.NewStoreError("failed to delete state document", err).WithPath(s.Path())
	}
	return nil
}

// Path returns the path of the state document.
func (s *FileStore) Path() string {
	return filepath.Join(s.stateDir, StateFileName)
}

// Dir returns the state directory.
func (s *FileStore) Dir() string {
	return s.stateDir
}

// atomicWriteFile writes data to a file atomically by writing to a
// temporary file in the same directory, syncing, then renaming over the
// target. The target is never observed in a partially-written state.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
