package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process is editing the project.
var ErrLocked = errors.New("project is locked by another process")

// Lock is an exclusive per-project writer lock.
type Lock struct {
	path string
	lock *flock.Flock
}

func locksDirFor(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "locks")
}

// Lock acquires the writer lock for projectID without blocking.
func (s *Store) Lock(projectID string) (*Lock, error) {
	if err := os.MkdirAll(s.locksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create locks directory: %w", err)
	}
	path := filepath.Join(s.locksDir, projectID+".lock")
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Unlock releases the lock. It is safe to call more than once.
func (l *Lock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
