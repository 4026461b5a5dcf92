package lock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lease holds the advisory file lock that keeps concurrent runs from
// double-processing the same database. The lock dies with the process,
// so a crashed run never leaves a stale lease behind.
type Lease struct {
	fileLock *flock.Flock
}

// Acquire tries to take the advisory lock at path without blocking.
// It returns (nil, nil) when another process already holds it.
func Acquire(path string) (*Lease, error) {
	fileLock := flock.New(path)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, nil
	}

	return &Lease{fileLock: fileLock}, nil
}

// Release gives the lock back. Safe to call on an already released
// lease.
func (l *Lease) Release() error {
	if l == nil || l.fileLock == nil {
		return nil
	}
	if err := l.fileLock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
