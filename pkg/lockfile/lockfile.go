// Package lockfile enforces the process-wide singleton guarantee for a
// running daemon: at most one sonar daemon may hold a given lock
// directory at a time.
package lockfile

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld is returned by Acquire when another process already holds the
// lock. Its message is matched against in integration tests, so its
// wording ("Lockfile present") must not change casually.
var ErrHeld = errors.New("Lockfile present")

const fileName = "sonar.lock"

// Lock wraps an exclusive, non-blocking file lock rooted at a
// configured directory. It is a process-wide singleton: only the daemon
// lifecycle (§4.1) acquires and releases it.
type Lock struct {
	fl *flock.Flock
}

// Acquire tries to take the lock in dir, creating dir's lock file if
// needed. It never blocks: if another process holds the lock, it
// returns ErrHeld immediately.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, fileName)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lockfile: %s: %w", path, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock and closes the underlying file descriptor. It
// is idempotent: releasing an already-released lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
