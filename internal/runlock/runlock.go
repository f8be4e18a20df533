// Package runlock guards an output directory with an advisory file lock so two
// dubsync processes never write the same fixed artifact paths concurrently.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"dubsync/internal/services"
)

// FileName is the lock file created inside the guarded directory.
const FileName = ".dubsync.lock"

// Lock is a held directory lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock for dir without blocking. A lock held elsewhere is
// reported as a validation error naming the lock path.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, FileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "runlock", "acquire",
			fmt.Sprintf("another dubsync run is using %s", dir), nil)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the directory. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release %s: %w", l.path, err)
	}
	return nil
}

// Dir adapts Acquire to the pipeline's lock hook.
func Dir(dir string) (func() error, error) {
	lock, err := Acquire(dir)
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}
