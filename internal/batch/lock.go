package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another letterbox process holds the table lock.
var ErrLocked = errors.New("metadata table is locked by another letterbox process")

// errLockUnavailable marks a lock file that cannot be created because its
// directory is not writable.
var errLockUnavailable = errors.New("lock file cannot be created")

func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		if readOnly(err) {
			return nil, fmt.Errorf("%w: %w", errLockUnavailable, err)
		}
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		if readOnly(err) {
			return nil, fmt.Errorf("%w: %w", errLockUnavailable, err)
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, path)
	}
	return lock, nil
}

func readOnly(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EROFS)
}
