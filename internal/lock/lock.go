// Package lock keeps two labelers from working on the same directory.
//
// The lock file lives under the user cache directory, keyed by a hash of the
// target directory's absolute path, so it never shows up in the image queue.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"imglabel/internal/errors"
	"imglabel/internal/log"

	"github.com/gofrs/flock"
)

// DirLock is an advisory lock on a target directory.
type DirLock struct {
	dir  string
	path string
	lock *flock.Flock
}

// DefaultRoot returns the directory that holds lock files.
func DefaultRoot() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cache, "imglabel", "locks"), nil
}

// New prepares a lock for dir with its lock file under root. An empty root
// selects DefaultRoot.
func New(dir, root string) (*DirLock, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("resolve directory", dir, errors.NotFound, err)
	}
	if root == "" {
		if root, err = DefaultRoot(); err != nil {
			return nil, errors.Wrapf(err, "locate lock directory for %s", abs)
		}
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.NewFileError("create lock directory", root, errors.Locked, err)
	}

	sum := sha256.Sum256([]byte(abs))
	path := filepath.Join(root, hex.EncodeToString(sum[:8])+".lock")
	return &DirLock{dir: abs, path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock without waiting. It fails with a Locked error when
// another process holds it.
func (l *DirLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return errors.NewFileError("acquire lock", l.dir, errors.Locked, err)
	}
	if !ok {
		return errors.NewFileError("directory is already being labeled", l.dir, errors.Locked, nil)
	}
	log.LogWithFields(log.F("dir", l.dir), log.F("lock", l.path)).Debug("Acquired directory lock")
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *DirLock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return errors.NewFileError("release lock", l.dir, errors.Locked, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.path
}

// Locked reports whether this process holds the lock.
func (l *DirLock) Locked() bool {
	return l.lock.Locked()
}
