package watch

import (
	"os"
	"path/filepath"

	"imglabel/internal/organize"
)

// Mover tells a Watcher about the labeler's own moves before they happen so
// they are not reported as external removals.
type Mover struct {
	organize.Mover
	watcher *Watcher
}

// NewMover wraps m.
func NewMover(m organize.Mover, w *Watcher) *Mover {
	return &Mover{Mover: m, watcher: w}
}

// MoveToLabel moves the file and keeps the watcher's expectations in step.
func (m *Mover) MoveToLabel(dir, filename, label string) (string, error) {
	m.watcher.Expect(filename)
	dest, err := m.Mover.MoveToLabel(dir, filename, label)
	if err != nil {
		m.watcher.Forget(filename)
		return "", err
	}
	// A dry run leaves the file where it was.
	if _, statErr := os.Lstat(filepath.Join(dir, filename)); statErr == nil {
		m.watcher.Forget(filename)
	}
	return dest, nil
}

var _ organize.Mover = (*Mover)(nil)
