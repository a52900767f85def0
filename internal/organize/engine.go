package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/internal/log"
)

// Engine moves labeled files into their label directories.
type Engine struct {
	dryRun    bool
	collision string
	mu        sync.Mutex // Serializes collision checks with the rename
	rename    func(src, dest string) error
}

// New creates an Engine with the default settings.
func New() *Engine {
	return NewWithConfig(config.New())
}

// NewWithConfig creates an Engine using the move settings in cfg.
func NewWithConfig(cfg *config.Config) *Engine {
	e := &Engine{
		collision: config.CollisionOverwrite,
		rename:    os.Rename,
	}
	if cfg != nil {
		e.SetConfig(cfg)
	}
	return e
}

// SetConfig applies the move settings in cfg.
func (e *Engine) SetConfig(cfg *config.Config) {
	e.dryRun = cfg.Settings.DryRun
	if cfg.Settings.Collision != "" {
		e.collision = cfg.Settings.Collision
	}
}

// MoveToLabel moves dir/filename into dir/label/filename and returns the
// final destination, which differs from that path only after a rename
// collision. The label directory must already exist.
func (e *Engine) MoveToLabel(dir, filename, label string) (string, error) {
	return e.move(filepath.Join(dir, filename), filepath.Join(dir, label, filename))
}

// move moves src to dest, applying the collision strategy. Every failure is
// reported as a MoveFailed error and leaves src in place.
func (e *Engine) move(src, dest string) (string, error) {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	if cleanSrc == cleanDest {
		return "", errors.NewFileError("source and destination are the same", src, errors.MoveFailed, nil)
	}

	srcInfo, err := os.Stat(cleanSrc)
	if err != nil {
		return "", errors.NewFileError("source file error", src, errors.MoveFailed, err)
	}
	if srcInfo.IsDir() {
		return "", errors.NewFileError("cannot move directory as file", src, errors.MoveFailed, nil)
	}

	// A missing label directory is a failed move, never a reason to create one.
	destDir := filepath.Dir(cleanDest)
	dirInfo, err := os.Stat(destDir)
	if err != nil {
		return "", errors.NewFileError("label directory unavailable", destDir, errors.MoveFailed, err)
	}
	if !dirInfo.IsDir() {
		return "", errors.NewFileError("label path is not a directory", destDir, errors.MoveFailed, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	finalDest, err := e.handleCollision(cleanSrc, cleanDest)
	if err != nil {
		return "", err
	}

	if e.dryRun {
		log.LogWithFields(log.F("src", cleanSrc), log.F("dest", finalDest)).Info("Would move file")
		return finalDest, nil
	}

	log.Debugf("Moving %s to %s", cleanSrc, finalDest)
	if err := e.rename(cleanSrc, finalDest); err != nil {
		if !isCrossDevice(err) {
			return "", errors.NewFileError("failed to move file", src, errors.MoveFailed, err)
		}
		log.LogWithFields(log.F("src", cleanSrc), log.F("dest", finalDest)).Debug("Rename crosses devices, copying")
		if err := copyAcrossDevices(cleanSrc, finalDest, srcInfo.Mode().Perm()); err != nil {
			return "", errors.NewFileError("failed to copy file across devices", src, errors.MoveFailed, err)
		}
	}

	log.Debugf("Moved %s -> %s", src, finalDest)
	return finalDest, nil
}

// handleCollision returns the path the file should land on.
func (e *Engine) handleCollision(src, dest string) (string, error) {
	_, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return dest, nil
	}
	if err != nil {
		return "", errors.NewFileError("error checking destination", dest, errors.MoveFailed, err)
	}

	switch e.collision {
	case config.CollisionOverwrite:
		log.LogWithFields(log.F("dest", dest)).Warn("Destination exists, overwriting")
		return dest, nil

	case config.CollisionRename:
		return e.findUniqueDestName(dest)

	case config.CollisionFail:
		return "", errors.NewFileError("destination already exists", dest, errors.MoveFailed, os.ErrExist)

	default:
		return "", errors.NewFileError(fmt.Sprintf("unknown collision strategy %q", e.collision),
			src, errors.MoveFailed, nil)
	}
}

// findUniqueDestName finds a unique filename by adding a counter to the basename
func (e *Engine) findUniqueDestName(originalPath string) (string, error) {
	ext := filepath.Ext(originalPath)
	base := strings.TrimSuffix(originalPath, ext)

	for counter := 1; counter <= 1000; counter++ {
		newName := fmt.Sprintf("%s_(%d)%s", base, counter, ext)

		if _, err := os.Lstat(newName); os.IsNotExist(err) {
			log.LogWithFields(log.F("dest", newName)).Info("Destination exists, renaming")
			return newName, nil
		}
	}

	return "", errors.NewFileError("failed to find unique name after 1000 attempts",
		originalPath, errors.MoveFailed, nil)
}
