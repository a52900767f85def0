// Package queue builds the ordered list of files waiting to be labeled.
package queue

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"imglabel/internal/catalog"
	"imglabel/internal/errors"

	"github.com/gobwas/glob"
)

// Filter restricts which top-level files are queued. The zero value queues
// every non-directory entry.
type Filter struct {
	Include    []string // Glob patterns matched against the file name; any match admits the file
	SkipHidden bool
}

// Matcher is a compiled Filter.
type Matcher struct {
	globs      []glob.Glob
	skipHidden bool
}

// Compile prepares the filter's glob patterns.
func (f Filter) Compile() (*Matcher, error) {
	m := &Matcher{skipHidden: f.SkipHidden}
	for _, pattern := range f.Include {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, errors.NewConfigError("invalid include pattern "+pattern, "filter.include", errors.InvalidConfig, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether a file name belongs in the queue. Patterns match
// case-insensitively so "*.jpg" admits "IMG_01.JPG".
func (m *Matcher) Match(name string) bool {
	if m.skipHidden && strings.HasPrefix(name, ".") {
		return false
	}
	if len(m.globs) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, g := range m.globs {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// BuildQueue lists the non-directory entries directly inside dir, sorted
// lexicographically. Sub-directories are never queued.
func BuildQueue(dir string, filter Filter) ([]string, error) {
	if err := catalog.CheckDir(dir); err != nil {
		return nil, err
	}

	matcher, err := filter.Compile()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("error reading directory", dir, errors.NotFound, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if catalog.IsDirEntry(dir, entry) {
			continue
		}
		if !matcher.Match(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	return files, nil
}

// Path joins dir and a queued file name.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}
