// Package catalog discovers the labels of a target directory and assigns each
// one a single-rune keyboard shortcut.
//
// Labels are the immediate sub-directories of the target directory, sorted
// lexicographically; a label's index in that order is its identity. Shortcuts
// are assigned greedily: each label, in order, claims the first rune of its
// name that no earlier label has claimed. A label whose every rune is already
// taken gets no shortcut and can only be chosen directly.
package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"imglabel/internal/errors"
)

// Shortcut is the optional rune assigned to a label. Position is the rune
// index within the label name, or -1 when Assigned is false.
type Shortcut struct {
	Rune     rune
	Position int
	Assigned bool
}

// Label is one classification category.
type Label struct {
	Index    int
	Name     string
	Shortcut Shortcut
}

// Catalog is the ordered label list plus the shortcut map. It is immutable
// after construction.
type Catalog struct {
	dir       string
	labels    []Label
	shortcuts map[rune]int
}

// Options tunes label discovery.
type Options struct {
	SkipHidden bool
}

// BuildCatalog scans dir for label directories.
func BuildCatalog(dir string) (*Catalog, error) {
	return BuildCatalogWithOptions(dir, Options{})
}

// BuildCatalogWithOptions scans dir for label directories using opts.
func BuildCatalogWithOptions(dir string, opts Options) (*Catalog, error) {
	if err := CheckDir(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("error reading directory", dir, errors.NotFound, err)
	}

	var names []string
	for _, entry := range entries {
		if !IsDirEntry(dir, entry) {
			continue
		}
		if opts.SkipHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}

	return New(dir, names), nil
}

// New builds a catalog from label names without touching the filesystem.
// Names are sorted; the input slice is not modified.
func New(dir string, names []string) *Catalog {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	shortcuts := AssignShortcuts(sorted)
	c := &Catalog{
		dir:       dir,
		labels:    make([]Label, len(sorted)),
		shortcuts: make(map[rune]int, len(sorted)),
	}
	for i, name := range sorted {
		c.labels[i] = Label{Index: i, Name: name, Shortcut: shortcuts[i]}
		if shortcuts[i].Assigned {
			c.shortcuts[shortcuts[i].Rune] = i
		}
	}
	return c
}

// AssignShortcuts returns one Shortcut per name, in order. Earlier names win
// every contested rune.
func AssignShortcuts(names []string) []Shortcut {
	claimed := make(map[rune]bool)
	result := make([]Shortcut, len(names))
	for i, name := range names {
		result[i] = Shortcut{Position: -1}
		for pos, r := range []rune(name) {
			if claimed[r] {
				continue
			}
			claimed[r] = true
			result[i] = Shortcut{Rune: r, Position: pos, Assigned: true}
			break
		}
	}
	return result
}

// Dir returns the directory the catalog was built from.
func (c *Catalog) Dir() string {
	return c.dir
}

// Len returns the number of labels.
func (c *Catalog) Len() int {
	return len(c.labels)
}

// Labels returns a copy of the ordered labels.
func (c *Catalog) Labels() []Label {
	return append([]Label(nil), c.labels...)
}

// Names returns the label names in index order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.labels))
	for i, l := range c.labels {
		names[i] = l.Name
	}
	return names
}

// Label returns the label at index i.
func (c *Catalog) Label(i int) (Label, bool) {
	if i < 0 || i >= len(c.labels) {
		return Label{}, false
	}
	return c.labels[i], true
}

// Lookup resolves a shortcut rune to a label index.
func (c *Catalog) Lookup(r rune) (int, bool) {
	i, ok := c.shortcuts[r]
	return i, ok
}

// Shortcuts returns a copy of the shortcut map.
func (c *Catalog) Shortcuts() map[rune]int {
	m := make(map[rune]int, len(c.shortcuts))
	for r, i := range c.shortcuts {
		m[r] = i
	}
	return m
}

// DisplayName renders label i with its shortcut bracketed, e.g. "b[a]nana".
// Labels without a shortcut are returned unchanged.
func (c *Catalog) DisplayName(i int) string {
	l, ok := c.Label(i)
	if !ok {
		return ""
	}
	return l.DisplayName()
}

// DisplayName renders the label name with its shortcut bracketed.
func (l Label) DisplayName() string {
	if !l.Shortcut.Assigned {
		return l.Name
	}
	runes := []rune(l.Name)
	var b strings.Builder
	for pos, r := range runes {
		if pos == l.Shortcut.Position {
			b.WriteRune('[')
			b.WriteRune(r)
			b.WriteRune(']')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CheckDir reports NotFound or NotADirectory for a bad target path.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("directory not found", dir, errors.NotFound, err)
		}
		return errors.NewFileError("error accessing directory", dir, errors.NotFound, err)
	}
	if !info.IsDir() {
		return errors.NewFileError("path is not a directory", dir, errors.NotADirectory, nil)
	}
	return nil
}

// IsDirEntry reports whether entry is a directory, following symlinks so a
// linked label directory still counts.
func IsDirEntry(dir string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}
