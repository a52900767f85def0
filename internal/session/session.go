// Package session drives a labeling run: it owns the cursor into the image
// queue and performs one move per labeling action.
//
// A Session is used from a single UI event loop and is not safe for
// concurrent use.
package session

import (
	"path/filepath"

	"imglabel/internal/catalog"
	"imglabel/internal/errors"
	"imglabel/internal/log"
	"imglabel/internal/organize"

	"github.com/google/uuid"
)

// State is the labeling state.
type State int

const (
	// AwaitingLabel means the cursor points at an image that has not been filed.
	AwaitingLabel State = iota
	// Finished means every queued image has been labeled.
	Finished
)

func (s State) String() string {
	switch s {
	case AwaitingLabel:
		return "awaiting_label"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Progress describes one successful labeling action.
type Progress struct {
	Position int     // 1-based position of the labeled image
	Total    int     // Queue length
	Fraction float64 // Position / Total
	Filename string
	Label    string
}

// Percent returns the completed share as a percentage.
func (p Progress) Percent() float64 {
	return p.Fraction * 100
}

// Move is a completed move handed to the Recorder.
type Move struct {
	SessionID   string
	Directory   string
	Filename    string
	Label       string
	Source      string
	Destination string
	DryRun      bool
}

// Recorder keeps a history of moves.
type Recorder interface {
	RecordMove(m Move) error
}

// Session is the labeling state machine.
type Session struct {
	id       string
	dir      string
	catalog  *catalog.Catalog
	files    []string
	mover    organize.Mover
	dryRun   bool
	cursor   int
	state    State
	listener Listener
	recorder Recorder
	logger   *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithListener sets the observer notified of display, progress and finish events.
func WithListener(l Listener) Option {
	return func(s *Session) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithRecorder records every successful move.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger replaces the package-level logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithDryRun marks recorded moves as simulated.
func WithDryRun(dryRun bool) Option {
	return func(s *Session) { s.dryRun = dryRun }
}

// New creates a session over files in dir. The files slice is copied; the
// session does not start until Start is called.
func New(dir string, cat *catalog.Catalog, files []string, mover organize.Mover, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		dir:      dir,
		catalog:  cat,
		files:    append([]string(nil), files...),
		mover:    mover,
		cursor:   -1,
		state:    AwaitingLabel,
		listener: nopListener{},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.F("session", s.id))
	return s
}

// Start runs the initial advance. It only has an effect on a fresh session.
func (s *Session) Start() {
	if s.cursor != -1 {
		return
	}
	s.logger.Debugf("Starting session over %d images", len(s.files))
	s.Advance()
}

// Advance moves the cursor forward by one. Reaching the end of the queue
// finishes the session; advancing a finished session does nothing.
func (s *Session) Advance() {
	if s.state == Finished {
		return
	}

	s.cursor++
	if s.cursor >= len(s.files) {
		s.cursor = len(s.files)
		s.state = Finished
		s.logger.Debug("Session finished")
		s.listener.OnFinished()
		return
	}
	s.listener.OnDisplay(s.cursor, s.files[s.cursor])
}

// ApplyLabel files the current image under label i and advances. A failed
// move leaves the cursor on the same image.
func (s *Session) ApplyLabel(i int) error {
	if s.state == Finished {
		return errors.NewLabelError("labeling session finished", i, errors.SessionFinished, nil)
	}
	if s.cursor < 0 {
		return errors.NewLabelError("labeling session not started", i, errors.InvalidLabel, nil)
	}
	label, ok := s.catalog.Label(i)
	if !ok {
		return errors.NewLabelError("label index out of range", i, errors.InvalidLabel, nil)
	}

	filename := s.files[s.cursor]
	dest, err := s.mover.MoveToLabel(s.dir, filename, label.Name)
	if err != nil {
		if !errors.IsMoveFailed(err) {
			err = errors.NewLabelError("move failed", i, errors.MoveFailed, err)
		}
		s.logger.WithError(err).With(log.F("file", filename), log.F("label", label.Name)).
			Warn("Image not labeled")
		return err
	}

	p := Progress{
		Position: s.cursor + 1,
		Total:    len(s.files),
		Fraction: float64(s.cursor+1) / float64(len(s.files)),
		Filename: filename,
		Label:    label.Name,
	}
	s.listener.OnProgress(p)
	s.record(filename, label.Name, dest)

	s.Advance()
	return nil
}

// ApplyShortcut resolves r through the shortcut map and applies that label.
// It reports false when r is not a shortcut.
func (s *Session) ApplyShortcut(r rune) (bool, error) {
	i, ok := s.catalog.Lookup(r)
	if !ok {
		return false, nil
	}
	return true, s.ApplyLabel(i)
}

func (s *Session) record(filename, label, dest string) {
	if s.recorder == nil {
		return
	}
	m := Move{
		SessionID:   s.id,
		Directory:   s.dir,
		Filename:    filename,
		Label:       label,
		Source:      filepath.Join(s.dir, filename),
		Destination: dest,
		DryRun:      s.dryRun,
	}
	// The file has already moved; a journal failure must not hold the session back.
	if err := s.recorder.RecordMove(m); err != nil {
		s.logger.WithError(err).With(log.F("file", filename)).Warn("Failed to record move")
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Dir returns the target directory.
func (s *Session) Dir() string { return s.dir }

// Catalog returns the label catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Cursor returns the index of the displayed image, -1 before Start and the
// queue length once finished.
func (s *Session) Cursor() int { return s.cursor }

// Len returns the queue length.
func (s *Session) Len() int { return len(s.files) }

// Files returns a copy of the queue.
func (s *Session) Files() []string {
	return append([]string(nil), s.files...)
}

// Current returns the filename at the cursor.
func (s *Session) Current() (string, bool) {
	if s.state == Finished || s.cursor < 0 {
		return "", false
	}
	return s.files[s.cursor], true
}

// CurrentPath returns the full path of the image at the cursor.
func (s *Session) CurrentPath() (string, bool) {
	name, ok := s.Current()
	if !ok {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// Remaining returns how many images are still to be labeled.
func (s *Session) Remaining() int {
	if s.cursor < 0 {
		return len(s.files)
	}
	return len(s.files) - s.cursor
}
