package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"imglabel/internal/log"

	"github.com/fsnotify/fsnotify"
)

// NoticeKind classifies an external change to the labeled directory.
type NoticeKind int

const (
	// FileAdded means a new file appeared; it joins the queue on the next run.
	FileAdded NoticeKind = iota
	// FileRemoved means a file left the directory without being labeled here.
	FileRemoved
	// LabelAdded means a new sub-directory appeared.
	LabelAdded
	// LabelRemoved means a label directory disappeared; moves into it will fail.
	LabelRemoved
)

func (k NoticeKind) String() string {
	switch k {
	case FileAdded:
		return "file_added"
	case FileRemoved:
		return "file_removed"
	case LabelAdded:
		return "label_added"
	case LabelRemoved:
		return "label_removed"
	default:
		return "unknown"
	}
}

// Notice is a change made to the directory by someone other than the labeler.
type Notice struct {
	Kind      NoticeKind
	Name      string
	Timestamp time.Time
}

// Message renders the notice for a status line.
func (n Notice) Message() string {
	switch n.Kind {
	case FileAdded:
		return fmt.Sprintf("%s was added and will be queued on the next run", n.Name)
	case FileRemoved:
		return fmt.Sprintf("%s was removed outside the labeler", n.Name)
	case LabelAdded:
		return fmt.Sprintf("new label %s will be available on the next run", n.Name)
	case LabelRemoved:
		return fmt.Sprintf("label %s was removed; moves into it will fail", n.Name)
	default:
		return n.Name
	}
}

// Watcher reports external changes to the top level of a labeled directory.
type Watcher struct {
	dir    string
	labels map[string]bool

	// Files the labeler is about to move away itself.
	expected map[string]int

	notices   chan Notice
	stopChan  chan struct{}
	done      chan struct{}
	fsWatcher *fsnotify.Watcher

	mutex   sync.Mutex
	running bool
	stopped bool
}

// New creates a watcher for dir, which holds the given label directories.
func New(dir string, labels []string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}

	return &Watcher{
		dir:       dir,
		labels:    known,
		expected:  make(map[string]int),
		notices:   make(chan Notice, 16),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Notices returns the channel that delivers notices. It is closed by Stop.
func (w *Watcher) Notices() <-chan Notice {
	return w.notices
}

// Expect marks name as about to be moved by the labeler so its removal is
// not reported.
func (w *Watcher) Expect(name string) {
	w.mutex.Lock()
	w.expected[name]++
	w.mutex.Unlock()
}

// Forget withdraws an Expect for a move that did not happen.
func (w *Watcher) Forget(name string) {
	w.mutex.Lock()
	w.consume(name)
	w.mutex.Unlock()
}

func (w *Watcher) consume(name string) bool {
	n := w.expected[name]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(w.expected, name)
	} else {
		w.expected[name] = n - 1
	}
	return true
}

// Start begins forwarding notices.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		return fmt.Errorf("watcher stopped")
	}
	w.running = true

	go w.loop()

	log.LogWithFields(log.F("directory", w.dir)).Debug("Watching directory")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			notice, ok := w.classify(event)
			if !ok {
				continue
			}
			// Never block on a slow UI.
			select {
			case w.notices <- notice:
			default:
				log.LogWithFields(log.F("file", notice.Name)).Warn("Notice channel is full, dropped notice")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) classify(event fsnotify.Event) (Notice, bool) {
	name := filepath.Base(event.Name)
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) || strings.HasPrefix(name, ".imglabel-") {
		return Notice{}, false
	}
	notice := Notice{Name: name, Timestamp: time.Now()}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Gone again before we looked.
			return Notice{}, false
		}
		w.mutex.Lock()
		known := w.labels[name]
		w.mutex.Unlock()
		if info.IsDir() {
			if known {
				return Notice{}, false
			}
			notice.Kind = LabelAdded
		} else {
			notice.Kind = FileAdded
		}
		return notice, true

	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		w.mutex.Lock()
		defer w.mutex.Unlock()
		if w.consume(name) {
			return Notice{}, false
		}
		if w.labels[name] {
			notice.Kind = LabelRemoved
		} else {
			notice.Kind = FileRemoved
		}
		return notice, true
	}
	return Notice{}, false
}

// Stop halts the watcher and closes the notice channel. It is safe to call
// more than once and without Start.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopped {
		w.mutex.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mutex.Unlock()

	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	if wasRunning {
		<-w.done
	}
	close(w.notices)
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.running
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}
