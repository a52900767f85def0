package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"imglabel/internal/catalog"
	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/internal/gui"
	"imglabel/internal/journal"
	"imglabel/internal/lock"
	"imglabel/internal/log"
	"imglabel/internal/organize"
	"imglabel/internal/queue"
	"imglabel/internal/report"
	"imglabel/internal/session"
	"imglabel/internal/tui"
	"imglabel/internal/watch"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type labelOptions struct {
	tui       bool
	dryRun    bool
	dryRunSet bool
	include   []string
	noJournal bool
}

// frontend is a labeling surface: the window or the terminal UI.
type frontend interface {
	session.Listener
	Attach(s *session.Session)
	Notify(n watch.Notice)
	Run() error
}

// hasDisplay reports whether a desktop window can be opened.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	default:
		return true
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runLabel(cmd *cobra.Command, target string, global *globalOptions, opts *labelOptions) error {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	useTUI := opts.tui || !gui.Available() || !hasDisplay()
	global.configureLogging(useTUI && global.logFile == "" && !global.debug)
	defer log.Default().Close()

	cfg, err := global.loadConfig(out)
	if err != nil {
		return err
	}
	if opts.dryRunSet {
		cfg.Settings.DryRun = opts.dryRun
	}
	if len(opts.include) > 0 {
		cfg.Filter.Include = append(cfg.Filter.Include, opts.include...)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	dir, err := filepath.Abs(target)
	if err != nil {
		return errors.NewFileError("resolve directory", target, errors.NotFound, err)
	}

	cat, err := catalog.BuildCatalogWithOptions(dir, catalog.Options{SkipHidden: cfg.Filter.SkipHidden})
	if err != nil {
		return err
	}
	files, err := queue.BuildQueue(dir, queue.Filter{Include: cfg.Filter.Include, SkipHidden: cfg.Filter.SkipHidden})
	if err != nil {
		return err
	}

	reporter := report.New(out, report.WithTheme(cfg))
	reporter.Startup(cat.Names(), len(files))

	if f, ok := in.(*os.File); ok && useTUI && len(files) > 0 && !isTerminal(f) {
		return errors.New("no display for a window and stdin is not a terminal")
	}

	if cfg.Lock.Enabled {
		l, err := lock.New(dir, "")
		if err != nil {
			return err
		}
		if err := l.Acquire(); err != nil {
			return err
		}
		defer l.Release()
	}

	var recorder session.Recorder
	if cfg.Journal.Enabled && !opts.noJournal {
		store, err := openJournal(cfg)
		if err != nil {
			log.LogWithError(err).Warn("Journal disabled for this run")
		} else {
			defer store.Close()
			recorder = store
		}
	}

	mover := organize.CurrentMoverFactory(cfg)
	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		w, err := watch.New(dir, cat.Names())
		if err != nil {
			log.LogWithError(err).Warn("Directory watch disabled for this run")
		} else {
			watcher = w
			defer w.Stop()
			mover = watch.NewMover(mover, w)
		}
	}

	var (
		fe       frontend
		listener session.Listener
	)
	if useTUI {
		// The terminal UI prints its own progress lines above the program.
		tuiOpts := []tui.Option{tui.WithOutput(out)}
		if in != os.Stdin {
			tuiOpts = append(tuiOpts, tui.WithInput(in))
		}
		t := tui.New(cfg, tuiOpts...)
		fe, listener = t, t
	} else {
		g := gui.NewApp(cfg, gui.WithReporter(reporter))
		fe, listener = g, session.Listeners(reporter, g)
	}

	s := session.New(dir, cat, files, mover,
		session.WithListener(listener),
		session.WithRecorder(recorder),
		session.WithDryRun(cfg.Settings.DryRun),
	)
	fe.Attach(s)

	if watcher != nil {
		if err := watcher.Start(); err != nil {
			log.LogWithError(err).Warn("Directory watch disabled for this run")
		} else {
			go forwardNotices(watcher, fe)
		}
	}

	log.LogWithFields(
		log.F("session", s.ID()),
		log.F("dir", dir),
		log.F("images", len(files)),
		log.F("labels", cat.Len()),
		log.F("dry_run", cfg.Settings.DryRun),
	).Debug("Labeling started")

	if err := fe.Run(); err != nil {
		return err
	}
	if s.State() != session.Finished {
		fmt.Fprintf(out, "Stopped with %d images left\n", s.Remaining())
	}
	return nil
}

// forwardNotices hands watcher notices to fe until the watcher stops.
func forwardNotices(w *watch.Watcher, fe frontend) {
	for n := range w.Notices() {
		fe.Notify(n)
	}
}

func openJournal(cfg *config.Config) (*journal.Store, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	return journal.Open(path)
}
