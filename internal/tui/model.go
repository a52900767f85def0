// Package tui is the terminal front-end: a bubbletea program that previews
// the current image and files it on a label keystroke.
package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/internal/imaging"
	"imglabel/internal/log"
	"imglabel/internal/report"
	"imglabel/internal/session"
	"imglabel/internal/watch"
	"imglabel/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const maxNotices = 3

// noticeMsg carries a directory change into the event loop.
type noticeMsg struct {
	notice watch.Notice
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarning
	statusError
)

// Model is the bubbletea model of a labeling run. It implements
// session.Listener; session events are delivered while Update runs.
type Model struct {
	cfg      *config.Config
	session  *session.Session
	keys     types.KeyMap
	help     help.Model
	progress progress.Model
	styles   Styles
	out      io.Writer
	in       io.Reader

	// Label list cursor, for labels without a shortcut
	selected int

	caption    string
	preview    string
	status     string
	statusKind statusKind
	notices    []string
	fraction   float64
	showHelp   bool
	finished   bool
	quitting   bool

	// Console lines printed above the program on the next update
	lines []string

	mu      sync.Mutex
	program *tea.Program
}

// Option configures a Model.
type Option func(*Model)

// WithOutput sets where console lines go when no program is running.
func WithOutput(w io.Writer) Option {
	return func(m *Model) { m.out = w }
}

// WithInput reads keystrokes from r instead of the terminal.
func WithInput(r io.Reader) Option {
	return func(m *Model) { m.in = r }
}

// New creates the terminal labeler.
func New(cfg *config.Config, opts ...Option) *Model {
	m := &Model{
		cfg:  cfg,
		keys: types.DefaultKeyMap(),
		help: help.New(),
		progress: progress.New(
			progress.WithSolidFill(cfg.Theme.Primary),
			progress.WithWidth(40),
		),
		styles: NewStyles(cfg),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attach binds the model to s and registers its label shortcuts.
func (m *Model) Attach(s *session.Session) {
	m.session = s
	m.selected = 0
	m.keys = types.DefaultKeyMap()
	for _, l := range s.Catalog().Labels() {
		if l.Shortcut.Assigned {
			m.keys.AddLabel(l.Shortcut.Rune, l.Name)
		}
	}
}

// Run starts the session and blocks until every image is labeled or the
// user quits. An empty queue returns immediately.
func (m *Model) Run() error {
	if m.session == nil {
		return errors.New("no session attached")
	}
	m.session.Start()
	if m.finished {
		m.printLines()
		return nil
	}

	opts := []tea.ProgramOption{tea.WithOutput(m.out)}
	if m.in != nil {
		opts = append(opts, tea.WithInput(m.in))
	}
	p := tea.NewProgram(m, opts...)
	m.setProgram(p)
	defer m.setProgram(nil)

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "terminal labeler failed")
	}
	return nil
}

func (m *Model) setProgram(p *tea.Program) {
	m.mu.Lock()
	m.program = p
	m.mu.Unlock()
}

func (m *Model) printLines() {
	for _, line := range m.lines {
		fmt.Fprintln(m.out, line)
	}
	m.lines = nil
}

// Notify hands a directory change to the running program. It is safe to
// call from any goroutine.
func (m *Model) Notify(n watch.Notice) {
	m.mu.Lock()
	p := m.program
	m.mu.Unlock()
	if p == nil {
		log.Debugf("Dropping notice, labeler not running: %s", n.Message())
		return
	}
	p.Send(noticeMsg{notice: n})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-16, 10), 60)
	case noticeMsg:
		m.addNotice(msg.notice.Message())
		m.lines = append(m.lines, "Notice: "+msg.notice.Message())
	case tea.KeyMsg:
		m.handleKey(msg)
	}
	return m, m.flush()
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	if m.session == nil {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return
	}

	if m.finished {
		return
	}

	switch {
	case key.Matches(msg, m.keys.Prev):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Next):
		if m.selected < m.session.Catalog().Len()-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Apply):
		m.showError(m.session.ApplyLabel(m.selected))
	default:
		r, ok := shortcutRune(msg)
		if !ok {
			return
		}
		if matched, err := m.session.ApplyShortcut(r); matched {
			m.showError(err)
		}
	}
}

// shortcutRune returns the single rune typed in msg, if any.
func shortcutRune(msg tea.KeyMsg) (rune, bool) {
	if msg.Alt || msg.Paste {
		return 0, false
	}
	switch msg.Type {
	case tea.KeySpace:
		return ' ', true
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return msg.Runes[0], true
		}
	}
	return 0, false
}

// flush prints the pending console lines and quits once the run is over.
func (m *Model) flush() tea.Cmd {
	var cmds []tea.Cmd
	for _, line := range m.lines {
		cmds = append(cmds, tea.Println(line))
	}
	m.lines = nil
	if m.finished || m.quitting {
		cmds = append(cmds, tea.Quit)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Sequence(cmds...)
}

func (m *Model) showError(err error) {
	if err == nil {
		return
	}
	if errors.IsMoveFailed(err) {
		m.setStatus(statusError, fmt.Sprintf("Move failed, image kept: %v", err))
		m.lines = append(m.lines, m.status)
		return
	}
	m.setStatus(statusError, err.Error())
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) addNotice(text string) {
	m.notices = append(m.notices, text)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// OnDisplay renders a preview of the image at index. An image that cannot
// be decoded gets a placeholder and can still be labeled.
func (m *Model) OnDisplay(index int, filename string) {
	path := filepath.Join(m.session.Dir(), filename)
	img, err := imaging.Load(path, previewCols, previewRows*2)
	if err != nil {
		log.LogWithError(err).Warn("Showing placeholder")
		m.preview = renderPreview(imaging.Placeholder(previewCols, previewRows*2))
		m.caption = filename
		m.setStatus(statusWarning, fmt.Sprintf("Cannot display %s; it can still be labeled", filename))
	} else {
		m.preview = renderPreview(img)
		m.caption = fmt.Sprintf("%s  %dx%d %s  %s", filename, img.Width, img.Height, img.Format,
			humanize.Bytes(uint64(img.Size)))
	}
	m.fraction = float64(index) / float64(m.session.Len())
}

// OnProgress shows and prints the progress line.
func (m *Model) OnProgress(p session.Progress) {
	m.fraction = p.Fraction
	m.setStatus(statusInfo, report.ProgressLine(p))
	m.lines = append(m.lines, m.status)
}

// OnFinished ends the program after the last line is printed.
func (m *Model) OnFinished() {
	m.finished = true
	m.lines = append(m.lines, "Finished")
}

// View implements tea.Model
func (m *Model) View() string {
	if m.session == nil || m.quitting {
		return ""
	}
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Simple Image Labeler"))
	sb.WriteString(" " + m.styles.Dim.Render(m.session.Dir()))
	if m.cfg.Settings.DryRun {
		sb.WriteString(" " + m.styles.Warning.Render("(dry run)"))
	}
	sb.WriteString("\n\n")

	if m.finished {
		sb.WriteString(m.styles.Success.Render("Finished"))
		return m.styles.App.Render(sb.String())
	}

	if m.preview != "" {
		sb.WriteString(m.preview + "\n")
	}
	sb.WriteString(m.caption + "\n\n")
	sb.WriteString(m.renderLabels() + "\n\n")

	sb.WriteString(m.progress.ViewAs(m.fraction))
	sb.WriteString(m.styles.Dim.Render(fmt.Sprintf("  %d remaining", m.session.Remaining())))
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(m.statusStyle().Render(m.status) + "\n")
	}
	for _, n := range m.notices {
		sb.WriteString(m.styles.Notice.Render("Notice: "+n) + "\n")
	}

	m.help.ShowAll = m.showHelp
	sb.WriteString("\n" + m.help.View(m.keys))

	return m.styles.App.Render(sb.String())
}

func (m *Model) renderLabels() string {
	labels := m.session.Catalog().Labels()
	if len(labels) == 0 {
		return m.styles.Warning.Render("No labels: create sub-directories first")
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		style := m.styles.Label
		switch {
		case l.Index == m.selected:
			style = m.styles.Selected
		case !l.Shortcut.Assigned:
			style = m.styles.Dim
		}
		parts = append(parts, style.Render(l.DisplayName()))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) statusStyle() lipgloss.Style {
	switch m.statusKind {
	case statusWarning:
		return m.styles.Warning
	case statusError:
		return m.styles.Error
	default:
		return m.styles.Status
	}
}

var _ session.Listener = (*Model)(nil)
