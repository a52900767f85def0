//go:build !nogui

package gui

import (
	"fmt"
	"path/filepath"

	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/internal/imaging"
	"imglabel/internal/log"
	"imglabel/internal/report"
	"imglabel/internal/session"
	"imglabel/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// App is the labeling window: the current image, one button per label and a
// status area. It implements session.Listener.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     *config.Config
	opts    options
	session *session.Session

	image    *canvas.Image
	caption  *widget.Label
	status   *widget.Label
	progress *widget.ProgressBar
	buttons  []*labelButton

	shown    bool
	finished bool
}

// labelButton is a button that knows which label it applies.
type labelButton struct {
	widget.Button
	config LabelButton
}

func newLabelButton(cfg LabelButton, apply func(LabelButton)) *labelButton {
	b := &labelButton{config: cfg}
	b.Text = cfg.Text
	b.OnTapped = func() { apply(b.config) }
	b.ExtendBaseWidget(b)
	return b
}

// Available returns whether the GUI is available in this build
func Available() bool {
	return true
}

// NewApp creates the labeling window.
func NewApp(cfg *config.Config, opts ...Option) *App {
	return newApp(app.NewWithID("io.github.imglabel"), cfg, opts...)
}

func newApp(fyneApp fyne.App, cfg *config.Config, opts ...Option) *App {
	a := &App{
		fyneApp: fyneApp,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(&a.opts)
	}

	a.window = fyneApp.NewWindow("Simple Image Labeler")

	a.image = canvas.NewImageFromImage(nil)
	a.image.FillMode = canvas.ImageFillContain
	a.image.ScaleMode = canvas.ImageScaleSmooth
	a.image.SetMinSize(fyne.NewSize(float32(cfg.Display.MaxWidth), float32(cfg.Display.MaxHeight)))

	a.caption = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true})
	a.status = widget.NewLabel("")
	a.status.Wrapping = fyne.TextWrapWord
	a.progress = widget.NewProgressBar()
	return a
}

// Attach binds the window to s and builds its content.
func (a *App) Attach(s *session.Session) {
	a.session = s

	title := fmt.Sprintf("Simple Image Labeler - %s", s.Dir())
	if a.cfg.Settings.DryRun {
		title += " (dry run)"
	}
	a.window.SetTitle(title)

	buttonBox := container.NewVBox()
	a.buttons = a.buttons[:0]
	for _, cfg := range Buttons(s.Catalog()) {
		b := newLabelButton(cfg, a.applyButton)
		a.buttons = append(a.buttons, b)
		buttonBox.Add(b)
	}
	if len(a.buttons) == 0 {
		buttonBox.Add(widget.NewLabel("No labels: create sub-directories first"))
	}

	content := container.NewBorder(
		nil,
		container.NewVBox(a.caption, a.progress, a.status),
		container.NewVScroll(buttonBox),
		nil,
		container.NewCenter(a.image),
	)
	a.window.SetContent(content)

	a.window.Canvas().SetOnTypedRune(a.TypeRune)
	a.window.Canvas().SetOnTypedKey(func(ke *fyne.KeyEvent) {
		if ke.Name == fyne.KeyEscape {
			a.window.Close()
		}
	})
}

// Run shows the window, starts the session and blocks until the window
// closes. An empty queue returns immediately.
func (a *App) Run() error {
	if !a.start() {
		return nil
	}
	a.fyneApp.Run()
	return nil
}

func (a *App) start() bool {
	if a.session == nil {
		log.Error("No session attached to window")
		return false
	}
	if a.finished {
		return false
	}
	a.window.Show()
	a.shown = true
	a.session.Start()
	return !a.finished
}

// TypeRune applies the label whose shortcut is r. Other runes are ignored.
func (a *App) TypeRune(r rune) {
	if a.finished || a.session == nil {
		return
	}
	ok, err := a.session.ApplyShortcut(r)
	if ok && err != nil {
		a.showError(err)
	}
}

func (a *App) applyButton(b LabelButton) {
	if a.finished {
		return
	}
	if err := a.session.ApplyLabel(b.LabelIndex); err != nil {
		a.showError(err)
	}
	// Keep typed runes going to the canvas shortcut handler.
	a.window.Canvas().Unfocus()
}

func (a *App) showError(err error) {
	if errors.IsMoveFailed(err) {
		a.status.SetText(fmt.Sprintf("Move failed, image kept: %v", err))
		if a.opts.reporter != nil {
			a.opts.reporter.MoveFailed(err)
		}
		return
	}
	a.status.SetText(err.Error())
}

// OnDisplay loads and shows the image at index. An image that cannot be
// decoded is replaced by a placeholder and can still be labeled.
func (a *App) OnDisplay(index int, filename string) {
	maxW, maxH := a.cfg.Display.MaxWidth, a.cfg.Display.MaxHeight
	path := filepath.Join(a.session.Dir(), filename)

	img, err := imaging.Load(path, maxW, maxH)
	if err != nil {
		log.LogWithError(err).Warn("Showing placeholder")
		a.image.Image = imaging.Placeholder(maxW, maxH)
		a.caption.SetText(filename)
		a.status.SetText(fmt.Sprintf("Cannot display %s; it can still be labeled", filename))
	} else {
		a.image.Image = img
		a.caption.SetText(fmt.Sprintf("%s  %dx%d  %s", filename, img.Width, img.Height, humanize.Bytes(uint64(img.Size))))
	}
	a.image.Refresh()
	a.progress.SetValue(float64(index) / float64(a.session.Len()))
}

// OnProgress shows the progress line of the last labeling action.
func (a *App) OnProgress(p session.Progress) {
	a.progress.SetValue(p.Fraction)
	a.status.SetText(report.ProgressLine(p))
}

// OnFinished closes the window.
func (a *App) OnFinished() {
	a.finished = true
	for _, b := range a.buttons {
		b.Disable()
	}
	if a.shown {
		a.window.Close()
	}
}

// Notify shows an external directory change in the status area.
func (a *App) Notify(n watch.Notice) {
	a.status.SetText(n.Message())
	if a.opts.reporter != nil {
		a.opts.reporter.Notice(n)
	}
}

// Window returns the labeling window.
func (a *App) Window() fyne.Window {
	return a.window
}

var _ session.Listener = (*App)(nil)
