// Package report prints the labeler's console output: the startup summary,
// one progress line per labeled image, and the finished notice.
package report

import (
	"fmt"
	"io"
	"strings"

	"imglabel/internal/config"
	"imglabel/internal/session"
	"imglabel/internal/watch"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Reporter writes human-readable progress. It implements session.Listener.
type Reporter struct {
	out      io.Writer
	renderer *lipgloss.Renderer

	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithTheme colours output with the theme of cfg instead of the default one.
func WithTheme(cfg *config.Config) Option {
	return func(r *Reporter) {
		r.setPalette(cfg.Theme.Info, cfg.Theme.Success, cfg.Theme.Warning, cfg.Theme.Error)
	}
}

// New creates a reporter on out. Output is coloured only when out is a
// terminal that supports it.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{out: out, renderer: lipgloss.NewRenderer(out)}
	theme := config.GetTheme("default")
	r.setPalette(theme["info"], theme["success"], theme["warning"], theme["error"])
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewPlain creates a reporter that never colours.
func NewPlain(out io.Writer) *Reporter {
	r := New(out)
	r.renderer.SetColorProfile(termenv.Ascii)
	return r
}

func (r *Reporter) setPalette(info, success, warning, failure string) {
	r.info = r.renderer.NewStyle().Foreground(lipgloss.Color(info))
	r.success = r.renderer.NewStyle().Foreground(lipgloss.Color(success))
	r.warning = r.renderer.NewStyle().Foreground(lipgloss.Color(warning))
	r.failure = r.renderer.NewStyle().Foreground(lipgloss.Color(failure))
}

// Startup prints the label list and the number of queued images.
func (r *Reporter) Startup(labels []string, images int) {
	r.println(r.info, fmt.Sprintf("Labels: %s", strings.Join(labels, ", ")))
	r.println(r.info, fmt.Sprintf("Image count %d", images))
}

// ProgressLine formats p the way the labeler prints it.
func ProgressLine(p session.Progress) string {
	return fmt.Sprintf("Img %d of %d (%.2f%%) Moving %s to label %s",
		p.Position, p.Total, p.Percent(), p.Filename, p.Label)
}

// OnProgress prints one progress line.
func (r *Reporter) OnProgress(p session.Progress) {
	fmt.Fprintln(r.out, ProgressLine(p))
}

// OnFinished prints the finished notice.
func (r *Reporter) OnFinished() {
	r.println(r.success, "Finished")
}

// OnDisplay is a no-op; the console does not echo the displayed image.
func (r *Reporter) OnDisplay(int, string) {}

// MoveFailed reports a move that left the image in place.
func (r *Reporter) MoveFailed(err error) {
	r.println(r.failure, fmt.Sprintf("Move failed, image kept: %v", err))
}

// Notice reports an external change to the directory.
func (r *Reporter) Notice(n watch.Notice) {
	r.println(r.warning, "Notice: "+n.Message())
}

func (r *Reporter) println(style lipgloss.Style, line string) {
	fmt.Fprintln(r.out, style.Render(line))
}

var _ session.Listener = (*Reporter)(nil)
