//go:build !nogui

package gui

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"imglabel/internal/catalog"
	"imglabel/internal/config"
	"imglabel/internal/log"
	"imglabel/internal/organize"
	"imglabel/internal/queue"
	"imglabel/internal/report"
	"imglabel/internal/session"
	"imglabel/internal/watch"
	"imglabel/pkg/testutils"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp builds a window over dir with labels cat and dog and the given
// PNG images, attached to a fresh session.
func newTestApp(t *testing.T, images ...string) (*App, *session.Session, string) {
	t.Helper()
	testApp := test.NewApp()

	dir := t.TempDir()
	testutils.CreateLabelDirs(t, dir, "cat", "dog")
	for _, name := range images {
		testutils.WritePNG(t, dir, name, 800, 400)
	}
	cat, err := catalog.BuildCatalog(dir)
	require.NoError(t, err)
	files, err := queue.BuildQueue(dir, queue.Filter{})
	require.NoError(t, err)

	cfg := config.NewTestConfig()
	a := newApp(testApp, cfg)
	s := session.New(dir, cat, files, organize.NewWithConfig(cfg),
		session.WithListener(a), session.WithLogger(log.NewLogger(log.WithOutput(io.Discard))))
	a.Attach(s)
	return a, s, dir
}

func TestButtons(t *testing.T) {
	cat := catalog.New("/d", []string{"cat", "banana", "b"})
	assert.Equal(t, []LabelButton{
		{LabelIndex: 0, Text: "[b]"},
		{LabelIndex: 1, Text: "b[a]nana"},
		{LabelIndex: 2, Text: "[c]at"},
	}, Buttons(cat))
}

func TestWindowLayout(t *testing.T) {
	a, _, dir := newTestApp(t, "a.png")

	require.Len(t, a.buttons, 2)
	assert.Equal(t, "[c]at", a.buttons[0].Text)
	assert.Equal(t, 0, a.buttons[0].config.LabelIndex)
	assert.Equal(t, "[d]og", a.buttons[1].Text)
	assert.Equal(t, 1, a.buttons[1].config.LabelIndex)
	assert.Equal(t, "Simple Image Labeler - "+dir, a.Window().Title())
	assert.Equal(t, canvas.ImageFillContain, a.image.FillMode)
}

func TestStartDisplaysFirstImage(t *testing.T) {
	a, s, _ := newTestApp(t, "a.png", "b.png")

	require.True(t, a.start())
	assert.Equal(t, 0, s.Cursor())
	require.NotNil(t, a.image.Image)
	assert.Equal(t, 500, a.image.Image.Bounds().Dx(), "scaled to the display box")
	assert.Equal(t, 250, a.image.Image.Bounds().Dy())
	assert.Contains(t, a.caption.Text, "a.png")
	assert.Contains(t, a.caption.Text, "800x400")
}

func TestButtonTapLabelsImage(t *testing.T) {
	a, s, dir := newTestApp(t, "a.png", "b.png")
	require.True(t, a.start())

	test.Tap(a.buttons[1])
	assert.FileExists(t, filepath.Join(dir, "dog", "a.png"))
	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, "Img 1 of 2 (50.00%) Moving a.png to label dog", a.status.Text)
	assert.Contains(t, a.caption.Text, "b.png")

	test.Tap(a.buttons[0])
	assert.FileExists(t, filepath.Join(dir, "cat", "b.png"))
	assert.Equal(t, session.Finished, s.State())
	assert.True(t, a.finished)
	assert.True(t, a.buttons[0].Disabled())
}

func TestShortcutLabelsImage(t *testing.T) {
	a, s, dir := newTestApp(t, "a.png")
	require.True(t, a.start())

	a.TypeRune('x')
	assert.Equal(t, 0, s.Cursor(), "unknown runes are ignored")

	a.TypeRune('c')
	assert.FileExists(t, filepath.Join(dir, "cat", "a.png"))
	assert.True(t, a.finished)

	a.TypeRune('d')
	assert.Equal(t, session.Finished, s.State())
}

func TestMoveFailureKeepsImage(t *testing.T) {
	a, s, dir := newTestApp(t, "a.png")
	var out bytes.Buffer
	a.opts.reporter = report.NewPlain(&out)
	require.True(t, a.start())

	require.NoError(t, os.Remove(filepath.Join(dir, "cat")))
	test.Tap(a.buttons[0])

	assert.Equal(t, 0, s.Cursor())
	assert.FileExists(t, filepath.Join(dir, "a.png"))
	assert.Contains(t, a.status.Text, "Move failed")
	assert.Contains(t, out.String(), "Move failed, image kept")
	assert.False(t, a.finished)
}

func TestUndecodableImageShowsPlaceholder(t *testing.T) {
	a, s, dir := newTestApp(t)
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"notes.txt": "not an image"})
	files, err := queue.BuildQueue(dir, queue.Filter{})
	require.NoError(t, err)
	s = session.New(dir, s.Catalog(), files, organize.New(), session.WithListener(a))
	a.Attach(s)

	require.True(t, a.start())
	require.NotNil(t, a.image.Image)
	assert.Equal(t, 500, a.image.Image.Bounds().Dx())
	assert.Contains(t, a.status.Text, "Cannot display notes.txt")

	// The file can still be labeled.
	a.TypeRune('d')
	assert.FileExists(t, filepath.Join(dir, "dog", "notes.txt"))
	assert.True(t, a.finished)
}

func TestEmptyQueueDoesNotRun(t *testing.T) {
	a, s, _ := newTestApp(t)
	assert.False(t, a.start())
	assert.Equal(t, session.Finished, s.State())
	assert.NoError(t, a.Run())
}

func TestNotify(t *testing.T) {
	a, _, _ := newTestApp(t, "a.png")
	var out bytes.Buffer
	a.opts.reporter = report.NewPlain(&out)

	a.Notify(watch.Notice{Kind: watch.LabelRemoved, Name: "cat"})
	assert.Equal(t, "label cat was removed; moves into it will fail", a.status.Text)
	assert.Contains(t, out.String(), "Notice: label cat was removed")
}

func TestAvailable(t *testing.T) {
	assert.True(t, Available())
}
