package tui

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"imglabel/internal/catalog"
	"imglabel/internal/config"
	"imglabel/internal/log"
	"imglabel/internal/organize"
	"imglabel/internal/queue"
	"imglabel/internal/session"
	"imglabel/internal/watch"
	"imglabel/pkg/testutils"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, labels []string, images ...string) (*Model, *session.Session, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.CreateLabelDirs(t, dir, labels...)
	for _, name := range images {
		testutils.WritePNG(t, dir, name, 800, 400)
	}
	return attach(t, dir, config.NewTestConfig())
}

func attach(t *testing.T, dir string, cfg *config.Config) (*Model, *session.Session, string) {
	t.Helper()
	cat, err := catalog.BuildCatalog(dir)
	require.NoError(t, err)
	files, err := queue.BuildQueue(dir, queue.Filter{})
	require.NoError(t, err)

	m := New(cfg, WithOutput(io.Discard))
	s := session.New(dir, cat, files, organize.NewWithConfig(cfg),
		session.WithListener(m), session.WithLogger(log.NewLogger(log.WithOutput(io.Discard))))
	m.Attach(s)
	return m, s, dir
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func view(m *Model) string {
	return testutils.StripANSI(m.View())
}

func TestAttachRegistersShortcuts(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"cat", "dog", "d"})

	// "d" sorts before dog and takes 'd'; dog falls back to 'o'.
	require.Len(t, m.keys.Labels, 3)
	assert.Equal(t, "c", m.keys.Labels[0].Help().Key)
	assert.Equal(t, "cat", m.keys.Labels[0].Help().Desc)
	assert.Equal(t, "d", m.keys.Labels[1].Help().Key)
	assert.Equal(t, "o", m.keys.Labels[2].Help().Key)
}

func TestShortcutLabelsImage(t *testing.T) {
	m, s, dir := newTestModel(t, []string{"cat", "dog"}, "a.png", "b.png")
	s.Start()

	_, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd, "unknown runes are ignored")
	assert.Equal(t, 0, s.Cursor())

	_, cmd = m.Update(runes("d"))
	assert.NotNil(t, cmd, "progress line is printed")
	assert.FileExists(t, filepath.Join(dir, "dog", "a.png"))
	assert.Equal(t, "Img 1 of 2 (50.00%) Moving a.png to label dog", m.status)
	assert.Contains(t, m.caption, "b.png")
	assert.False(t, m.finished)

	_, cmd = m.Update(runes("c"))
	require.NotNil(t, cmd)
	assert.FileExists(t, filepath.Join(dir, "cat", "b.png"))
	assert.True(t, m.finished)
	assert.Equal(t, session.Finished, s.State())
	assert.Contains(t, view(m), "Finished")

	m.Update(runes("d"))
	assert.Equal(t, 2, s.Cursor(), "input after the last image is ignored")
}

func TestSelectAndApplyLabelWithoutShortcut(t *testing.T) {
	// "a" claims 'a', leaving "aa" without a shortcut.
	m, s, dir := newTestModel(t, []string{"a", "aa"}, "img.png")
	s.Start()

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.selected, "selection stays on the first label")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.selected, "selection stops at the last label")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.FileExists(t, filepath.Join(dir, "aa", "img.png"))
	assert.True(t, m.finished)
}

func TestSpaceShortcut(t *testing.T) {
	m, s, dir := newTestModel(t, []string{" x"}, "a.png")
	s.Start()

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.FileExists(t, filepath.Join(dir, " x", "a.png"))
}

func TestQuitKeepsRemainingImages(t *testing.T) {
	m, s, dir := newTestModel(t, []string{"cat"}, "a.png")
	s.Start()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.FileExists(t, filepath.Join(dir, "a.png"))
	assert.Empty(t, m.View())

	m, s, _ = newTestModel(t, []string{"cat"}, "a.png")
	s.Start()
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestMoveFailureKeepsImage(t *testing.T) {
	m, s, dir := newTestModel(t, []string{"cat", "dog"}, "a.png")
	s.Start()

	require.NoError(t, os.Remove(filepath.Join(dir, "cat")))
	_, cmd := m.Update(runes("c"))

	assert.NotNil(t, cmd, "failure is echoed to the console")
	assert.Equal(t, 0, s.Cursor())
	assert.FileExists(t, filepath.Join(dir, "a.png"))
	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "Move failed, image kept")
	assert.False(t, m.finished)

	m.Update(runes("d"))
	assert.FileExists(t, filepath.Join(dir, "dog", "a.png"))
	assert.True(t, m.finished)
}

func TestUndecodableImageShowsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateLabelDirs(t, dir, "docs")
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"notes.txt": "not an image"})
	m, s, _ := attach(t, dir, config.NewTestConfig())
	s.Start()

	assert.NotEmpty(t, m.preview)
	assert.Equal(t, statusWarning, m.statusKind)
	assert.Contains(t, m.status, "Cannot display notes.txt")

	m.Update(runes("d"))
	assert.FileExists(t, filepath.Join(dir, "docs", "notes.txt"))
	assert.True(t, m.finished)
}

func TestView(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateLabelDirs(t, dir, "banana", "cat")
	testutils.WritePNG(t, dir, "a.png", 800, 400)
	cfg := config.NewTestConfig()
	cfg.Settings.DryRun = true
	m, s, _ := attach(t, dir, cfg)
	s.Start()

	out := view(m)
	alsrt.Contains(t, out, "Simple Image Labeler")
	alsrt.Contains(t, out, "(dry run)")
	alsrt.Contains(t, out, "[b]anana")
	alsrt.Contains(t, out, "[c]at")
	alsrt.Contains(t, out, "a.png  800x400 png")
	alsrt.Contains(t, out, "1 remaining")
	alsrt.Contains(t, out, "0%")
	alsrt.Contains(t, out, "▀")
}

func TestViewWithoutLabels(t *testing.T) {
	m, s, _ := newTestModel(t, nil, "a.png")
	s.Start()
	alsrt.Contains(t, view(m), "No labels")
}

func TestHelpToggle(t *testing.T) {
	m, s, _ := newTestModel(t, []string{"cat"}, "a.png")
	s.Start()
	alsrt.False(t, strings.Contains(view(m), "previous label"))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.showHelp)
	out := view(m)
	alsrt.Contains(t, out, "previous label")
	alsrt.Contains(t, out, "cat")
}

func TestNoticeMessages(t *testing.T) {
	m, s, _ := newTestModel(t, []string{"cat"}, "a.png")
	s.Start()

	for _, name := range []string{"b.png", "c.png", "d.png", "e.png"} {
		_, cmd := m.Update(noticeMsg{notice: watch.Notice{Kind: watch.FileAdded, Name: name}})
		assert.NotNil(t, cmd)
	}
	require.Len(t, m.notices, maxNotices)
	out := view(m)
	alsrt.Contains(t, out, "e.png")
	alsrt.False(t, strings.Contains(out, "b.png"))

	// Without a running program notices are dropped.
	m.Notify(watch.Notice{Kind: watch.LabelRemoved, Name: "cat"})
}

func TestRunEmptyQueue(t *testing.T) {
	m, s, _ := newTestModel(t, []string{"cat"})
	var out bytes.Buffer
	m.out = &out

	require.NoError(t, m.Run())
	assert.Equal(t, session.Finished, s.State())
	assert.Equal(t, "Finished\n", out.String())
}

func TestRunReadsKeysFromInput(t *testing.T) {
	m, s, dir := newTestModel(t, []string{"cat"}, "a.jpg")
	var out bytes.Buffer
	m.out = &out
	WithInput(strings.NewReader("\x03"))(m)

	require.NoError(t, m.Run())
	assert.True(t, m.quitting)
	assert.Equal(t, 1, s.Remaining())
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
}

func TestRunWithoutSession(t *testing.T) {
	assert.Error(t, New(config.NewTestConfig()).Run())
}

func TestWindowSize(t *testing.T) {
	m, _, _ := newTestModel(t, []string{"cat"})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 60, m.progress.Width)
	assert.Equal(t, 100, m.help.Width)

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 40})
	assert.Equal(t, 10, m.progress.Width)
}

func TestRenderPreview(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	lines := strings.Split(testutils.StripANSI(renderPreview(img)), "\n")
	require.Len(t, lines, 2, "two pixel rows per line")
	assert.Equal(t, "▀▀▀▀", lines[0])
	assert.Equal(t, "▀▀▀▀", lines[1])

	assert.Equal(t, "#c80000", string(hexColor(color.RGBA{R: 200, A: 255})))
}
