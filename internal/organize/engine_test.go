package organize

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMoveToLabel(t *testing.T) {
	t.Run("moves into label directory", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat", "dog")
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "a"})

		dest, err := New().MoveToLabel(dir, "a.jpg", "cat")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "cat", "a.jpg"), dest)
		assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))
		assert.Equal(t, "a", readFile(t, dest))
	})

	t.Run("missing label directory fails without creating it", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "a"})

		_, err := New().MoveToLabel(dir, "a.jpg", "gone")
		require.Error(t, err)
		assert.True(t, errors.IsMoveFailed(err))
		assert.True(t, errors.Is(err, errors.ErrMoveFailed))
		assert.FileExists(t, filepath.Join(dir, "a.jpg"))
		assert.NoDirExists(t, filepath.Join(dir, "gone"))
	})

	t.Run("label path that is a file fails", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "a", "cat": "not a dir"})

		_, err := New().MoveToLabel(dir, "a.jpg", "cat")
		require.Error(t, err)
		assert.True(t, errors.IsMoveFailed(err))
		assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	})

	t.Run("missing source fails", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat")

		_, err := New().MoveToLabel(dir, "a.jpg", "cat")
		require.Error(t, err)
		assert.True(t, errors.IsMoveFailed(err))

		var fileErr *errors.FileError
		require.True(t, errors.As(err, &fileErr))
		assert.Equal(t, filepath.Join(dir, "a.jpg"), fileErr.Path())
	})
}

func TestMoveToLabelRejects(t *testing.T) {
	t.Run("empty label resolves to the source", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "a"})
		path := filepath.Join(dir, "a.jpg")

		_, err := New().MoveToLabel(dir, "a.jpg", "")
		assert.True(t, errors.IsMoveFailed(err))
		assert.FileExists(t, path)
	})

	t.Run("directory as source", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat", "dog")

		_, err := New().MoveToLabel(dir, "cat", "dog")
		assert.True(t, errors.IsMoveFailed(err))
		assert.DirExists(t, filepath.Join(dir, "cat"))
	})
}

func TestCollisionHandling(t *testing.T) {
	setup := func(t *testing.T) string {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat")
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "new"})
		testutils.CreateTestFilesWithContent(t, filepath.Join(dir, "cat"), map[string]string{"a.jpg": "old"})
		return dir
	}
	engineWith := func(collision string) *Engine {
		cfg := config.NewTestConfig()
		cfg.Settings.Collision = collision
		return NewWithConfig(cfg)
	}

	t.Run("overwrite", func(t *testing.T) {
		dir := setup(t)
		dest, err := engineWith(config.CollisionOverwrite).MoveToLabel(dir, "a.jpg", "cat")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "cat", "a.jpg"), dest)
		assert.Equal(t, "new", readFile(t, dest))
		assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))
	})

	t.Run("rename", func(t *testing.T) {
		dir := setup(t)
		dest, err := engineWith(config.CollisionRename).MoveToLabel(dir, "a.jpg", "cat")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "cat", "a_(1).jpg"), dest)
		assert.Equal(t, "new", readFile(t, dest))
		assert.Equal(t, "old", readFile(t, filepath.Join(dir, "cat", "a.jpg")))
	})

	t.Run("rename skips taken suffixes", func(t *testing.T) {
		dir := setup(t)
		testutils.CreateTestFilesWithContent(t, filepath.Join(dir, "cat"), map[string]string{"a_(1).jpg": "older"})
		dest, err := engineWith(config.CollisionRename).MoveToLabel(dir, "a.jpg", "cat")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "cat", "a_(2).jpg"), dest)
	})

	t.Run("fail", func(t *testing.T) {
		dir := setup(t)
		_, err := engineWith(config.CollisionFail).MoveToLabel(dir, "a.jpg", "cat")
		require.Error(t, err)
		assert.True(t, errors.IsMoveFailed(err))
		assert.True(t, errors.Is(err, os.ErrExist))
		assert.Equal(t, "new", readFile(t, filepath.Join(dir, "a.jpg")))
		assert.Equal(t, "old", readFile(t, filepath.Join(dir, "cat", "a.jpg")))
	})

	t.Run("unknown strategy", func(t *testing.T) {
		dir := setup(t)
		e := New()
		e.collision = "shuffle"
		_, err := e.MoveToLabel(dir, "a.jpg", "cat")
		assert.True(t, errors.IsMoveFailed(err))
	})
}

func TestDryRun(t *testing.T) {
	dir := t.TempDir()
	testutils.CreateLabelDirs(t, dir, "cat")
	testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "a"})

	cfg := config.NewTestConfig()
	cfg.Settings.DryRun = true
	e := NewWithConfig(cfg)
	assert.True(t, e.dryRun)

	dest, err := e.MoveToLabel(dir, "a.jpg", "cat")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cat", "a.jpg"), dest)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	assert.NoFileExists(t, dest)
}

func TestCrossDeviceFallback(t *testing.T) {
	exdev := func(src, dest string) error {
		return &os.LinkError{Op: "rename", Old: src, New: dest, Err: syscall.EXDEV}
	}

	t.Run("copies and removes source", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat")
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "payload"})

		e := New()
		e.rename = exdev
		dest, err := e.MoveToLabel(dir, "a.jpg", "cat")
		require.NoError(t, err)
		assert.Equal(t, "payload", readFile(t, dest))
		assert.NoFileExists(t, filepath.Join(dir, "a.jpg"))

		entries, err := os.ReadDir(filepath.Join(dir, "cat"))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary copy should remain")
	})

	t.Run("other rename errors are not retried", func(t *testing.T) {
		dir := t.TempDir()
		testutils.CreateLabelDirs(t, dir, "cat")
		testutils.CreateTestFilesWithContent(t, dir, map[string]string{"a.jpg": "payload"})

		e := New()
		e.rename = func(src, dest string) error {
			return &os.LinkError{Op: "rename", Old: src, New: dest, Err: syscall.EACCES}
		}
		_, err := e.MoveToLabel(dir, "a.jpg", "cat")
		assert.True(t, errors.IsMoveFailed(err))
		assert.FileExists(t, filepath.Join(dir, "a.jpg"))
		assert.NoFileExists(t, filepath.Join(dir, "cat", "a.jpg"))
	})

	assert.True(t, isCrossDevice(exdev("a", "b")))
	assert.False(t, isCrossDevice(os.ErrNotExist))
}

func TestMoverFactory(t *testing.T) {
	defer ResetMoverFactory()

	var got *config.Config
	SetMoverFactory(func(cfg *config.Config) Mover {
		got = cfg
		return New()
	})

	cfg := config.NewTestConfig()
	m := CurrentMoverFactory(cfg)
	assert.NotNil(t, m)
	assert.Same(t, cfg, got)

	ResetMoverFactory()
	_, ok := CurrentMoverFactory(cfg).(*Engine)
	assert.True(t, ok)
}
