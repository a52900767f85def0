package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	// Check that the error is an ApplicationError
	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, "formatted error", appErr.Error())
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.NotNil(t, wrappedErr)
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())

	unwrappedErr := Unwrap(wrappedErr)
	assert.Equal(t, origErr, unwrappedErr)

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.NotNil(t, wrappedFormatted)
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil returns nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())

	assert.True(t, Is(wrappedErr, origErr))
	assert.True(t, Is(deepWrapped, origErr))

	// Unclassified errors never match each other by kind
	assert.False(t, Is(New("a"), New("b")))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot move", "/path/to/file", MoveFailed, nil)
	assert.NotNil(t, fileErr)
	assert.Equal(t, "cannot move: /path/to/file", fileErr.Error())
	assert.Equal(t, "/path/to/file", fileErr.Path())
	assert.Equal(t, MoveFailed, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot move", "/path/to/file", MoveFailed, origErr)
	assert.Equal(t, "cannot move: /path/to/file: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	assert.Equal(t, "path not found", ErrNotFound.Error())
	assert.Equal(t, NotFound, ErrNotFound.Kind())

	notFoundErr := NewFileError("directory not found", "/missing", NotFound, os.ErrNotExist)
	assert.True(t, IsNotFound(notFoundErr))
	assert.False(t, IsNotFound(fileErr))
	assert.True(t, errors.Is(notFoundErr, os.ErrNotExist))
}

func TestKindMatching(t *testing.T) {
	moveErr := NewFileError("failed to move file", "/img/a.jpg", MoveFailed, os.ErrNotExist)
	wrapped := fmt.Errorf("apply label: %w", moveErr)

	assert.True(t, Is(wrapped, ErrMoveFailed))
	assert.False(t, Is(wrapped, ErrNotFound))
	assert.True(t, IsMoveFailed(wrapped))
	assert.Equal(t, MoveFailed, KindOf(wrapped))

	// Wrap keeps the inner kind visible
	outer := Wrap(moveErr, "labeling")
	assert.Equal(t, MoveFailed, KindOf(outer))

	assert.Equal(t, Unknown, KindOf(nil))
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("plain")))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not a directory", NewFileError("not a directory", "/etc/passwd", NotADirectory, nil), IsNotADirectory},
		{"decode failed", NewFileError("decode", "/img/x.txt", DecodeFailed, nil), IsDecodeFailed},
		{"locked", NewKind(Locked, "directory is locked", nil), IsLocked},
		{"invalid config", NewConfigError("bad", "settings.collision", InvalidConfig, nil), IsInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("context: %w", tt.err)))
			assert.False(t, tt.check(New("other")))
		})
	}
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "display.max_width", InvalidConfig, nil)
	assert.Equal(t, "invalid value: display.max_width", configErr.Error())
	assert.Equal(t, "display.max_width", configErr.Param())

	origErr := fmt.Errorf("must be positive")
	configErr = NewConfigError("invalid value", "display.max_width", InvalidConfig, origErr)
	assert.Equal(t, "invalid value: display.max_width: must be positive", configErr.Error())
	assert.True(t, IsInvalidConfig(configErr))
}

func TestLabelError(t *testing.T) {
	labelErr := NewLabelError("label index out of range", 7, InvalidLabel, nil)
	assert.Equal(t, "label index out of range: label 7", labelErr.Error())
	assert.Equal(t, 7, labelErr.Index())
	assert.Equal(t, InvalidLabel, KindOf(labelErr))

	cause := fmt.Errorf("boom")
	labelErr = NewLabelError("apply failed", 2, MoveFailed, cause)
	assert.Equal(t, "apply failed: label 2: boom", labelErr.Error())
	assert.True(t, IsMoveFailed(labelErr))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "move_failed", MoveFailed.String())
	assert.Equal(t, "not_a_directory", NotADirectory.String())
	assert.Equal(t, "unknown", ErrorKind(999).String())
}
