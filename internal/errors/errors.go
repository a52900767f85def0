// Package errors provides standardized error handling for imglabel.
// It defines the error kinds used across the labeler, typed errors carrying
// the offending path, parameter or label, and helpers for creation, wrapping
// and classification.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Filesystem error kinds
	NotFound
	NotADirectory
	MoveFailed
	DecodeFailed
	// Session error kinds
	InvalidLabel
	SessionFinished
	Locked
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Journal error kinds
	JournalFailed
)

// String returns a short name for the kind, used in log fields.
func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case NotADirectory:
		return "not_a_directory"
	case MoveFailed:
		return "move_failed"
	case DecodeFailed:
		return "decode_failed"
	case InvalidLabel:
		return "invalid_label"
	case SessionFinished:
		return "session_finished"
	case Locked:
		return "locked"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotFound:
		return "config_not_found"
	case JournalFailed:
		return "journal_failed"
	default:
		return "unknown"
	}
}

// Common error values for kind comparisons with Is.
var (
	ErrNotFound        = NewFileError("path not found", "", NotFound, nil)
	ErrNotADirectory   = NewFileError("not a directory", "", NotADirectory, nil)
	ErrMoveFailed      = NewFileError("move failed", "", MoveFailed, nil)
	ErrDecodeFailed    = NewFileError("image decode failed", "", DecodeFailed, nil)
	ErrSessionFinished = &ApplicationError{msg: "labeling session finished", kind: SessionFinished}
	ErrInvalidConfig   = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Is matches any application error of the same, known kind. This lets
// callers write errors.Is(err, errors.ErrMoveFailed).
func (e *ApplicationError) Is(target error) bool {
	k, ok := kindOf(target)
	return ok && k != Unknown && k == e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// LabelError represents errors raised while applying a label
type LabelError struct {
	ApplicationError
	index int
}

// NewLabelError creates a new label error for the label at index
func NewLabelError(msg string, index int, kind ErrorKind, err error) *LabelError {
	return &LabelError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		index: index,
	}
}

// Error returns the label error message
func (e *LabelError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: label %d: %v", e.msg, e.index, e.err)
	}
	return fmt.Sprintf("%s: label %d", e.msg, e.index)
}

// Index returns the label index associated with the error
func (e *LabelError) Index() int {
	return e.index
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// NewKind creates a new error of the given kind
func NewKind(kind ErrorKind, msg string, err error) error {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

type kinded interface {
	Kind() ErrorKind
}

func kindOf(err error) (ErrorKind, bool) {
	if k, ok := err.(kinded); ok {
		return k.Kind(), true
	}
	return Unknown, false
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := kindOf(err); ok && k != Unknown {
			return k
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsNotFound checks if the error is a path not found error
func IsNotFound(err error) bool {
	return KindOf(err) == NotFound
}

// IsNotADirectory checks if the error is a not-a-directory error
func IsNotADirectory(err error) bool {
	return KindOf(err) == NotADirectory
}

// IsMoveFailed checks if the error is a failed move
func IsMoveFailed(err error) bool {
	return KindOf(err) == MoveFailed
}

// IsDecodeFailed checks if the error is an image decode failure
func IsDecodeFailed(err error) bool {
	return KindOf(err) == DecodeFailed
}

// IsLocked checks if the error reports a directory held by another labeler
func IsLocked(err error) bool {
	return KindOf(err) == Locked
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}
