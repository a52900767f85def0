// Package log is the labeler's levelled, structured logger. It keeps a small
// package-level API for everyday use and an instance Logger for components
// that carry their own fields. Output is produced by logrus.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"imglabel/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus entry with the fields accumulated through With.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out  io.Writer
	json bool
	file string
}

// Option configures a Logger.
type Option func(*options)

// WithOutput directs log lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends log lines to the file at path.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// NewLogger creates a logger. Without options it writes text lines to stdout.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timeLayout,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg:  "message",
				logrus.FieldKeyTime: "timestamp",
			},
		})
	} else {
		base.SetFormatter(&formatter{})
	}

	l := &Logger{}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.file, err)
		} else {
			l.file = f
			out = io.MultiWriter(o.out, f)
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger and closes the previous one.
func Configure(opts ...Option) {
	old := logger
	logger = NewLogger(opts...)
	if err := old.Close(); err != nil {
		logger.WithError(err).Warn("Cannot close previous log file")
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return logger
}

// Close releases the log file opened by WithFile, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	return f.Close()
}

// SetDebug toggles debug output for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to subsequent entries.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// WithError attaches err and, for application errors, its kind and subject.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error())}
	if kind := errors.KindOf(err); kind != errors.Unknown {
		fields = append(fields, F("error_kind", kind.String()))
	}
	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var labelErr *errors.LabelError
	if errors.As(err, &labelErr) {
		fields = append(fields, F("label_index", labelErr.Index()))
	}
	return l.With(fields...)
}

func (l *Logger) log(level logrus.Level, skip int, msg string) {
	entry := l.entry
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		entry = entry.WithField(callerKey, fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

func (l *Logger) Info(args ...interface{}) { l.log(logrus.InfoLevel, 1, fmt.Sprint(args...)) }
func (l *Logger) Warn(args ...interface{}) { l.log(logrus.WarnLevel, 1, fmt.Sprint(args...)) }
func (l *Logger) Error(args ...interface{}) {
	l.log(logrus.ErrorLevel, 1, fmt.Sprint(args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(logrus.InfoLevel, 1, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(logrus.WarnLevel, 1, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, 1, fmt.Sprintf(format, args...))
}

// Debug logs only when SetDebug(true) is in effect.
func (l *Logger) Debug(args ...interface{}) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, 1, fmt.Sprint(args...))
	}
}

// Debugf logs a formatted message only when SetDebug(true) is in effect.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, 1, fmt.Sprintf(format, args...))
	}
}

// LogWithFields returns the package-level logger carrying fields.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package-level logger carrying err.
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	logger.WithError(err).log(logrus.ErrorLevel, 1, msg)
}

func Info(args ...interface{}) { logger.log(logrus.InfoLevel, 1, fmt.Sprint(args...)) }

func Infof(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, 1, fmt.Sprintf(format, args...))
}

func Warn(args ...interface{}) { logger.log(logrus.WarnLevel, 1, fmt.Sprint(args...)) }

func Warnf(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, 1, fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) { logger.log(logrus.ErrorLevel, 1, fmt.Sprint(args...)) }

func Errorf(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, 1, fmt.Sprintf(format, args...))
}

func Debug(args ...interface{}) {
	if isDebug.Load() {
		logger.log(logrus.DebugLevel, 1, fmt.Sprint(args...))
	}
}

func Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		logger.log(logrus.DebugLevel, 1, fmt.Sprintf(format, args...))
	}
}
