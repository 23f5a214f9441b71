// Package logging builds the process logger and small helpers that route
// library output and channel traffic through it.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// TraceLevel is the logr verbosity used for per-message tracing.
	TraceLevel = 2
	// DebugLevel is the logr verbosity used for debug output.
	DebugLevel = 1

	defaultLogFolder = "xvim"
)

type Options struct {
	Verbosity int
	LogToFile bool
	// LogFile overrides the generated log file path.
	LogFile string
	// Console defaults to os.Stderr.
	Console io.Writer
}

type Logger struct {
	logr.Logger
	// Path of the log file, empty when logging only to the console.
	Path  string
	flush func()
	close func() error
}

// ConsoleLevel maps the -v count onto a zap level: warn, info, debug, then
// trace for anything higher.
func ConsoleLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= 0:
		return zapcore.WarnLevel
	case verbosity == 1:
		return zapcore.InfoLevel
	case verbosity == 2:
		return zapcore.DebugLevel
	default:
		return zapcore.Level(-TraceLevel)
	}
}

// New builds the logger. With LogToFile the file receives everything down to
// trace and the console only errors.
func New(opts Options) (*Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := ConsoleLevel(opts.Verbosity)
	if opts.LogToFile {
		consoleLevel = zapcore.ErrorLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(zapcore.AddSync(console)), zap.NewAtomicLevelAt(consoleLevel)),
	}

	var file *os.File
	if opts.LogToFile {
		var err error
		file, err = openLogFile(opts.LogFile)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zap.NewAtomicLevelAt(zapcore.Level(-TraceLevel))))
	}

	zapLogger := zap.New(zapcore.NewTee(cores...))
	l := &Logger{
		Logger: zapr.NewLogger(zapLogger),
		flush: func() {
			_ = zapLogger.Sync()
		},
		close: func() error { return nil },
	}
	if file != nil {
		l.Path = file.Name()
		l.close = file.Close
	}
	return l, nil
}

func (l *Logger) Flush() {
	l.flush()
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	l.flush()
	return l.close()
}

func defaultLogPath() string {
	name := fmt.Sprintf("xvim_%s_%d.log", time.Now().Format("2006-01-02_15-04-05"), os.Getpid())
	return filepath.Join(os.TempDir(), defaultLogFolder, name)
}

// openLogFile creates the log file, retrying briefly when a file with the
// generated name already exists.
func openLogFile(path string) (*os.File, error) {
	explicit := path != ""
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(20*time.Millisecond),
		backoff.WithMaxInterval(100*time.Millisecond),
		backoff.WithMaxElapsedTime(2*time.Second),
	)

	file, err := backoff.RetryWithData(func() (*os.File, error) {
		target := path
		if !explicit {
			target = defaultLogPath()
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
			return nil, backoff.Permanent(err)
		}
		flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
		if !explicit {
			flags |= os.O_EXCL
		}
		f, err := os.OpenFile(target, flags, 0o600)
		if err != nil && !errors.Is(err, fs.ErrExist) {
			return nil, backoff.Permanent(err)
		}
		return f, err
	}, backoff.WithContext(b, context.Background()))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return file, nil
}
