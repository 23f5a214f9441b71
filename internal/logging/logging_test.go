package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, ConsoleLevel(0))
	assert.Equal(t, zapcore.InfoLevel, ConsoleLevel(1))
	assert.Equal(t, zapcore.DebugLevel, ConsoleLevel(2))
	assert.Equal(t, zapcore.Level(-2), ConsoleLevel(3))
	assert.Equal(t, zapcore.Level(-2), ConsoleLevel(9))
}

func TestConsoleVerbosity(t *testing.T) {
	var quiet bytes.Buffer
	l, err := New(Options{Console: &quiet})
	require.NoError(t, err)
	l.Info("chatty")
	l.Error(errors.New("boom"), "broken")
	l.Flush()
	assert.NotContains(t, quiet.String(), "chatty")
	assert.Contains(t, quiet.String(), "broken")

	var loud bytes.Buffer
	l, err = New(Options{Verbosity: 3, Console: &loud})
	require.NoError(t, err)
	l.V(TraceLevel).Info("tracing")
	l.Flush()
	assert.Contains(t, loud.String(), "tracing")
}

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "xvim.log")
	var console bytes.Buffer

	l, err := New(Options{Verbosity: 3, LogToFile: true, LogFile: path, Console: &console})
	require.NoError(t, err)
	assert.Equal(t, path, l.Path)

	l.V(TraceLevel).Info("into the file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "into the file")
	assert.Empty(t, console.String())
}

func TestSenderDelivers(t *testing.T) {
	ch := make(chan int, 1)
	s := NewSender[int](ch, "numbers", logr.Discard())

	require.NoError(t, s.Send(context.Background(), 7))
	assert.Equal(t, 7, <-ch)
	assert.Equal(t, "numbers", s.Name())
}

func TestSenderStopsOnCancel(t *testing.T) {
	stop := errors.New("engine exited")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(stop)

	s := NewSender[int](make(chan int), "blocked", logr.Discard())
	assert.ErrorIs(t, s.Send(ctx, 1), stop)
}

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Verbosity: 2, Console: &buf})
	require.NoError(t, err)

	Logf(l.Logger)("rpc: %s %d\n", "dropped", 3)
	l.Flush()
	assert.Contains(t, buf.String(), "rpc: dropped 3")
}
