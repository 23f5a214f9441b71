// Package transport launches the embedded engine process and exposes its
// standard streams as the RPC byte transport.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

const (
	DefaultBinary = "nvim"

	// closeTimeout bounds how long Close waits for the engine to exit after
	// its stdin is closed before killing it.
	closeTimeout = 2 * time.Second
)

// Command describes the engine invocation.
type Command struct {
	// Bin is an explicit engine binary. When empty or unusable the first
	// nvim on PATH is used.
	Bin   string
	Args  []string
	Files []string
}

// SpawnError reports a failure to start the engine.
type SpawnError struct {
	Op  string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn engine (%s): %v", e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Process is a running engine. Read yields its stdout, Write feeds its
// stdin and Close shuts it down.
type Process struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     io.ReadCloser
	stderrDone <-chan struct{}
	log        logr.Logger

	waitOnce  sync.Once
	waitErr   error
	closeOnce sync.Once
	closeErr  error
}

func resolveBinary(bin string, log logr.Logger) (string, error) {
	if bin != "" {
		path, err := exec.LookPath(bin)
		if err == nil {
			return path, nil
		}
		log.Error(err, "XVIM_BIN is invalid, falling back to the first nvim in PATH", "bin", bin)
	}
	path, err := exec.LookPath(DefaultBinary)
	if err != nil {
		return "", &SpawnError{Op: "lookup", Err: err}
	}
	return path, nil
}

// argv returns the engine argument vector: --embed, the pass-through engine
// arguments, then the files to open.
func (c Command) argv() []string {
	args := make([]string, 0, 1+len(c.Args)+len(c.Files))
	args = append(args, "--embed")
	args = append(args, c.Args...)
	return append(args, c.Files...)
}

// Launch starts the engine. Cancelling ctx closes the engine's stdin and
// kills it if it has not exited within closeTimeout.
func Launch(ctx context.Context, log logr.Logger, c Command) (*Process, error) {
	path, err := resolveBinary(c.Bin, log)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, c.argv()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Err: err}
	}
	startStderr, err := stderrSink(cmd, log)
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Err: err}
	}
	cmd.Cancel = stdin.Close
	cmd.WaitDelay = closeTimeout

	log.Info("Starting engine", "path", path, "args", cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Op: "start", Err: err}
	}

	return &Process{
		cmd:        cmd,
		stdin:      stdin,
		stdout:     stdout,
		stderrDone: startStderr(),
		log:        log,
	}, nil
}

func (p *Process) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

func (p *Process) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Wait reaps the engine. It is safe to call more than once.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		<-p.stderrDone
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}

// Close closes the engine's stdin, which asks an embedded engine to exit, and
// reaps it.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		if err := p.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			p.closeErr = err
		}

		exited := make(chan error, 1)
		go func() { exited <- p.Wait() }()

		var err error
		select {
		case err = <-exited:
		case <-time.After(closeTimeout):
			p.log.Info("Engine did not exit after stdin closed, killing it", "pid", p.Pid())
			_ = p.cmd.Process.Kill()
			err = <-exited
		}
		if err != nil {
			p.log.V(1).Info("Engine exited", "error", err.Error())
		}
	})
	return p.closeErr
}
