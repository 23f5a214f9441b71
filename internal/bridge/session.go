package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/go-logr/logr"
	"github.com/neovim/go-client/nvim"

	"xvim/internal/logging"
)

// ErrEngineExited is the cancellation cause once the RPC I/O loop ends.
var ErrEngineExited = errors.New("engine exited")

// IsChannelClosed reports whether err only says that the RPC stream was
// closed, which is how every normal engine exit looks.
func IsChannelClosed(err error) bool {
	return err == nil ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, net.ErrClosed)
}

// Session is an RPC connection to the engine over a byte stream.
type Session struct {
	*nvim.Nvim
	done chan struct{}
	err  error
	log  logr.Logger
}

// NewSession builds the RPC client over rwc. Handlers must be registered
// before Serve.
func NewSession(rwc io.ReadWriteCloser, log logr.Logger) (*Session, error) {
	v, err := nvim.New(rwc, rwc, rwc, logging.Logf(log))
	if err != nil {
		return nil, fmt.Errorf("create rpc session: %w", err)
	}
	return &Session{
		Nvim: v,
		done: make(chan struct{}),
		log:  log,
	}, nil
}

// Serve starts the I/O loop in its own goroutine.
func (s *Session) Serve() {
	go func() {
		s.err = s.Nvim.Serve()
		close(s.done)
	}()
}

// Done is closed when the I/O loop ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err is the I/O loop result. It is only meaningful once Done is closed.
func (s *Session) Err() error {
	return s.err
}

// Supervise waits for the I/O loop to finish and cancels the run. Clean
// closes are logged quietly; anything else is reported as an error.
func Supervise(ctx context.Context, s *Session, cancel context.CancelCauseFunc) {
	s.log.V(1).Info("Close watcher started")

	select {
	case <-s.Done():
	case <-ctx.Done():
		return
	}

	err := s.Err()
	if IsChannelClosed(err) {
		s.log.Info("Engine connection closed")
		cancel(ErrEngineExited)
		return
	}
	s.log.Error(err, "Engine I/O loop failed")
	cancel(fmt.Errorf("%w: %w", ErrEngineExited, err))
}
