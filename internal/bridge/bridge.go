// Package bridge owns the connection to the embedded engine: it launches the
// process, serves the RPC session, negotiates capabilities and watches for
// the engine going away.
package bridge

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"xvim/internal/host"
	"xvim/internal/settings"
	"xvim/internal/transport"
)

type Options struct {
	Command   transport.Command
	Geometry  settings.Geometry
	MultiGrid bool
	// Version is announced to the engine with nvim_set_client_info.
	Version string

	Registry *settings.Registry
	Handler  *host.Handler
	Commands *host.Commands
}

// Bridge is a running, attached engine.
type Bridge struct {
	session *Session
	status  Status
}

// Start launches the engine and brings the session up. cancel is invoked
// with the cause when the engine exits or the command queue is closed; it is
// the only signal the rest of the program gets that the bridge stopped.
func Start(ctx context.Context, cancel context.CancelCauseFunc, log logr.Logger, opts Options) (*Bridge, error) {
	process, err := transport.Launch(ctx, log.WithName("transport"), opts.Command)
	if err != nil {
		return nil, err
	}

	session, err := NewSession(process, log.WithName("rpc"))
	if err != nil {
		_ = process.Close()
		return nil, err
	}
	if err := opts.Handler.Register(session); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("register notification handlers: %w", err)
	}
	session.Serve()
	go Supervise(ctx, session, cancel)

	status, err := handshake(ctx, log, session, handshakeConfig{
		geometry:  opts.Geometry,
		multiGrid: opts.MultiGrid,
		version:   opts.Version,
		registry:  opts.Registry,
		commands:  opts.Commands,
		cancel:    cancel,
	})
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	return &Bridge{session: session, status: status}, nil
}

func (b *Bridge) Status() Status {
	return b.status
}

// Done is closed once the engine's I/O loop has ended.
func (b *Bridge) Done() <-chan struct{} {
	return b.session.Done()
}

// Close shuts the engine down by closing its stdin.
func (b *Bridge) Close() error {
	return b.session.Close()
}
