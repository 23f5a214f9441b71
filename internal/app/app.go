// Package app wires the bridge, the redraw event consumer and the optional
// inspector into one run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/smallnest/chanx"
	"golang.org/x/sync/errgroup"

	"xvim/internal/bridge"
	"xvim/internal/host"
	"xvim/internal/logging"
	"xvim/internal/redraw"
	"xvim/internal/render"
	"xvim/internal/settings"
	"xvim/internal/transport"
	httptransport "xvim/internal/transport/http"
)

const statusInterval = time.Second

type Options struct {
	CmdLine settings.CmdLineSettings
	Version string
	// Sink receives every decoded redraw event in order. It runs on the
	// consumer goroutine and must not block for long.
	Sink func(redraw.Event)
}

// publisher is the inspector surface the event consumer feeds.
type publisher interface {
	PublishEvent(name string, payload any)
	PublishStatus(html string)
}

// Run brings the engine up and blocks until it exits, the command queue is
// closed or ctx is done. A clean engine exit returns nil.
func Run(ctx context.Context, log logr.Logger, opts Options) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	registry := settings.NewRegistry(log.WithName("settings"))
	if err := settings.RegisterDefaults(registry, opts.CmdLine); err != nil {
		return err
	}

	events := chanx.NewUnboundedChan[redraw.Event](runCtx, 256)
	commands := host.NewCommands(runCtx, log.WithName("commands"))
	handler := host.NewHandler(runCtx, log.WithName("handler"), redraw.NewDecoder(log.WithName("decoder")), registry, events.In)
	state := newTracker(opts.Version, opts.CmdLine.Geometry)

	var inspector *httptransport.Inspector
	renderer := render.NewRenderer()
	if opts.CmdLine.Inspect != "" {
		inspector = httptransport.NewInspector(opts.CmdLine.Inspect, renderer.RenderShell(), log.WithName("inspector"))
		inspector.OnCommand = func(cmd host.Command) {
			if err := commands.Send(runCtx, cmd); err != nil {
				log.V(1).Info("Dropping inspector command", "error", err.Error())
			}
		}
		if err := inspector.Listen(); err != nil {
			return fmt.Errorf("inspector: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		handler.Run(gctx)
		return nil
	})

	b, err := bridge.Start(runCtx, cancel, log.WithName("bridge"), bridge.Options{
		Command: transport.Command{
			Bin:   opts.CmdLine.NeovimBin,
			Args:  opts.CmdLine.NeovimArgs,
			Files: opts.CmdLine.FilesToOpen,
		},
		Geometry:  opts.CmdLine.Geometry,
		MultiGrid: opts.CmdLine.MultiGrid,
		Version:   opts.Version,
		Registry:  registry,
		Handler:   handler,
		Commands:  commands,
	})
	if err != nil {
		cancel(err)
		if inspector != nil {
			_ = inspector.Close()
		}
		_ = g.Wait()
		return err
	}
	state.attached(b.Status())

	var pub publisher
	if inspector != nil {
		pub = inspector
		g.Go(func() error {
			if err := inspector.Run(gctx); err != nil {
				cancel(fmt.Errorf("inspector: %w", err))
				return err
			}
			return nil
		})
		g.Go(func() error {
			publishStatus(gctx, state, registry, renderer, inspector, log)
			return nil
		})
	}
	g.Go(func() error {
		consume(gctx, events.Out, state, opts.Sink, pub)
		return nil
	})

	<-runCtx.Done()
	cause := context.Cause(runCtx)
	state.stopped(cause)

	_ = b.Close()
	<-b.Done()
	if err := g.Wait(); err != nil {
		return err
	}
	return runError(ctx, cause)
}

// runError maps the cancellation cause of a run onto the error Run returns.
func runError(parent context.Context, cause error) error {
	switch {
	case parent.Err() != nil:
		return nil
	case errors.Is(cause, host.ErrCommandQueueClosed):
		return nil
	case cause == bridge.ErrEngineExited:
		return nil
	default:
		return cause
	}
}

// consume drains redraw events, keeping the status tracker current and
// forwarding each event to the sink and the inspector.
func consume(ctx context.Context, events <-chan redraw.Event, state *tracker, sink func(redraw.Event), pub publisher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			state.observe(event)
			if sink != nil {
				sink(event)
			}
			if pub != nil {
				pub.PublishEvent(event.EventName(), event)
			}
		}
	}
}

// publishStatus re-renders the status page on a fixed cadence and pushes it
// when it changed.
func publishStatus(ctx context.Context, state *tracker, registry *settings.Registry, renderer *render.Renderer, pub publisher, log logr.Logger) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	var last string
	for {
		html, err := renderer.RenderStatus(state.snapshot(registry))
		if err != nil {
			log.Error(err, "Could not render status page")
		} else if html != last {
			last = html
			pub.PublishStatus(html)
			log.V(logging.TraceLevel).Info("Status page updated")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
