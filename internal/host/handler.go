// Package host receives engine notifications and carries UI commands back to
// the engine.
package host

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/smallnest/chanx"

	"xvim/internal/logging"
	"xvim/internal/redraw"
	"xvim/internal/settings"
)

const (
	MethodRedraw         = "redraw"
	MethodSettingChanged = "setting_changed"
)

// Registrar is satisfied by the RPC client.
type Registrar interface {
	RegisterHandler(method string, fn interface{}) error
}

type notification struct {
	method string
	args   []any
}

// Handler is the sink for engine notifications. The RPC read loop only
// enqueues; a single worker started by Run decodes in arrival order and
// forwards events.
type Handler struct {
	decoder  *redraw.Decoder
	settings *settings.Registry
	events   logging.Sender[redraw.Event]
	queue    *chanx.UnboundedChan[notification]
	done     <-chan struct{}
	log      logr.Logger
}

func NewHandler(ctx context.Context, log logr.Logger, decoder *redraw.Decoder, registry *settings.Registry, events chan<- redraw.Event) *Handler {
	return &Handler{
		decoder:  decoder,
		settings: registry,
		events:   logging.NewSender(events, "redraw_event", log),
		queue:    chanx.NewUnboundedChan[notification](ctx, 64),
		done:     ctx.Done(),
		log:      log,
	}
}

// Register attaches the handler to the redraw and setting_changed
// notifications.
func (h *Handler) Register(r Registrar) error {
	if err := r.RegisterHandler(MethodRedraw, func(batches ...[]interface{}) {
		args := make([]any, len(batches))
		for i, batch := range batches {
			args[i] = batch
		}
		h.Notify(MethodRedraw, args)
	}); err != nil {
		return err
	}
	return r.RegisterHandler(MethodSettingChanged, func(args ...interface{}) {
		h.Notify(MethodSettingChanged, args)
	})
}

// Notify queues a notification without waiting for it to be processed.
func (h *Handler) Notify(method string, args []any) {
	h.log.V(logging.TraceLevel).Info("engine notification", "method", method)
	select {
	case h.queue.In <- notification{method: method, args: args}:
	case <-h.done:
	}
}

// Run processes queued notifications until ctx is done.
func (h *Handler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-h.queue.Out:
			if !ok {
				return
			}
			if err := h.handle(ctx, n); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handle(ctx context.Context, n notification) error {
	switch n.method {
	case MethodRedraw:
		for _, batch := range n.args {
			events, err := h.decoder.DecodeRedraw(batch)
			if err != nil {
				h.log.Error(err, "Dropping malformed redraw batch")
				continue
			}
			for _, event := range events {
				if err := h.events.Send(ctx, event); err != nil {
					return err
				}
			}
		}
	case MethodSettingChanged:
		if err := h.settings.HandleChangedNotification(n.args); err != nil {
			h.log.Error(err, "Ignoring setting change")
		}
	default:
		h.log.V(logging.TraceLevel).Info("Ignoring notification", "method", n.method)
	}
	return nil
}
