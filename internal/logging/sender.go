package logging

import (
	"context"

	"github.com/go-logr/logr"
)

// Sender traces every value it puts on a channel. Send gives up when ctx is
// done so a stopped consumer never wedges the producer.
type Sender[T any] struct {
	ch   chan<- T
	name string
	log  logr.Logger
}

func NewSender[T any](ch chan<- T, name string, log logr.Logger) Sender[T] {
	return Sender[T]{ch: ch, name: name, log: log}
}

func (s Sender[T]) Send(ctx context.Context, value T) error {
	if s.log.V(TraceLevel).Enabled() {
		s.log.V(TraceLevel).Info("send", "channel", s.name, "value", value)
	}
	select {
	case s.ch <- value:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (s Sender[T]) Name() string {
	return s.name
}
