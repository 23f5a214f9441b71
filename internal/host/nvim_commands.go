package host

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/go-logr/logr"
	"github.com/smallnest/chanx"

	"xvim/internal/logging"
)

var ErrCommandQueueClosed = errors.New("ui command queue closed")

const (
	minWidth  = 10
	minHeight = 3
	maxExtent = math.MaxInt32
)

// Command is a request from the UI layer to the engine.
type Command interface {
	isCommand()
}

type Quit struct{}

// Resize asks the engine to change the grid size. Dimensions below 10x3 are
// raised to that minimum.
type Resize struct {
	Width  uint64 `json:"width"`
	Height uint64 `json:"height"`
}

func (Quit) isCommand()   {}
func (Resize) isCommand() {}

// Engine is the part of the engine API commands need.
type Engine interface {
	Command(cmd string) error
	TryResizeUI(width, height int) error
}

// Commands is the queue between the UI layer and the engine. Producers call
// Send from any goroutine; Run executes each command in its own goroutine.
type Commands struct {
	queue  *chanx.UnboundedChan[Command]
	sender logging.Sender[Command]
	log    logr.Logger

	closeOnce sync.Once
	inflight  sync.WaitGroup
}

func NewCommands(ctx context.Context, log logr.Logger) *Commands {
	queue := chanx.NewUnboundedChan[Command](ctx, 8)
	return &Commands{
		queue:  queue,
		sender: logging.NewSender[Command](queue.In, "ui_command", log),
		log:    log,
	}
}

// Send queues cmd. It must not be called after Close.
func (c *Commands) Send(ctx context.Context, cmd Command) error {
	return c.sender.Send(ctx, cmd)
}

// Close tells Run that no more commands will arrive.
func (c *Commands) Close() {
	c.closeOnce.Do(func() {
		close(c.queue.In)
	})
}

// Run executes queued commands against engine until ctx is done. When the
// queue is closed and drained it cancels the run with
// ErrCommandQueueClosed. In-flight commands finish before Run returns.
func (c *Commands) Run(ctx context.Context, engine Engine, cancel context.CancelCauseFunc) {
	defer c.inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.queue.Out:
			if !ok {
				if ctx.Err() == nil {
					c.log.V(logging.TraceLevel).Info("stop executing ui commands")
					cancel(ErrCommandQueueClosed)
				}
				return
			}
			c.inflight.Add(1)
			go func() {
				defer c.inflight.Done()
				c.execute(cmd, engine)
			}()
		}
	}
}

func (c *Commands) execute(cmd Command, engine Engine) {
	switch cmd := cmd.(type) {
	case Quit:
		_ = engine.Command("qa!")
	case Resize:
		width, height := min(max(cmd.Width, minWidth), maxExtent), min(max(cmd.Height, minHeight), maxExtent)
		if err := engine.TryResizeUI(int(width), int(height)); err != nil {
			c.log.Error(err, "Resize failed", "width", width, "height", height)
		}
	}
}
