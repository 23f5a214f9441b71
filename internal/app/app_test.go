package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xvim/internal/bridge"
	"xvim/internal/host"
	"xvim/internal/redraw"
	"xvim/internal/render"
	"xvim/internal/settings"
	"xvim/internal/transport"
)

type fakePublisher struct {
	mu       sync.Mutex
	events   []string
	statuses []string
}

func (p *fakePublisher) PublishEvent(name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
}

func (p *fakePublisher) PublishStatus(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, html)
}

func (p *fakePublisher) statusCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.statuses)
}

func TestRunError(t *testing.T) {
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("boom")
	cases := []struct {
		name   string
		parent context.Context
		cause  error
		want   error
	}{
		{"clean exit", live, bridge.ErrEngineExited, nil},
		{"queue closed", live, host.ErrCommandQueueClosed, nil},
		{"parent cancelled", done, boom, nil},
		{"engine failure", live, fmt.Errorf("%w: %w", bridge.ErrEngineExited, boom), nil},
		{"other", live, boom, boom},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := runError(c.parent, c.cause)
			if c.name == "engine failure" {
				require.Error(t, got)
				assert.ErrorIs(t, got, boom)
				return
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestConsume(t *testing.T) {
	events := make(chan redraw.Event, 8)
	events <- redraw.SetTitle{Title: "main.go"}
	events <- redraw.ModeChange{Mode: redraw.EditorMode{Kind: redraw.ModeInsert, Name: "insert"}, ModeIndex: 2}
	events <- redraw.Resize{Grid: 1, Width: 120, Height: 40}
	events <- redraw.Resize{Grid: 4, Width: 10, Height: 5}
	events <- redraw.Flush{}
	close(events)

	state := newTracker("v1", settings.Geometry{Width: 100, Height: 50})
	pub := &fakePublisher{}
	var sunk []redraw.Event
	consume(context.Background(), events, state, func(e redraw.Event) { sunk = append(sunk, e) }, pub)

	require.Len(t, sunk, 5)
	assert.Equal(t, redraw.SetTitle{Title: "main.go"}, sunk[0])
	assert.Equal(t, []string{"set_title", "mode_change", "grid_resize", "grid_resize", "flush"}, pub.events)

	registry := settings.NewRegistry(logr.Discard())
	require.NoError(t, settings.RegisterDefaults(registry, settings.CmdLineSettings{}))
	status := state.snapshot(registry)
	assert.Equal(t, "main.go", status.Title)
	assert.Equal(t, "insert", status.Mode)
	assert.Equal(t, uint64(120), status.Width)
	assert.Equal(t, uint64(40), status.Height)
	assert.Equal(t, map[string]uint64{"set_title": 1, "mode_change": 1, "grid_resize": 2, "flush": 1}, status.EventCounts)
	assert.Equal(t, uint64(60), status.Settings["refresh_rate"])
	assert.Nil(t, status.Channels)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		consume(ctx, make(chan redraw.Event), newTracker("", settings.Geometry{}), nil, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consume did not stop")
	}
}

func TestTrackerLifecycle(t *testing.T) {
	registry := settings.NewRegistry(logr.Discard())
	state := newTracker("v1", settings.Geometry{Width: 80, Height: 24})

	status := state.snapshot(registry)
	assert.False(t, status.Running)
	assert.Empty(t, status.StopCause)

	state.attached(bridge.Status{
		Channel:  3,
		APILevel: 11,
		Channels: []redraw.ChannelInfo{{ID: 3}},
	})
	status = state.snapshot(registry)
	assert.True(t, status.Running)
	assert.Equal(t, uint64(3), status.Channel)
	assert.NotNil(t, status.Channels)

	state.stopped(bridge.ErrEngineExited)
	status = state.snapshot(registry)
	assert.False(t, status.Running)
	assert.Equal(t, bridge.ErrEngineExited.Error(), status.StopCause)
}

func TestPublishStatusSkipsUnchanged(t *testing.T) {
	registry := settings.NewRegistry(logr.Discard())
	state := newTracker("v1", settings.Geometry{})
	pub := &fakePublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	publishStatus(ctx, state, registry, render.NewRenderer(), pub, logr.Discard())
	require.Equal(t, 1, pub.statusCount())
	assert.Contains(t, pub.statuses[0], "xvim v1")
}

func TestRunMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := Run(context.Background(), logr.Discard(), Options{
		CmdLine: settings.CmdLineSettings{
			NeovimBin: "/nonexistent/nvim",
			Geometry:  settings.Geometry{Width: 100, Height: 50},
			Inspect:   "127.0.0.1:0",
		},
		Version: "test",
	})
	var spawnErr *transport.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "lookup", spawnErr.Op)
}

func TestRunInvalidInspectAddress(t *testing.T) {
	err := Run(context.Background(), logr.Discard(), Options{
		CmdLine: settings.CmdLineSettings{Inspect: "127.0.0.1:notaport"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspector")
}
