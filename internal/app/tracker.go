package app

import (
	"sync"

	"xvim/internal/bridge"
	"xvim/internal/redraw"
	"xvim/internal/render"
	"xvim/internal/settings"
)

// tracker keeps the bits of session state the status page shows.
type tracker struct {
	mu      sync.Mutex
	version string
	running bool
	cause   string
	bridge  bridge.Status
	counts  map[string]uint64
	title   string
	mode    string
	width   uint64
	height  uint64
}

func newTracker(version string, geometry settings.Geometry) *tracker {
	return &tracker{
		version: version,
		counts:  make(map[string]uint64),
		width:   geometry.Width,
		height:  geometry.Height,
	}
}

func (t *tracker) attached(status bridge.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = true
	t.bridge = status
}

func (t *tracker) stopped(cause error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if cause != nil {
		t.cause = cause.Error()
	}
}

func (t *tracker) observe(event redraw.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[event.EventName()]++
	switch e := event.(type) {
	case redraw.SetTitle:
		t.title = e.Title
	case redraw.ModeChange:
		t.mode = e.Mode.Name
	case redraw.Resize:
		if e.Grid == 1 {
			t.width, t.height = e.Width, e.Height
		}
	}
}

func (t *tracker) snapshot(registry *settings.Registry) render.Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]uint64, len(t.counts))
	for name, n := range t.counts {
		counts[name] = n
	}
	var channels any
	if len(t.bridge.Channels) > 0 {
		channels = t.bridge.Channels
	}
	return render.Status{
		Version:     t.version,
		Running:     t.running,
		StopCause:   t.cause,
		APIChannel:  t.bridge.APIChannel,
		APILevel:    t.bridge.APILevel,
		Channel:     t.bridge.Channel,
		Width:       t.width,
		Height:      t.height,
		MultiGrid:   t.bridge.MultiGrid,
		Title:       t.title,
		Mode:        t.mode,
		EventCounts: counts,
		Settings:    registry.Snapshot(),
		Channels:    channels,
	}
}
