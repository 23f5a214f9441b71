package contracts

const (
	// MessageTypeEvent streams one decoded redraw event to the browser.
	MessageTypeEvent = "event"
	// MessageTypeStatus replaces the rendered status panel in the browser.
	MessageTypeStatus = "status"
	// MessageTypeResize asks the engine to resize its grid.
	MessageTypeResize = "resize"
	// MessageTypeQuit asks the engine to quit.
	MessageTypeQuit = "quit"
)

// IncomingMessage is the minimal envelope used to route browser messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// EventMessage carries a redraw event and its position in the stream.
type EventMessage struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
	Seq     uint64 `json:"seq"`
}

// StatusMessage carries the rendered status panel and revision metadata.
type StatusMessage struct {
	Type string `json:"type"`
	HTML string `json:"html"`
	Rev  uint64 `json:"rev"`
}

// ResizeMessage requests a new grid size in cells.
type ResizeMessage struct {
	Type   string `json:"type"`
	Width  uint64 `json:"width"`
	Height uint64 `json:"height"`
}
