// Package httpserver serves the diagnostics inspector: a status page and a
// WebSocket that streams redraw events and accepts UI commands.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"

	"xvim/internal/contracts"
	"xvim/internal/host"
	"xvim/internal/logging"
)

const shutdownTimeout = 2 * time.Second

// Inspector is the diagnostics HTTP server.
type Inspector struct {
	addr  string
	shell string
	log   logr.Logger

	listener net.Listener
	server   *http.Server

	// OnCommand is invoked when the browser asks for a resize or quit.
	OnCommand      func(host.Command)
	browserInbound chan []byte

	events     chan contracts.EventMessage
	statuses   chan string
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stopped    chan struct{}

	upgrader websocket.Upgrader
}

// NewInspector creates an inspector bound to addr once Listen is called.
// shell is the page served at /.
func NewInspector(addr string, shell string, log logr.Logger) *Inspector {
	return &Inspector{
		addr:  addr,
		shell: shell,
		log:   log,

		browserInbound: make(chan []byte, 64),
		events:         make(chan contracts.EventMessage, 1024),
		statuses:       make(chan string, 8),
		register:       make(chan *websocket.Conn),
		unregister:     make(chan *websocket.Conn),
		stopped:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Listen binds the listening socket.
func (m *Inspector) Listen() error {
	listener, err := net.Listen("tcp", m.addr)
	if err != nil {
		return err
	}
	m.listener = listener
	return nil
}

// Close releases the listener of an inspector that never ran.
func (m *Inspector) Close() error {
	if m.listener == nil || m.server != nil {
		return nil
	}
	return m.listener.Close()
}

// URL returns the browser URL for the inspector.
func (m *Inspector) URL() string {
	if m.listener != nil {
		return "http://" + m.listener.Addr().String()
	}
	return "http://" + m.addr
}

// Run serves until ctx is done, then shuts the server down.
func (m *Inspector) Run(ctx context.Context) error {
	if m.listener == nil {
		if err := m.Listen(); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", m.handleIndex)
	mux.HandleFunc("/ws", m.handleWS)
	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	served := make(chan error, 1)
	go func() {
		served <- m.server.Serve(m.listener)
	}()
	m.log.Info("Inspector listening", "url", m.URL())

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() {
		m.runLoop(loopCtx)
		close(m.stopped)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-served:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = m.server.Shutdown(shutdownCtx)
	stopLoop()
	<-m.stopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// PublishEvent queues a redraw event for the browser. Events are dropped
// while the browser falls behind.
func (m *Inspector) PublishEvent(name string, payload any) {
	select {
	case m.events <- contracts.EventMessage{Type: contracts.MessageTypeEvent, Name: name, Payload: payload}:
	default:
		m.log.V(logging.TraceLevel).Info("Inspector is behind, dropping event", "name", name)
	}
}

// PublishStatus replaces the status panel.
func (m *Inspector) PublishStatus(html string) {
	select {
	case m.statuses <- html:
	default:
	}
}

// handleIndex serves the page shell at / and 404s everything else.
func (m *Inspector) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(m.shell))
}

// handleWS upgrades to a websocket and hands browser frames to runLoop.
func (m *Inspector) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	select {
	case m.register <- conn:
	case <-m.stopped:
		_ = conn.Close()
		return
	}
	defer func() {
		select {
		case m.unregister <- conn:
		case <-m.stopped:
		}
	}()

	// Block here until the connection closes or errors out
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case m.browserInbound <- msg:
		case <-m.stopped:
			return
		}
	}
}

// runLoop owns the browser connection. All writes happen here.
func (m *Inspector) runLoop(ctx context.Context) {
	var conn *websocket.Conn
	var seq uint64

	lastStatus := contracts.StatusMessage{Type: contracts.MessageTypeStatus}

	for {
		select {
		case event := <-m.events:
			seq++
			event.Seq = seq
			if conn == nil {
				continue
			}
			if !writeJSON(conn, event) {
				conn = nil
			}

		case html := <-m.statuses:
			lastStatus.Rev++
			lastStatus.HTML = html
			if conn == nil {
				continue
			}
			if !writeJSON(conn, lastStatus) {
				conn = nil
			}

		case c := <-m.register:
			if conn != nil {
				_ = conn.Close()
			}
			conn = c
			if lastStatus.Rev > 0 && !writeJSON(conn, lastStatus) {
				conn = nil
			}

		case c := <-m.unregister:
			if conn == c {
				_ = conn.Close()
				conn = nil
			}

		case raw := <-m.browserInbound:
			m.handleInbound(raw)

		case <-ctx.Done():
			if conn != nil {
				_ = conn.Close()
			}
			return
		}
	}
}

func (m *Inspector) handleInbound(raw []byte) {
	var envelope contracts.IncomingMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		m.log.V(1).Info("Ignoring malformed browser message", "error", err.Error())
		return
	}

	var cmd host.Command
	switch envelope.Type {
	case contracts.MessageTypeResize:
		var msg contracts.ResizeMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		cmd = host.Resize{Width: msg.Width, Height: msg.Height}
	case contracts.MessageTypeQuit:
		cmd = host.Quit{}
	default:
		return
	}
	if m.OnCommand != nil {
		m.OnCommand(cmd)
	}
}

// writeJSON reports false once the connection is unusable.
func writeJSON(conn *websocket.Conn, v any) bool {
	if err := conn.WriteJSON(v); err != nil {
		_ = conn.Close()
		return false
	}
	return true
}
