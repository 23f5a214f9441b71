package httpserver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xvim/internal/contracts"
	"xvim/internal/host"
)

func startInspector(t *testing.T) (*Inspector, <-chan host.Command) {
	t.Helper()
	commands := make(chan host.Command, 8)
	m := NewInspector("127.0.0.1:0", "<html>shell</html>", logr.Discard())
	m.OnCommand = func(cmd host.Command) { commands <- cmd }
	require.NoError(t, m.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("inspector did not shut down")
		}
	})
	return m, commands
}

func nextCommand(t *testing.T, commands <-chan host.Command) host.Command {
	t.Helper()
	select {
	case cmd := <-commands:
		return cmd
	case <-time.After(5 * time.Second):
		t.Fatal("no command received")
		return nil
	}
}

func TestInspectorServesShell(t *testing.T) {
	m, _ := startInspector(t)

	resp, err := http.Get(m.URL() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>shell</html>", string(body))

	resp, err = http.Get(m.URL() + "/favicon.ico")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInspectorWebSocket(t *testing.T) {
	m, commands := startInspector(t)

	wsURL := "ws" + strings.TrimPrefix(m.URL(), "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(contracts.ResizeMessage{Type: contracts.MessageTypeResize, Width: 90, Height: 30}))
	assert.Equal(t, host.Resize{Width: 90, Height: 30}, nextCommand(t, commands))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(contracts.IncomingMessage{Type: "go_to_line"}))
	require.NoError(t, conn.WriteJSON(contracts.IncomingMessage{Type: contracts.MessageTypeQuit}))
	assert.Equal(t, host.Quit{}, nextCommand(t, commands))

	m.PublishStatus("<p>attached</p>")
	var status contracts.StatusMessage
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, contracts.StatusMessage{Type: contracts.MessageTypeStatus, HTML: "<p>attached</p>", Rev: 1}, status)

	m.PublishEvent("set_title", map[string]string{"Title": "xvim"})
	m.PublishEvent("flush", struct{}{})

	var first, second contracts.EventMessage
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "set_title", first.Name)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, map[string]any{"Title": "xvim"}, first.Payload)
	assert.Equal(t, "flush", second.Name)
	assert.Equal(t, uint64(2), second.Seq)
}

func TestInspectorReplaysStatusOnConnect(t *testing.T) {
	m, commands := startInspector(t)
	wsURL := "ws" + strings.TrimPrefix(m.URL(), "http") + "/ws"

	first, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.WriteJSON(contracts.IncomingMessage{Type: contracts.MessageTypeQuit}))
	nextCommand(t, commands)

	m.PublishStatus("<p>v1</p>")
	var status contracts.StatusMessage
	require.NoError(t, first.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, first.ReadJSON(&status))

	second, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, second.ReadJSON(&status))
	assert.Equal(t, "<p>v1</p>", status.HTML)
	assert.Equal(t, uint64(1), status.Rev)
}
