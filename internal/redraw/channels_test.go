package redraw

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelList() []any {
	return []any{
		map[string]any{
			"id":     int64(1),
			"stream": "stdio",
			"mode":   "rpc",
		},
		map[string]any{
			"id":     int64(3),
			"stream": "job",
			"mode":   "terminal",
			"pty":    "/dev/pts/4",
			"buffer": int64(12),
		},
		map[string]any{
			"id":     int64(7),
			"stream": "socket",
			"mode":   "rpc",
			"client": map[string]any{
				"name":    "xvim",
				"type":    "ui",
				"version": map[string]any{"major": int64(0), "minor": int64(2), "commit": "abc123"},
				"methods": map[string]any{},
				"attributes": map[string]any{
					"website": "https://example.com",
				},
			},
		},
	}
}

func TestParseChannelList(t *testing.T) {
	channels, err := ParseChannelList(logr.Discard(), channelList())
	require.NoError(t, err)
	require.Len(t, channels, 3)

	assert.Equal(t, ChannelInfo{ID: 1, Stream: StreamStdio, Mode: ModeRPC}, channels[0])
	assert.Equal(t, "/dev/pts/4", channels[1].Pty)
	assert.Equal(t, "12", channels[1].Buffer)

	client := channels[2].Client
	require.NotNil(t, client)
	assert.Equal(t, "xvim", client.Name)
	assert.Equal(t, ClientUI, client.Type)
	assert.Equal(t, uint64(0), client.Version.Major)
	assert.Equal(t, u64p(2), client.Version.Minor)
	assert.Nil(t, client.Version.Patch)
	require.NotNil(t, client.Version.Commit)
	assert.Equal(t, "abc123", *client.Version.Commit)
}

func TestFindChannel(t *testing.T) {
	channels, err := ParseChannelList(logr.Discard(), channelList())
	require.NoError(t, err)

	assert.Equal(t, uint64(7), FindChannel(channels, "xvim"))
	assert.Equal(t, uint64(0), FindChannel(channels, "goneovim"))
	assert.Equal(t, uint64(0), FindChannel(nil, "xvim"))
}

func TestParseChannelInfoClosedEnumerations(t *testing.T) {
	_, err := ParseChannelInfo(logr.Discard(), map[string]any{"id": int64(1), "stream": "carrier-pigeon"})
	assert.True(t, IsKind(err, KindFormat))

	_, err = ParseChannelInfo(logr.Discard(), map[string]any{"id": int64(1), "mode": "telepathy"})
	assert.True(t, IsKind(err, KindFormat))

	_, err = ParseChannelInfo(logr.Discard(), map[string]any{
		"id":     int64(1),
		"client": map[string]any{"name": "x", "type": "daemon"},
	})
	assert.True(t, IsKind(err, KindFormat))

	_, err = ParseChannelInfo(logr.Discard(), []any{"id", int64(1)})
	assert.True(t, IsKind(err, KindMap))
}

func TestParseChannelInfoLogsUnknownKeys(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 2})

	info, err := ParseChannelInfo(log, map[any]any{
		"id":     uint64(9),
		"stream": "stdio",
		"mode":   "rpc",
		"argv":   []any{"nvim", "--embed"},
		"client": map[string]any{
			"name":       "xvim",
			"attributes": map[string]any{},
			"version":    map[string]any{"major": int64(1), "build": "nightly"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), info.ID)
	require.NotNil(t, info.Client)
	assert.Equal(t, "xvim", info.Client.Name)

	logged := strings.Join(lines, "\n")
	assert.Contains(t, logged, `"key"="argv"`)
	assert.Contains(t, logged, `"key"="attributes"`)
	assert.Contains(t, logged, `"key"="build"`)
}

func TestChannelEnumNames(t *testing.T) {
	assert.Equal(t, "socket", StreamSocket.String())
	assert.Equal(t, "rpc", ModeRPC.String())
	assert.Equal(t, "embedder", ClientEmbedder.String())
	assert.Equal(t, "unknown", ChannelStream(42).String())

	text, err := StreamInternal.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "internal", string(text))
}
