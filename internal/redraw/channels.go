package redraw

import (
	"strconv"

	"github.com/go-logr/logr"
)

type ChannelStream int

const (
	StreamStdio ChannelStream = iota
	StreamStderr
	StreamSocket
	StreamJob
	StreamInternal
)

type ChannelMode int

const (
	ModeBytes ChannelMode = iota
	ModeTerminal
	ModeRPC
)

type ClientType int

const (
	ClientRemote ClientType = iota
	ClientUI
	ClientEmbedder
	ClientHost
	ClientPlugin
)

var (
	channelStreams = map[string]ChannelStream{
		"stdio":    StreamStdio,
		"stderr":   StreamStderr,
		"socket":   StreamSocket,
		"job":      StreamJob,
		"internal": StreamInternal,
	}
	channelModes = map[string]ChannelMode{
		"bytes":    ModeBytes,
		"terminal": ModeTerminal,
		"rpc":      ModeRPC,
	}
	clientTypes = map[string]ClientType{
		"remote":   ClientRemote,
		"ui":       ClientUI,
		"embedder": ClientEmbedder,
		"host":     ClientHost,
		"plugin":   ClientPlugin,
	}
)

func (s ChannelStream) String() string { return nameOf(channelStreams, s) }
func (m ChannelMode) String() string   { return nameOf(channelModes, m) }
func (t ClientType) String() string    { return nameOf(clientTypes, t) }

func (s ChannelStream) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (m ChannelMode) MarshalText() ([]byte, error)   { return []byte(m.String()), nil }
func (t ClientType) MarshalText() ([]byte, error)    { return []byte(t.String()), nil }

func nameOf[T comparable](table map[string]T, value T) string {
	for name, v := range table {
		if v == value {
			return name
		}
	}
	return "unknown"
}

// ClientVersion is the version a client announced with nvim_set_client_info.
type ClientVersion struct {
	Major      uint64
	Minor      *uint64
	Patch      *uint64
	Prerelease *string
	Commit     *string
}

type ClientInfo struct {
	Name    string
	Version ClientVersion
	Type    ClientType
}

// ChannelInfo describes one RPC peer as reported by nvim_list_chans. Pty and
// Buffer are empty when the engine does not report them.
type ChannelInfo struct {
	ID     uint64
	Stream ChannelStream
	Mode   ChannelMode
	Pty    string
	Buffer string
	Client *ClientInfo
}

// ParseChannelList decodes the result of nvim_list_chans.
func ParseChannelList(log logr.Logger, v any) ([]ChannelInfo, error) {
	arr, err := toArray(v)
	if err != nil {
		return nil, err
	}
	channels := make([]ChannelInfo, 0, len(arr))
	for _, raw := range arr {
		info, err := ParseChannelInfo(log, raw)
		if err != nil {
			return nil, err
		}
		channels = append(channels, info)
	}
	return channels, nil
}

// ParseChannelInfo decodes one channel descriptor map. Keys it does not know
// are logged and ignored.
func ParseChannelInfo(log logr.Logger, v any) (ChannelInfo, error) {
	entries, err := toMap(v)
	if err != nil {
		return ChannelInfo{}, err
	}
	var info ChannelInfo
	for _, entry := range entries {
		switch entry.Key {
		case "id":
			if info.ID, err = toU64(entry.Value); err != nil {
				return ChannelInfo{}, err
			}
		case "stream":
			if info.Stream, err = lookupName(channelStreams, entry.Value); err != nil {
				return ChannelInfo{}, err
			}
		case "mode":
			if info.Mode, err = lookupName(channelModes, entry.Value); err != nil {
				return ChannelInfo{}, err
			}
		case "pty":
			if info.Pty, err = toString(entry.Value); err != nil {
				return ChannelInfo{}, err
			}
		case "buffer":
			if info.Buffer, err = bufferName(entry.Value); err != nil {
				return ChannelInfo{}, err
			}
		case "client":
			client, err := parseClientInfo(log, entry.Value)
			if err != nil {
				return ChannelInfo{}, err
			}
			info.Client = &client
		default:
			log.V(2).Info("ignoring channel info key", "key", entry.Key)
		}
	}
	return info, nil
}

// bufferName accepts either a buffer name or the engine's numeric handle.
func bufferName(v any) (string, error) {
	if s, err := toString(v); err == nil {
		return s, nil
	}
	n, err := toU64(v)
	if err != nil {
		return "", newParseError(KindString, v)
	}
	return strconv.FormatUint(n, 10), nil
}

func parseClientInfo(log logr.Logger, v any) (ClientInfo, error) {
	entries, err := toMap(v)
	if err != nil {
		return ClientInfo{}, err
	}
	var info ClientInfo
	for _, entry := range entries {
		switch entry.Key {
		case "name":
			if info.Name, err = toString(entry.Value); err != nil {
				return ClientInfo{}, err
			}
		case "version":
			if info.Version, err = parseClientVersion(log, entry.Value); err != nil {
				return ClientInfo{}, err
			}
		case "type":
			if info.Type, err = lookupName(clientTypes, entry.Value); err != nil {
				return ClientInfo{}, err
			}
		default:
			log.V(2).Info("ignoring client info key", "key", entry.Key)
		}
	}
	return info, nil
}

func parseClientVersion(log logr.Logger, v any) (ClientVersion, error) {
	entries, err := toMap(v)
	if err != nil {
		return ClientVersion{}, err
	}
	var version ClientVersion
	for _, entry := range entries {
		switch entry.Key {
		case "major":
			if version.Major, err = toU64(entry.Value); err != nil {
				return ClientVersion{}, err
			}
		case "minor":
			if version.Minor, err = optionalU64(entry.Value); err != nil {
				return ClientVersion{}, err
			}
		case "patch":
			if version.Patch, err = optionalU64(entry.Value); err != nil {
				return ClientVersion{}, err
			}
		case "prerelease":
			if version.Prerelease, err = optionalString(entry.Value); err != nil {
				return ClientVersion{}, err
			}
		case "commit":
			if version.Commit, err = optionalString(entry.Value); err != nil {
				return ClientVersion{}, err
			}
		default:
			log.V(2).Info("ignoring client version key", "key", entry.Key)
		}
	}
	return version, nil
}

// lookupName maps a string through a closed enumeration; unknown names are a
// Format error.
func lookupName[T any](table map[string]T, v any) (T, error) {
	var zero T
	name, err := toString(v)
	if err != nil {
		return zero, err
	}
	value, ok := table[name]
	if !ok {
		return zero, formatError("(unknown name "+strconv.Quote(name)+")", v)
	}
	return value, nil
}

// FindChannel returns the id of the first channel whose client announced
// itself as name, or 0 when none did.
func FindChannel(channels []ChannelInfo, name string) uint64 {
	for _, channel := range channels {
		if channel.Client != nil && channel.Client.Name == name {
			return channel.ID
		}
	}
	return 0
}
