package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"xvim/internal/host"
	"xvim/internal/redraw"
	"xvim/internal/settings"
)

const (
	ClientName    = "xvim"
	clientWebsite = "https://github.com/xvim/xvim"
	minVersion    = "nvim-0.4"
)

var ErrVersionMismatch = errors.New("xvim requires nvim version 0.4 or higher, download the latest version at https://github.com/neovim/neovim/wiki/Installing-Neovim")

// Engine is the engine API used while bringing a session up. *nvim.Nvim
// implements it.
type Engine interface {
	settings.Engine
	host.Engine
	APIInfo() ([]interface{}, error)
	Eval(expr string, result interface{}) error
	Request(procedure string, result interface{}, args ...interface{}) error
	AttachUI(width, height int, options map[string]interface{}) error
}

// Status summarizes a completed handshake.
type Status struct {
	// APIChannel is the channel id reported by nvim_get_api_info.
	APIChannel uint64
	APILevel   uint64
	// Channel is the channel our client registered under, 0 when it could
	// not be found.
	Channel   uint64
	Channels  []redraw.ChannelInfo
	Geometry  settings.Geometry
	MultiGrid bool
}

type handshakeConfig struct {
	geometry  settings.Geometry
	multiGrid bool
	version   string
	registry  *settings.Registry
	commands  *host.Commands
	cancel    context.CancelCauseFunc
}

// handshake runs the capability negotiation against a connected engine. Only
// the version check, the g:xvim marker and the UI attach are fatal.
func handshake(ctx context.Context, log logr.Logger, engine Engine, cfg handshakeConfig) (Status, error) {
	status := Status{Geometry: cfg.geometry, MultiGrid: cfg.multiGrid}

	if info, err := engine.APIInfo(); err != nil {
		log.Error(err, "Cannot get engine api info, either xvim was launched with an unknown command line option or the engine version is not supported")
	} else {
		status.APIChannel, status.APILevel = parseAPIInfo(info)
	}

	var has int
	if err := engine.Eval(fmt.Sprintf("has('%s')", minVersion), &has); err != nil {
		return status, fmt.Errorf("could not query the engine version: %w", err)
	}
	if has != 1 {
		return status, ErrVersionMismatch
	}

	if err := engine.SetVar(ClientName, true); err != nil {
		return status, fmt.Errorf("could not communicate with the engine process: %w", err)
	}
	setClientInfo(engine, map[string]any{"major": uint64(0), "minor": uint64(0)}, nil)

	if err := engine.Command("runtime! ginit.vim"); err != nil {
		_ = engine.Command("echomsg " + strconv.Quote("error encountered in ginit.vim "+err.Error()))
	}

	setClientInfo(engine, clientVersion(cfg.version), map[string]any{"website": clientWebsite})

	var chans any
	if err := engine.Request("nvim_list_chans", &chans); err != nil {
		log.V(1).Info("Could not list channels", "error", err.Error())
	} else if channels, err := redraw.ParseChannelList(log, chans); err != nil {
		log.V(1).Info("Could not parse channel list", "error", err.Error())
	} else {
		status.Channels = channels
		status.Channel = redraw.FindChannel(channels, ClientName)
	}
	log.Info("Xvim registered with the engine", "channel", status.Channel)

	_ = engine.Request("nvim_set_option", nil, "lazyredraw", false)
	_ = engine.Request("nvim_set_option", nil, "termguicolors", true)

	options := map[string]interface{}{
		"rgb":           true,
		"ext_linegrid":  true,
		"ext_multigrid": cfg.multiGrid,
	}
	if err := engine.AttachUI(int(cfg.geometry.Width), int(cfg.geometry.Height), options); err != nil {
		return status, fmt.Errorf("could not attach ui to the engine process: %w", err)
	}
	log.Info("Engine process attached", "width", cfg.geometry.Width, "height", cfg.geometry.Height)

	go cfg.commands.Run(ctx, engine, cfg.cancel)

	if err := cfg.registry.ReadInitialValues(ctx, engine); err != nil {
		return status, err
	}
	if err := cfg.registry.SetupChangedListeners(engine, status.Channel); err != nil {
		log.Error(err, "Settings will not follow engine changes")
	}
	return status, nil
}

func setClientInfo(engine Engine, version map[string]any, attributes map[string]any) {
	if attributes == nil {
		attributes = map[string]any{}
	}
	_ = engine.Request("nvim_set_client_info", nil, ClientName, version, "ui", map[string]any{}, attributes)
}

// clientVersion splits a build version like v1.2.3-rc1 into the map
// nvim_set_client_info expects. Unparseable parts are left out.
func clientVersion(version string) map[string]any {
	out := map[string]any{"major": uint64(0)}
	core, prerelease, _ := strings.Cut(strings.TrimPrefix(version, "v"), "-")
	keys := []string{"major", "minor", "patch"}
	for i, part := range strings.SplitN(core, ".", len(keys)) {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			break
		}
		out[keys[i]] = n
	}
	if prerelease != "" {
		out["prerelease"] = prerelease
	}
	return out
}

// parseAPIInfo pulls the channel id and api level out of the
// nvim_get_api_info result.
func parseAPIInfo(info []interface{}) (channel, level uint64) {
	if len(info) < 2 {
		return 0, 0
	}
	channel, _ = asUint(info[0])
	metadata, ok := info[1].(map[string]interface{})
	if !ok {
		return channel, 0
	}
	version, ok := metadata["version"].(map[string]interface{})
	if !ok {
		return channel, 0
	}
	level, _ = asUint(version["api_level"])
	return channel, level
}

func asUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case uint64:
		return n, true
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	}
	return 0, false
}
