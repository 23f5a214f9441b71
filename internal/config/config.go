package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"xvim/internal/logging"
	"xvim/internal/settings"
)

// Config captures runtime configuration for the application.
type Config struct {
	CmdLine settings.CmdLineSettings
	Logging logging.Options
}

const (
	envBin       = "XVIM_BIN"
	envFrameless = "XVIM_FRAMELESS"
	envMultiGrid = "XVIM_MULTIGRID"
	envLogFile   = "XVIM_LOG_FILE"

	defaultWidth  = 100
	defaultHeight = 50
)

// Flag names
const (
	verbosityFlag      = "verbose"
	verbosityFlagShort = "v"
	logFlag            = "log"
	logFileFlag        = "log-file"
	framelessFlag      = "frameless"
	multiGridFlag      = "multigrid"
	geometryFlag       = "geometry"
	nvimBinFlag        = "nvim-bin"
	inspectFlag        = "inspect"
)

// Flags holds the raw command line values bound by Bind.
type Flags struct {
	verbosity int
	logToFile bool
	logFile   string
	frameless bool
	multiGrid bool
	geometry  string
	nvimBin   string
	inspect   string
}

// Bind registers the command line flags on fs.
func Bind(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.CountVarP(&f.verbosity, verbosityFlag, verbosityFlagShort, "Increase verbosity level (repeat up to 3 times)")
	fs.BoolVar(&f.logToFile, logFlag, false, "Log to a file")
	fs.StringVar(&f.logFile, logFileFlag, "", "Path of the log file written with --log. Defaults to $"+envLogFile+" or a file in the temp folder.")
	fs.BoolVar(&f.frameless, framelessFlag, false, "Removes the window frame")
	fs.BoolVar(&f.multiGrid, multiGridFlag, false, "Ask the engine to draw each window on its own grid")
	fs.StringVar(&f.geometry, geometryFlag, "", "Initial grid size in cells, e.g. 100x50. Defaults to the terminal size.")
	fs.StringVar(&f.nvimBin, nvimBinFlag, "", "Engine binary to run. Defaults to $"+envBin+", then nvim in PATH.")
	fs.StringVar(&f.inspect, inspectFlag, "", "Serve the diagnostics inspector on this address, e.g. 127.0.0.1:7777")
	return f
}

// Resolve combines the bound flags, the positional arguments and the
// environment. Positional arguments before dashAt are files to open, the rest
// are passed to the engine; dashAt is -1 when there was no "--".
func (f *Flags) Resolve(args []string, dashAt int, environ []string) (Config, error) {
	env := parseEnv(environ)

	files, engineArgs := args, []string(nil)
	if dashAt >= 0 && dashAt <= len(args) {
		files, engineArgs = args[:dashAt], args[dashAt:]
	}

	geometry, err := resolveGeometry(f.geometry)
	if err != nil {
		return Config{}, err
	}

	bin := f.nvimBin
	if bin == "" {
		bin = env[envBin]
	}
	logFile := f.logFile
	if logFile == "" {
		logFile = env[envLogFile]
	}

	cmd := settings.CmdLineSettings{
		Verbosity:   f.verbosity,
		LogToFile:   f.logToFile,
		LogFile:     logFile,
		NeovimBin:   bin,
		NeovimArgs:  append([]string(nil), engineArgs...),
		FilesToOpen: append([]string(nil), files...),
		Frameless:   f.frameless || envPresent(env, envFrameless),
		MultiGrid:   f.multiGrid || envPresent(env, envMultiGrid),
		Geometry:    geometry,
		Inspect:     f.inspect,
	}
	return Config{
		CmdLine: cmd,
		Logging: logging.Options{
			Verbosity: cmd.Verbosity,
			LogToFile: cmd.LogToFile,
			LogFile:   cmd.LogFile,
		},
	}, nil
}

// ParseGeometry parses WIDTHxHEIGHT.
func ParseGeometry(s string) (settings.Geometry, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return settings.Geometry{}, fmt.Errorf("geometry must look like 100x50 (got %q)", s)
	}
	width, err := strconv.ParseUint(w, 10, 64)
	if err != nil || width == 0 {
		return settings.Geometry{}, fmt.Errorf("geometry width must be a positive number (got %q)", w)
	}
	height, err := strconv.ParseUint(h, 10, 64)
	if err != nil || height == 0 {
		return settings.Geometry{}, fmt.Errorf("geometry height must be a positive number (got %q)", h)
	}
	return settings.Geometry{Width: width, Height: height}, nil
}

// terminalSize reports the size of the terminal on stdout, if any.
var terminalSize = func() (int, int, bool) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0, 0, false
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

func resolveGeometry(flag string) (settings.Geometry, error) {
	if flag != "" {
		return ParseGeometry(flag)
	}
	if width, height, ok := terminalSize(); ok && width > 0 && height > 0 {
		return settings.Geometry{Width: uint64(width), Height: uint64(height)}, nil
	}
	return settings.Geometry{Width: defaultWidth, Height: defaultHeight}, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func envPresent(env map[string]string, key string) bool {
	_, ok := env[key]
	return ok
}
