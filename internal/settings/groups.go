package settings

import "slices"

type Geometry struct {
	Width  uint64
	Height uint64
}

// CmdLineSettings is the resolved command line. It is stored in the registry
// but never mirrored to the engine.
type CmdLineSettings struct {
	Verbosity   int
	LogToFile   bool
	LogFile     string
	NeovimBin   string
	NeovimArgs  []string
	FilesToOpen []string
	Frameless   bool
	MultiGrid   bool
	Geometry    Geometry
	Inspect     string
}

// HasNeovimArg reports whether arg was passed through to the engine.
func (c CmdLineSettings) HasNeovimArg(arg string) bool {
	return slices.Contains(c.NeovimArgs, arg)
}

type WindowSettings struct {
	RefreshRate        uint64
	NoIdle             bool
	Transparency       float32
	Fullscreen         bool
	RememberWindowSize bool
}

func DefaultWindowSettings(cmd CmdLineSettings) WindowSettings {
	return WindowSettings{
		RefreshRate:  60,
		NoIdle:       cmd.HasNeovimArg("--noIdle"),
		Transparency: 1.0,
	}
}

func WindowSchema() Schema[WindowSettings] {
	return Schema[WindowSettings]{
		Fields: []Field[WindowSettings]{
			Uint64Field("refresh_rate", func(w *WindowSettings) *uint64 { return &w.RefreshRate }),
			BoolField("no_idle", func(w *WindowSettings) *bool { return &w.NoIdle }),
			Float32Field("transparency", func(w *WindowSettings) *float32 { return &w.Transparency }),
			BoolField("fullscreen", func(w *WindowSettings) *bool { return &w.Fullscreen }),
			BoolField("remember_window_size", func(w *WindowSettings) *bool { return &w.RememberWindowSize }),
		},
	}
}

type KeyboardSettings struct {
	UseLogo bool
}

func KeyboardSchema() Schema[KeyboardSettings] {
	return Schema[KeyboardSettings]{
		Prefix: "input",
		Fields: []Field[KeyboardSettings]{
			BoolField("use_logo", func(k *KeyboardSettings) *bool { return &k.UseLogo }),
		},
	}
}

// RegisterDefaults stores cmd and installs the window and keyboard groups
// with their defaults.
func RegisterDefaults(r *Registry, cmd CmdLineSettings) error {
	Set(r, cmd)
	if err := Register(r, DefaultWindowSettings(cmd), WindowSchema()); err != nil {
		return err
	}
	return Register(r, KeyboardSettings{}, KeyboardSchema())
}
