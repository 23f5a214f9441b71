package settings

import (
	"context"
	"fmt"
	"strings"
)

// VarPrefix is the namespace of the engine global variables mirroring the
// registry: field refresh_rate lives in g:xvim_refresh_rate.
const VarPrefix = "xvim"

// Engine is the part of the engine API the synchronization protocol uses.
type Engine interface {
	Var(name string, result interface{}) error
	SetVar(name string, value interface{}) error
	Command(cmd string) error
}

func varName(name string) string {
	return VarPrefix + "_" + name
}

// ReadInitialValues pulls every field from the engine. Variables the user
// already set win over defaults; missing ones are seeded with the default so
// later reads in vimscript see a value.
func (r *Registry) ReadInitialValues(ctx context.Context, engine Engine) error {
	for _, name := range r.Names() {
		if err := ctx.Err(); err != nil {
			return err
		}

		var raw any
		err := engine.Var(varName(name), &raw)
		if err == nil {
			if err := r.Update(name, raw); err != nil {
				r.log.Error(err, "Ignoring engine value", "setting", name)
			}
			continue
		}
		r.log.V(2).Info("Initial value load failed, writing default", "setting", name, "error", err.Error())

		value, err := r.Read(name)
		if err != nil {
			continue
		}
		if err := engine.SetVar(varName(name), value); err != nil {
			r.log.V(1).Info("Could not write default", "setting", name, "error", err.Error())
		}
	}
	return nil
}

func watcherScript(name string, channel uint64) string {
	fn := "XvimNotify" + name + "Changed"
	v := varName(name)
	lines := []string{
		fmt.Sprintf("fun! %s(d, k, z)", fn),
		fmt.Sprintf("call rpcnotify(%d, 'setting_changed', '%s', g:%s)", channel, name, v),
		"endf",
		fmt.Sprintf("call dictwatcheradd(g:, '%s', '%s')", v, fn),
	}
	return `exe "` + strings.Join(lines, `\n`) + `"`
}

// SetupChangedListeners installs one dictionary watcher per field that sends
// setting_changed to channel whenever g:xvim_<name> is assigned.
func (r *Registry) SetupChangedListeners(engine Engine, channel uint64) error {
	for _, name := range r.Names() {
		if err := engine.Command(watcherScript(name, channel)); err != nil {
			return fmt.Errorf("installing watcher for %s: %w", name, err)
		}
	}
	return nil
}

// HandleChangedNotification applies the arguments of a setting_changed
// notification: the field name followed by its new value.
func (r *Registry) HandleChangedNotification(args []any) error {
	if len(args) < 2 {
		return fmt.Errorf("setting_changed: want 2 arguments, got %d", len(args))
	}
	name, err := toString(args[0])
	if err != nil {
		return fmt.Errorf("setting_changed name: %w", err)
	}
	return r.Update(name, args[1])
}
