package settings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	vars     map[string]any
	written  map[string]any
	commands []string
	failCmd  bool
}

func newFakeEngine(vars map[string]any) *fakeEngine {
	if vars == nil {
		vars = map[string]any{}
	}
	return &fakeEngine{vars: vars, written: map[string]any{}}
}

func (e *fakeEngine) Var(name string, result interface{}) error {
	v, ok := e.vars[name]
	if !ok {
		return errors.New("Key not found: " + name)
	}
	*result.(*any) = v
	return nil
}

func (e *fakeEngine) SetVar(name string, value interface{}) error {
	e.written[name] = value
	return nil
}

func (e *fakeEngine) Command(cmd string) error {
	if e.failCmd {
		return errors.New("E492: Not an editor command")
	}
	e.commands = append(e.commands, cmd)
	return nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(logr.Discard())
	require.NoError(t, RegisterDefaults(r, CmdLineSettings{}))
	return r
}

func TestSetGetRoundTrip(t *testing.T) {
	r := NewRegistry(logr.Discard())
	Set(r, WindowSettings{RefreshRate: 144, Transparency: 0.5})

	got := Get[WindowSettings](r)
	assert.Equal(t, uint64(144), got.RefreshRate)
	assert.Equal(t, float32(0.5), got.Transparency)

	Set(r, WindowSettings{RefreshRate: 30})
	assert.Equal(t, uint64(30), Get[WindowSettings](r).RefreshRate)
}

func TestGetReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)
	w := Get[WindowSettings](r)
	w.RefreshRate = 1
	assert.Equal(t, uint64(60), Get[WindowSettings](r).RefreshRate)
}

func TestUnregisteredGroup(t *testing.T) {
	r := NewRegistry(logr.Discard())

	_, err := Lookup[KeyboardSettings](r)
	assert.ErrorIs(t, err, ErrGroupNotRegistered)

	assert.Panics(t, func() { Get[KeyboardSettings](r) })
}

func TestDefaults(t *testing.T) {
	r := NewRegistry(logr.Discard())
	require.NoError(t, RegisterDefaults(r, CmdLineSettings{NeovimArgs: []string{"-u", "NONE", "--noIdle"}}))

	w := Get[WindowSettings](r)
	assert.Equal(t, uint64(60), w.RefreshRate)
	assert.Equal(t, float32(1.0), w.Transparency)
	assert.True(t, w.NoIdle)
	assert.False(t, Get[KeyboardSettings](r).UseLogo)

	assert.Equal(t, []string{
		"fullscreen",
		"input_use_logo",
		"no_idle",
		"refresh_rate",
		"remember_window_size",
		"transparency",
	}, r.Names())
}

func TestDuplicateFieldRejected(t *testing.T) {
	r := newTestRegistry(t)

	type dup = KeyboardSettings
	err := Register(r, dup{}, Schema[dup]{
		Prefix: "input",
		Fields: []Field[dup]{BoolField("use_logo", func(k *dup) *bool { return &k.UseLogo })},
	})
	assert.ErrorIs(t, err, ErrDuplicateField)

	r2 := NewRegistry(logr.Discard())
	err = Register(r2, KeyboardSettings{}, Schema[KeyboardSettings]{
		Fields: []Field[KeyboardSettings]{
			BoolField("a", func(k *KeyboardSettings) *bool { return &k.UseLogo }),
			BoolField("a", func(k *KeyboardSettings) *bool { return &k.UseLogo }),
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateField)
}

func TestReadInitialValues(t *testing.T) {
	r := newTestRegistry(t)
	engine := newFakeEngine(map[string]any{
		"xvim_refresh_rate":   int64(120),
		"xvim_input_use_logo": int64(1),
		"xvim_transparency":   "opaque",
	})

	require.NoError(t, r.ReadInitialValues(context.Background(), engine))

	w := Get[WindowSettings](r)
	assert.Equal(t, uint64(120), w.RefreshRate)
	assert.Equal(t, float32(1.0), w.Transparency, "mistyped value leaves the default")
	assert.True(t, Get[KeyboardSettings](r).UseLogo)

	assert.Equal(t, map[string]any{
		"xvim_fullscreen":           false,
		"xvim_no_idle":              false,
		"xvim_remember_window_size": false,
	}, engine.written)
}

func TestReadInitialValuesStopsOnCancel(t *testing.T) {
	r := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newFakeEngine(nil)
	assert.ErrorIs(t, r.ReadInitialValues(ctx, engine), context.Canceled)
	assert.Empty(t, engine.written)
}

func TestSetupChangedListeners(t *testing.T) {
	r := newTestRegistry(t)
	engine := newFakeEngine(nil)

	require.NoError(t, r.SetupChangedListeners(engine, 5))
	require.Len(t, engine.commands, len(r.Names()))

	var script string
	for _, cmd := range engine.commands {
		if strings.Contains(cmd, "'refresh_rate'") {
			script = cmd
		}
	}
	require.NotEmpty(t, script)
	assert.True(t, strings.HasPrefix(script, `exe "fun! XvimNotifyrefresh_rateChanged(d, k, z)\n`))
	assert.Contains(t, script, "rpcnotify(5, 'setting_changed', 'refresh_rate', g:xvim_refresh_rate)")
	assert.Contains(t, script, "dictwatcheradd(g:, 'xvim_refresh_rate', 'XvimNotifyrefresh_rateChanged')")

	engine.failCmd = true
	assert.Error(t, r.SetupChangedListeners(engine, 5))
}

func TestHandleChangedNotification(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.HandleChangedNotification([]any{"transparency", 0.8}))
	assert.InDelta(t, 0.8, Get[WindowSettings](r).Transparency, 1e-6)

	require.NoError(t, r.HandleChangedNotification([]any{[]byte("fullscreen"), true}))
	assert.True(t, Get[WindowSettings](r).Fullscreen)

	require.NoError(t, r.HandleChangedNotification([]any{"transparency", int64(0)}))
	assert.Equal(t, float32(0), Get[WindowSettings](r).Transparency)

	err := r.HandleChangedNotification([]any{"refresh_rate", int64(-5)})
	assert.ErrorIs(t, err, ErrValueType)
	assert.Equal(t, uint64(60), Get[WindowSettings](r).RefreshRate)

	assert.ErrorIs(t, r.HandleChangedNotification([]any{"cursor_vfx", "railgun"}), ErrUnknownSetting)
	assert.Error(t, r.HandleChangedNotification([]any{"fullscreen"}))
	assert.Error(t, r.HandleChangedNotification([]any{int64(3), true}))
}

func TestSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Update("input_use_logo", true))

	snap := r.Snapshot()
	assert.Equal(t, uint64(60), snap["refresh_rate"])
	assert.Equal(t, float64(1.0), snap["transparency"])
	assert.Equal(t, true, snap["input_use_logo"])
	assert.Len(t, snap, 6)
}

func TestNarrowIntegerFields(t *testing.T) {
	type group = KeyboardSettings
	var width uint32
	var offset int32
	r := NewRegistry(logr.Discard())
	require.NoError(t, Register(r, group{}, Schema[group]{
		Prefix: "test",
		Fields: []Field[group]{
			Uint32Field("width", func(*group) *uint32 { return &width }),
			Int32Field("offset", func(*group) *int32 { return &offset }),
		},
	}))

	require.NoError(t, r.Update("test_width", uint64(80)))
	require.NoError(t, r.Update("test_offset", int64(-3)))
	assert.Equal(t, uint32(80), width)
	assert.Equal(t, int32(-3), offset)

	assert.ErrorIs(t, r.Update("test_width", uint64(1)<<40), ErrValueType)
	assert.ErrorIs(t, r.Update("test_offset", "x"), ErrValueType)
}
