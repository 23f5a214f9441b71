// Package settings holds the typed configuration groups shared by the bridge
// and mirrors their fields to the engine's g:xvim_* variables.
package settings

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

var (
	ErrGroupNotRegistered = errors.New("settings group not registered")
	ErrDuplicateField     = errors.New("duplicate setting field")
	ErrUnknownSetting     = errors.New("unknown setting")
)

// Group is the closed set of settings groups the registry can hold.
type Group interface {
	CmdLineSettings | WindowSettings | KeyboardSettings
}

type handler struct {
	update func(value any) error
	read   func() any
}

// Registry stores the current value of every settings group and the
// per-field handlers used to synchronize them with the engine.
type Registry struct {
	log logr.Logger

	mu       sync.RWMutex
	cmdLine  *CmdLineSettings
	window   *WindowSettings
	keyboard *KeyboardSettings

	handlersMu sync.RWMutex
	handlers   map[string]handler
}

func NewRegistry(log logr.Logger) *Registry {
	return &Registry{
		log:      log,
		handlers: make(map[string]handler),
	}
}

// slot returns the storage cell for group T. Callers hold r.mu.
func slot[T Group](r *Registry) **T {
	var cell any
	switch any((*T)(nil)).(type) {
	case *CmdLineSettings:
		cell = &r.cmdLine
	case *WindowSettings:
		cell = &r.window
	case *KeyboardSettings:
		cell = &r.keyboard
	}
	return cell.(**T)
}

// Set replaces the whole value of group T.
func Set[T Group](r *Registry, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := value
	*slot[T](r) = &v
}

// Lookup returns a copy of group T, or ErrGroupNotRegistered if it was never
// set.
func Lookup[T Group](r *Registry) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	current := *slot[T](r)
	if current == nil {
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrGroupNotRegistered, zero)
	}
	return *current, nil
}

// Get returns a copy of group T. Asking for a group that was never set is a
// programming error and panics.
func Get[T Group](r *Registry) T {
	value, err := Lookup[T](r)
	if err != nil {
		panic(err)
	}
	return value
}

// Register stores defaults for group T and installs one handler per schema
// field. Field names must be unique across every registered group.
func Register[T Group](r *Registry, defaults T, schema Schema[T]) error {
	r.handlersMu.Lock()
	defer r.handlersMu.Unlock()

	seen := make(map[string]bool, len(schema.Fields))
	for _, field := range schema.Fields {
		name := schema.fieldName(field)
		if _, exists := r.handlers[name]; exists || seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, name)
		}
		seen[name] = true
	}

	Set(r, defaults)

	for _, field := range schema.Fields {
		field := field
		r.handlers[schema.fieldName(field)] = handler{
			update: func(value any) error {
				r.mu.Lock()
				defer r.mu.Unlock()
				return field.decode(*slot[T](r), value)
			},
			read: func() any {
				r.mu.RLock()
				defer r.mu.RUnlock()
				return field.encode(*slot[T](r))
			},
		}
	}
	return nil
}

// Names returns every synchronized field name, sorted.
func (r *Registry) Names() []string {
	r.handlersMu.RLock()
	defer r.handlersMu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) handler(name string) (handler, bool) {
	r.handlersMu.RLock()
	defer r.handlersMu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Update feeds a raw engine value into the named field.
func (r *Registry) Update(name string, value any) error {
	h, ok := r.handler(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	if err := h.update(value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return nil
}

// Read returns the current value of the named field in the form written to
// the engine.
func (r *Registry) Read(name string) (any, error) {
	h, ok := r.handler(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	return h.read(), nil
}

// Snapshot returns every synchronized field keyed by name.
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, name := range r.Names() {
		if v, err := r.Read(name); err == nil {
			out[name] = v
		}
	}
	return out
}
