// Package host is the host side of module actions: the registration table
// and the dispatch of host events to the registered proxies.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/modhost/internal/proxy"
)

// Errors returned by Host.
var (
	ErrDuplicate   = errors.New("action is already registered")
	ErrNotFound    = errors.New("action not found")
	ErrNoCommand   = errors.New("no command for prefix")
	ErrCommandLine = errors.New("command line has no prefix")
	ErrNoFiler     = errors.New("no filer for file")
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// Host holds the registered actions of all modules.
type Host struct {
	mu      sync.RWMutex
	actions map[uuid.UUID]proxy.Action
	logger  *slog.Logger

	// onChange callbacks are called when actions are added or removed.
	onChange []func()
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{
		actions: make(map[uuid.UUID]proxy.Action),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds an action.
func (h *Host) Register(a proxy.Action) error {
	if a == nil {
		return fmt.Errorf("action cannot be nil")
	}

	h.mu.Lock()
	if _, ok := h.actions[a.ID()]; ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, a.Key())
	}
	h.actions[a.ID()] = a
	h.mu.Unlock()

	h.logger.Debug("Registered action", "key", a.Key(), "kind", a.Kind().String(), "name", a.Name())
	h.notifyChange()
	return nil
}

// Unregister removes an action. Unknown ids are ignored.
func (h *Host) Unregister(id uuid.UUID) {
	h.mu.Lock()
	_, exists := h.actions[id]
	if exists {
		delete(h.actions, id)
	}
	h.mu.Unlock()

	if exists {
		h.logger.Debug("Unregistered action", "id", id.String())
		h.notifyChange()
	}
}

// UnregisterModule removes all actions of a module and returns their
// number.
func (h *Host) UnregisterModule(module string) int {
	h.mu.Lock()
	count := 0
	for id, a := range h.actions {
		if a.ModuleName() == module {
			delete(h.actions, id)
			count++
		}
	}
	h.mu.Unlock()

	if count > 0 {
		h.notifyChange()
	}
	return count
}

// Get returns an action by id.
func (h *Host) Get(id uuid.UUID) (proxy.Action, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.actions[id]
	return a, ok
}

// Find returns an action by its key (module name, backslash, id).
func (h *Host) Find(key string) (proxy.Action, bool) {
	for _, a := range h.snapshot() {
		if a.Key() == key {
			return a, true
		}
	}
	return nil, false
}

// Count returns the number of registered actions.
func (h *Host) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.actions)
}

// Actions returns all actions sorted by kind, then name, then key.
func (h *Host) Actions() []proxy.Action {
	actions := h.snapshot()
	sort.Slice(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Kind() != b.Kind() {
			return a.Kind() < b.Kind()
		}
		if a.Name() != b.Name() {
			return a.Name() < b.Name()
		}
		return a.Key() < b.Key()
	})
	return actions
}

// OnChange registers a callback for registration changes.
func (h *Host) OnChange(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// Refresh notifies the change listeners without changing the table.
func (h *Host) Refresh() {
	h.notifyChange()
}

// ReloadSettings applies the stored user settings to every action again
// and notifies the change listeners. Actions that fail keep their current
// settings; the errors are joined.
func (h *Host) ReloadSettings() error {
	var errs []error
	for _, a := range h.snapshot() {
		if err := a.ReloadSettings(); err != nil {
			h.logger.Warn("Cannot reload action settings", "key", a.Key(), "error", err)
			errs = append(errs, err)
		}
	}
	h.notifyChange()
	return errors.Join(errs...)
}

func (h *Host) notifyChange() {
	h.mu.RLock()
	callbacks := make([]func(), len(h.onChange))
	copy(callbacks, h.onChange)
	h.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (h *Host) snapshot() []proxy.Action {
	h.mu.RLock()
	defer h.mu.RUnlock()

	actions := make([]proxy.Action, 0, len(h.actions))
	for _, a := range h.actions {
		actions = append(actions, a)
	}
	return actions
}

// safeInvoke calls an action and turns a panic into an error.
func safeInvoke(a proxy.Action, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v", a.Key(), r)
		}
	}()
	return fn()
}
