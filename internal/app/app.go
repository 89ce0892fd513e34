// Package app wires the modhost components together: configuration,
// logging, the settings store, the action host, the module cache, the
// builtin module and the Lua modules.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/modhost/internal/cache"
	"github.com/dshills/modhost/internal/config"
	"github.com/dshills/modhost/internal/host"
	"github.com/dshills/modhost/internal/luamod"
	"github.com/dshills/modhost/internal/manager"
	"github.com/dshills/modhost/internal/proxy"
	"github.com/dshills/modhost/internal/settings"
)

// Application owns the components and their lifecycle.
type Application struct {
	mu sync.Mutex

	config   *config.Config
	logger   *slog.Logger
	store    settings.Store
	watcher  *settings.Watcher
	host     *host.Host
	cache    *cache.Cache
	builtin  *manager.Manager
	modules  []*luamod.Module
	failures []error

	out    io.Writer
	closed atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Config is used instead of loading ConfigPath when set.
	Config *config.Config

	// Out receives the output of actions. Defaults to os.Stdout.
	Out io.Writer

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
}

// New creates and bootstraps the application. Modules that fail to load
// are skipped and reported by ModuleErrors.
func New(opts Options) (*Application, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	app := &Application{out: opts.Out}
	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger {
	return app.logger
}

// Host returns the action host.
func (app *Application) Host() *host.Host {
	return app.host
}

// Settings returns the settings store.
func (app *Application) Settings() settings.Store {
	return app.store
}

// Cache returns the module cache, nil if disabled.
func (app *Application) Cache() *cache.Cache {
	return app.cache
}

// Modules returns the module managers, the builtin module first.
func (app *Application) Modules() []*manager.Manager {
	app.mu.Lock()
	defer app.mu.Unlock()

	managers := []*manager.Manager{app.builtin}
	for _, m := range app.modules {
		managers = append(managers, m.Manager())
	}
	return managers
}

// ModuleErrors returns the errors of modules that failed to load.
func (app *Application) ModuleErrors() []error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]error(nil), app.failures...)
}

// Action returns the action with the given key.
func (app *Application) Action(key string) (proxy.Action, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	a, ok := app.host.Find(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, key)
	}
	return a, nil
}

// SetPrefix changes the prefix of a command.
func (app *Application) SetPrefix(key, value string) error {
	a, err := app.Action(key)
	if err != nil {
		return err
	}
	cmd, ok := a.(*proxy.Command)
	if !ok {
		return fmt.Errorf("%w: %s has no prefix", ErrUnsupportedSetting, a.Kind())
	}
	return cmd.SetPrefix(value)
}

// SetMask changes the mask of an editor hook or a filer.
func (app *Application) SetMask(key, value string) error {
	a, err := app.Action(key)
	if err != nil {
		return err
	}
	switch p := a.(type) {
	case *proxy.Editor:
		return p.SetMask(value)
	case *proxy.Filer:
		return p.SetMask(value)
	}
	return fmt.Errorf("%w: %s has no mask", ErrUnsupportedSetting, a.Kind())
}

// SetHotkey changes the hotkey of a tool.
func (app *Application) SetHotkey(key, value string) error {
	a, err := app.Action(key)
	if err != nil {
		return err
	}
	tool, ok := a.(*proxy.Tool)
	if !ok {
		return fmt.Errorf("%w: %s has no hotkey", ErrUnsupportedSetting, a.Kind())
	}
	return tool.SetHotkey(value)
}

// Shutdown saves the cache and releases all components. It is safe to
// call more than once.
func (app *Application) Shutdown() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	var errs []error
	if app.cache != nil {
		if err := app.cache.Save(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range app.modules {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.modules = nil
	if app.builtin != nil {
		app.builtin.Unload()
	}
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		app.logger.Error("Shutdown failed", "error", err)
	} else {
		app.logger.Debug("Shut down")
	}
	return err
}
