package app

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/modhost/internal/builtin"
	"github.com/dshills/modhost/internal/cache"
	"github.com/dshills/modhost/internal/config"
	"github.com/dshills/modhost/internal/host"
	"github.com/dshills/modhost/internal/logging"
	"github.com/dshills/modhost/internal/luamod"
	"github.com/dshills/modhost/internal/manager"
	"github.com/dshills/modhost/internal/settings"
)

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initHost,
		b.initSettings,
		b.initCache,
		b.initBuiltin,
		b.initModules,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	b.app.logger.Debug("Bootstrapped", "actions", b.app.host.Count(), "modules", len(b.app.modules)+1)
	return nil
}

// initConfig loads the configuration and builds the logger.
func (b *bootstrapper) initConfig() error {
	cfg := b.opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(b.opts.ConfigPath); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	} else if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	b.app.config = cfg
	b.app.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, b.opts.LogOutput)
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initSettings opens the settings store and watches a settings file.
func (b *bootstrapper) initSettings() error {
	cfg := b.app.config.Settings

	store, err := settings.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return &InitError{Component: "settings", Err: err}
	}
	b.app.store = store
	b.initOrder = append(b.initOrder, "settings")

	file, ok := store.(*settings.File)
	if !ok || !cfg.Watch {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file.Path()), 0o755); err != nil {
		return &InitError{Component: "settings watcher", Err: err}
	}

	logger := b.app.logger.With("component", "settings")
	w, err := settings.Watch(file,
		settings.WithWatchLogger(logger),
		settings.OnReload(func(err error) {
			if err == nil {
				_ = b.app.host.ReloadSettings()
			}
		}),
	)
	if err != nil {
		return &InitError{Component: "settings watcher", Err: err}
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")
	return nil
}

func (b *bootstrapper) initHost() error {
	b.app.host = host.New(host.WithLogger(b.app.logger))
	b.initOrder = append(b.initOrder, "host")
	return nil
}

// initCache opens the module cache. A broken cache file is replaced.
func (b *bootstrapper) initCache() error {
	cfg := b.app.config.Cache
	if cfg.Disabled {
		return nil
	}

	c, err := cache.Open(cfg.Path)
	if err != nil {
		b.app.logger.Warn("Discarding module cache", "path", cfg.Path, "error", err)
		c = cache.New(cfg.Path)
	}
	b.app.cache = c
	b.initOrder = append(b.initOrder, "cache")
	return nil
}

// initBuiltin loads the builtin module, from the cache when fresh.
func (b *bootstrapper) initBuiltin() error {
	m, err := builtin.New(b.app.host, b.managerOptions()...)
	if err != nil {
		return &InitError{Component: "builtin", Err: err}
	}
	b.app.builtin = m
	b.initOrder = append(b.initOrder, "builtin")

	cached, err := manager.Load(m, b.app.cache, builtin.Stamp)
	if err != nil {
		return &InitError{Component: "builtin", Err: err}
	}
	if err := builtin.Register(m, b.app.host, b.app.out); err != nil {
		return &InitError{Component: "builtin", Err: err}
	}
	b.app.logger.Debug("Loaded builtin module", "cached", cached)
	return nil
}

func (b *bootstrapper) managerOptions() []manager.Option {
	return []manager.Option{
		manager.WithSettings(b.app.store),
		manager.WithLogger(b.app.logger),
		manager.WithLanguage(b.app.config.Language()),
	}
}

// initModules loads the Lua modules. A failed module is logged and
// skipped.
func (b *bootstrapper) initModules() error {
	paths, err := scriptPaths(b.app.config.Modules.Paths)
	if err != nil {
		return &InitError{Component: "modules", Err: err}
	}

	for _, path := range paths {
		mod, err := luamod.Load(path,
			luamod.WithHost(b.app.host),
			luamod.WithSettings(b.app.store),
			luamod.WithLogger(b.app.logger),
			luamod.WithLanguage(b.app.config.Language()),
		)
		if err != nil {
			b.app.logger.Warn("Cannot load module", "path", path, "error", err)
			b.app.failures = append(b.app.failures, &ModuleError{Path: path, Err: err})
			continue
		}
		b.app.modules = append(b.app.modules, mod)
	}
	b.initOrder = append(b.initOrder, "modules")
	return nil
}

// scriptPaths expands directories to the *.lua files they contain.
func scriptPaths(paths []string) ([]string, error) {
	var scripts []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			scripts = append(scripts, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.lua"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		scripts = append(scripts, matches...)
	}
	return scripts, nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(name string) {
	switch name {
	case "modules":
		for _, m := range b.app.modules {
			_ = m.Close()
		}
		b.app.modules = nil
	case "builtin":
		b.app.builtin.Unload()
		b.app.builtin = nil
	case "cache":
		b.app.cache = nil
	case "host":
		b.app.host = nil
	case "watcher":
		_ = b.app.watcher.Close()
		b.app.watcher = nil
	case "settings":
		if err := b.app.store.Close(); err != nil {
			b.app.logger.Warn("Closing settings", "error", err)
		}
		b.app.store = nil
	case "config":
		b.app.config = nil
	}
}
