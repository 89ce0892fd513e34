// Package manager implements the module manager that owns the classes,
// resources and action proxies of one module.
package manager

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/dshills/modhost/internal/proxy"
)

// Errors returned by Manager.
var (
	ErrClassNotFound = errors.New("class not found")
	ErrDuplicate     = errors.New("action already exists")
	ErrNoConstructor = errors.New("class has no constructor")
	ErrUnloaded      = errors.New("module is unloaded")
)

// Host is the host side of action registration.
type Host interface {
	proxy.Registrar

	// Register adds an action to the host.
	Register(a proxy.Action) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithSettings sets the settings store of the module actions.
func WithSettings(s proxy.Settings) Option {
	return func(m *Manager) {
		m.settings = s
	}
}

// WithHost sets the host the actions are registered with.
func WithHost(h Host) Option {
	return func(m *Manager) {
		m.host = h
	}
}

// WithLogger sets the module logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLanguage sets the language of module resources.
func WithLanguage(tag language.Tag) Option {
	return func(m *Manager) {
		m.lang = tag
	}
}

// WithConnect sets the function that connects the module. It runs once,
// before the first action of the module is invoked.
func WithConnect(fn func() error) Option {
	return func(m *Manager) {
		m.connect = fn
	}
}

// Manager is the manager of one module. It implements proxy.Manager.
type Manager struct {
	mu sync.RWMutex

	name     string
	settings proxy.Settings
	host     Host
	logger   *slog.Logger
	lang     language.Tag

	classes    map[string]*proxy.Class
	classOrder []string

	resources       *catalog.Builder
	printer         *message.Printer
	cachedResources bool

	actions  map[uuid.UUID]proxy.Action
	order    []uuid.UUID
	unloaded bool

	connectMu   sync.Mutex
	connect     func() error
	connected   bool
	invocations int
}

// New creates the manager of a module.
func New(name string, opts ...Option) *Manager {
	m := &Manager{
		name:      name,
		logger:    slog.Default(),
		lang:      language.English,
		classes:   make(map[string]*proxy.Class),
		resources: catalog.NewBuilder(catalog.Fallback(language.English)),
		actions:   make(map[uuid.UUID]proxy.Action),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("module", name)
	return m
}

// ModuleName returns the module name.
func (m *Manager) ModuleName() string {
	return m.name
}

// Language returns the resource language.
func (m *Manager) Language() language.Tag {
	return m.lang
}

// Settings returns the settings store.
func (m *Manager) Settings() proxy.Settings {
	return m.settings
}

// Host returns the registrar used by proxies. Unregistering through it
// also removes the action from the manager.
func (m *Manager) Host() proxy.Registrar {
	return registrar{m}
}

// Logger returns the module logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// AddClass adds a class to the module.
func (m *Manager) AddClass(c *proxy.Class) error {
	if c == nil || c.Name == "" {
		return errors.New("class must have a name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.classes[c.Name]; !ok {
		m.classOrder = append(m.classOrder, c.Name)
	}
	m.classes[c.Name] = c
	return nil
}

// Classes returns the classes in the order they were added.
func (m *Manager) Classes() []*proxy.Class {
	m.mu.RLock()
	defer m.mu.RUnlock()

	classes := make([]*proxy.Class, 0, len(m.classOrder))
	for _, name := range m.classOrder {
		classes = append(classes, m.classes[name])
	}
	return classes
}

// ResolveClass finds a class by name.
func (m *Manager) ResolveClass(name string) (*proxy.Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.classes[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", m.name, ErrClassNotFound, name)
	}
	return c, nil
}

// CreateInstance creates an instance of a class. A panicking constructor
// is reported as an error.
func (m *Manager) CreateInstance(c *proxy.Class) (instance any, err error) {
	if c == nil || c.New == nil {
		return nil, ErrNoConstructor
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("constructor of %s panicked: %v", c.Name, r)
		}
	}()
	return c.New(), nil
}

// Invoking connects the module on the first call and counts invocations.
// A failed connection is logged and retried on the next call.
func (m *Manager) Invoking() {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	m.invocations++
	if m.connected || m.connect == nil {
		return
	}

	if err := m.connect(); err != nil {
		m.logger.Error("Cannot connect module", "error", err)
		return
	}
	m.connected = true
	m.logger.Debug("Connected module")
}

// Invocations returns the number of invoked actions.
func (m *Manager) Invocations() int {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()
	return m.invocations
}

// Connected reports whether the module is connected.
func (m *Manager) Connected() bool {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()
	return m.connected
}

// registrar routes proxy unregistration through the manager.
type registrar struct {
	m *Manager
}

func (r registrar) Unregister(id uuid.UUID) {
	r.m.Unregister(id)
}
