package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// Action is the common contract of action proxies.
type Action interface {
	// ID returns the unique action id.
	ID() uuid.UUID

	// Key returns the settings key: module name, a backslash, and the id.
	Key() string

	// Kind returns the action kind.
	Kind() Kind

	// Name returns the display name.
	Name() string

	// ModuleName returns the owning module name.
	ModuleName() string

	// ClassName returns the implementation class name, or "" for actions
	// bound to a handler.
	ClassName() string

	// Manager returns the owning module manager.
	Manager() Manager

	// GetInstance creates a new instance of the implementation class.
	GetInstance() (any, error)

	// Unregister removes the action from the host.
	Unregister()

	// ReloadSettings applies the stored user settings again, e.g. after the
	// settings store was reloaded.
	ReloadSettings() error

	// WriteCache appends the cache fields of the action to dst.
	WriteCache(dst []string) []string

	// String returns a summary for diagnostics.
	String() string
}

// classRef is either unresolvedClass or resolvedClass. A nil classRef
// means the action has no class.
type classRef interface {
	className() string
}

type unresolvedClass string

func (c unresolvedClass) className() string { return string(c) }

type resolvedClass struct {
	class *Class
}

func (c resolvedClass) className() string { return c.class.Name }

var errNoClass = errors.New("action has no class")

var discardLogger = slog.New(slog.DiscardHandler)

// action implements the parts of Action shared by all kinds.
type action struct {
	mu sync.Mutex

	manager Manager
	id      uuid.UUID
	attr    *ActionAttribute
	class   classRef
}

// initFromClass is the discovery constructor step.
func (a *action) initFromClass(m Manager, c *Class, attr *ActionAttribute) error {
	a.manager = m
	a.id = c.ID
	a.attr = attr
	a.class = resolvedClass{class: c}

	if err := a.validateName(); err != nil {
		return err
	}

	if attr.Resources {
		m.SetCachedResources()
		if name := m.GetString(attr.Name); name != "" {
			attr.Name = name
		}
	}
	return nil
}

// initDynamic is the registration constructor step.
func (a *action) initDynamic(m Manager, id uuid.UUID, attr *ActionAttribute) {
	a.manager = m
	a.id = id
	a.attr = attr
}

// initFromCache is the cache constructor step. It reads the common fields.
func (a *action) initFromCache(m Manager, r *RecordReader, attr *ActionAttribute) error {
	a.manager = m
	a.attr = attr

	className, err := r.Read("ClassName")
	if err != nil {
		return err
	}
	if className == "" {
		return &CacheError{Field: "ClassName", Value: className}
	}
	if attr.Name, err = r.Read("Name"); err != nil {
		return err
	}
	if a.id, err = r.readID("ID"); err != nil {
		return err
	}

	a.class = unresolvedClass(className)
	return nil
}

func (a *action) validateName() error {
	if a.attr.Name == "" {
		return &ConfigurationError{Key: a.Key(), Message: "empty action name is not allowed"}
	}
	return nil
}

// ID returns the unique action id.
func (a *action) ID() uuid.UUID {
	return a.id
}

// Key returns the settings key of the action.
func (a *action) Key() string {
	return a.ModuleName() + `\` + a.id.String()
}

// Name returns the display name.
func (a *action) Name() string {
	return a.attr.Name
}

// ModuleName returns the owning module name.
func (a *action) ModuleName() string {
	return a.manager.ModuleName()
}

// Manager returns the owning module manager.
func (a *action) Manager() Manager {
	return a.manager
}

// ClassName returns the class name, resolved or not.
func (a *action) ClassName() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.class == nil {
		return ""
	}
	return a.class.className()
}

// resolve returns the class, resolving the class name on first use.
func (a *action) resolve() (*Class, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch ref := a.class.(type) {
	case resolvedClass:
		return ref.class, nil
	case unresolvedClass:
		c, err := a.manager.ResolveClass(string(ref))
		if err != nil {
			return nil, &ResolutionError{Class: string(ref), Err: err}
		}
		if c == nil {
			return nil, &ResolutionError{Class: string(ref)}
		}
		a.class = resolvedClass{class: c}
		return c, nil
	default:
		return nil, &ResolutionError{Err: errNoClass}
	}
}

// GetInstance creates a new instance of the action class.
func (a *action) GetInstance() (any, error) {
	c, err := a.resolve()
	if err != nil {
		return nil, err
	}

	instance, err := a.manager.CreateInstance(c)
	if err != nil {
		return nil, &ResolutionError{Class: c.Name, Err: err}
	}
	return instance, nil
}

// Unregister removes the action from the host. The host may ignore it.
func (a *action) Unregister() {
	if host := a.manager.Host(); host != nil {
		host.Unregister(a.id)
	}
}

// WriteCache appends the common cache fields.
func (a *action) WriteCache(dst []string) []string {
	return append(dst, a.ClassName(), a.attr.Name, a.id.String())
}

// String returns the common summary.
func (a *action) String() string {
	return fmt.Sprintf("%s %s Name='%s'", a.Key(), a.ClassName(), a.attr.Name)
}

func (a *action) invoking() {
	a.manager.Invoking()
}

func (a *action) logger() *slog.Logger {
	if l := a.manager.Logger(); l != nil {
		return l
	}
	return discardLogger
}

func (a *action) settings() Settings {
	if s := a.manager.Settings(); s != nil {
		return s
	}
	return nopSettings{}
}

// target names what an invocation runs: the handler function or the class.
func (a *action) target(handler any) string {
	if handler != nil && !reflect.ValueOf(handler).IsNil() {
		if fn := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()); fn != nil {
			return fn.Name()
		}
	}
	return a.ClassName()
}

// instanceError reports an instance that does not implement the kind's
// module interface.
func (a *action) instanceError(instance any, want string) error {
	return &ResolutionError{
		Class: a.ClassName(),
		Err:   fmt.Errorf("%T does not implement %s", instance, want),
	}
}

// nopSettings stores nothing and returns defaults.
type nopSettings struct{}

func (nopSettings) Load(_, _, def string) (string, error) { return def, nil }
func (nopSettings) Save(_, _, _ string) error           { return nil }
