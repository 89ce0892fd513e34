// Package luamod loads Lua scripts as modules. A script declares its
// actions through the far table:
//
//	far.command{ id = "...", name = "Hello", prefix = "hi",
//		handler = function(e) print(e.command) end }
//	far.tool{ name = "Stats", options = { "panels", "editor" },
//		handler = function(e) end }
//	far.filer{ name = "Tar", mask = "*.tar", creates = true,
//		handler = function(e) end }
//	far.editor{ name = "Trim", mask = "*.txt",
//		handler = function(e) end }
//	far.resources{ en = { Hello = "Hello" } }
//
// A handler fails by raising an error or by returning nil and a message.
// The module name is the script base name without extension. An action
// without id gets an id derived from the module name, kind and name.
package luamod

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/language"

	"github.com/dshills/modhost/internal/manager"
	"github.com/dshills/modhost/internal/proxy"
)

// idSpace is the namespace of derived action ids.
var idSpace = uuid.MustParse("b7d0c5e4-3f2a-5c61-9e8d-4a1b2c3d4e5f")

// Option configures Load.
type Option func(*options)

type options struct {
	host     manager.Host
	settings proxy.Settings
	logger   *slog.Logger
	lang     language.Tag
	timeout  time.Duration
}

// WithHost sets the host the module actions are registered with.
func WithHost(h manager.Host) Option {
	return func(o *options) { o.host = h }
}

// WithSettings sets the settings store.
func WithSettings(s proxy.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLanguage sets the resource language.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// WithTimeout limits each script run and handler call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Module is a loaded Lua module.
type Module struct {
	name    string
	path    string
	state   *State
	manager *manager.Manager
}

// Load runs a script and creates its actions.
func Load(path string, opts ...Option) (*Module, error) {
	o := options{
		logger:  slog.Default(),
		lang:    language.English,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	logger := o.logger.With("module", name)

	mgrOpts := []manager.Option{
		manager.WithLogger(o.logger),
		manager.WithLanguage(o.lang),
	}
	if o.host != nil {
		mgrOpts = append(mgrOpts, manager.WithHost(o.host))
	}
	if o.settings != nil {
		mgrOpts = append(mgrOpts, manager.WithSettings(o.settings))
	}

	m := &Module{
		name:    name,
		path:    path,
		state:   newState(o.timeout, logger),
		manager: manager.New(name, mgrOpts...),
	}
	m.installAPI()

	if err := m.state.DoFile(path); err != nil {
		m.Close()
		return nil, fmt.Errorf("lua module %s: %w", name, err)
	}
	if err := m.manager.Discover(); err != nil {
		m.Close()
		return nil, fmt.Errorf("lua module %s: %w", name, err)
	}
	return m, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Path returns the script path.
func (m *Module) Path() string {
	return m.path
}

// Manager returns the module manager.
func (m *Module) Manager() *manager.Manager {
	return m.manager
}

// Close unloads the module actions and releases the Lua state.
func (m *Module) Close() error {
	m.manager.Unload()
	return m.state.Close()
}

func (m *Module) installAPI() {
	L := m.state.L
	far := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"command":   m.luaCommand,
		"tool":      m.luaTool,
		"filer":     m.luaFiler,
		"editor":    m.luaEditor,
		"resources": m.luaResources,
	})
	L.SetGlobal("far", far)
}

// decl is the common part of an action declaration.
type decl struct {
	id        uuid.UUID
	name      string
	resources bool
	handler   *lua.LFunction
}

func (m *Module) readDecl(L *lua.LState, kind proxy.Kind) decl {
	t := L.CheckTable(1)

	d := decl{
		name:      lua.LVAsString(t.RawGetString("name")),
		resources: lua.LVAsBool(t.RawGetString("resources")),
	}

	fn, ok := t.RawGetString("handler").(*lua.LFunction)
	if !ok {
		L.ArgError(1, "handler must be a function")
	}
	d.handler = fn

	if s := lua.LVAsString(t.RawGetString("id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			L.ArgError(1, fmt.Sprintf("bad id %q: %v", s, err))
		}
		d.id = id
	} else {
		d.id = uuid.NewSHA1(idSpace, []byte(m.name+"\x00"+kind.String()+"\x00"+d.name))
	}

	// Editor classes take names from resources when they are discovered.
	if d.resources && kind != proxy.KindEditor {
		if text := m.manager.GetString(d.name); text != "" {
			d.name = text
		}
	}
	return d
}

func (d decl) attribute() proxy.ActionAttribute {
	return proxy.ActionAttribute{Name: d.name, Resources: d.resources}
}

// raise turns a Go error into a Lua error.
func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

func (m *Module) luaCommand(L *lua.LState) int {
	d := m.readDecl(L, proxy.KindCommand)
	t := L.CheckTable(1)

	attr := proxy.CommandAttribute{
		ActionAttribute: d.attribute(),
		Prefix:          lua.LVAsString(t.RawGetString("prefix")),
	}
	_, err := m.manager.RegisterCommand(d.id, attr, func(_ any, e *proxy.CommandEventArgs) error {
		return m.call(d.handler, map[string]lua.LValue{"command": lua.LString(e.Command)})
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (m *Module) luaTool(L *lua.LState) int {
	d := m.readDecl(L, proxy.KindTool)
	t := L.CheckTable(1)

	var options proxy.ToolOptions
	if list, ok := t.RawGetString("options").(*lua.LTable); ok {
		var bad error
		list.ForEach(func(_, v lua.LValue) {
			opt, err := proxy.ParseToolOption(lua.LVAsString(v))
			if err != nil && bad == nil {
				bad = err
			}
			options |= opt
		})
		if bad != nil {
			return raise(L, bad)
		}
	}

	attr := proxy.ToolAttribute{ActionAttribute: d.attribute(), Options: options}
	_, err := m.manager.RegisterTool(d.id, attr, func(_ any, e *proxy.ToolEventArgs) error {
		return m.call(d.handler, map[string]lua.LValue{"from": lua.LString(e.From.String())})
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (m *Module) luaFiler(L *lua.LState) int {
	d := m.readDecl(L, proxy.KindFiler)
	t := L.CheckTable(1)

	attr := proxy.FilerAttribute{
		ActionAttribute: d.attribute(),
		Mask:            lua.LVAsString(t.RawGetString("mask")),
		Creates:         lua.LVAsBool(t.RawGetString("creates")),
	}
	_, err := m.manager.RegisterFiler(d.id, attr, func(_ any, e *proxy.FilerEventArgs) error {
		return m.call(d.handler, map[string]lua.LValue{
			"name": lua.LString(e.Name),
			"mode": lua.LString(e.Mode.String()),
			"data": lua.LString(e.Data),
		})
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

// luaEditor adds a class for the editor hook. Editor hooks always run as
// class instances, so the hook is discovered after the script has run.
func (m *Module) luaEditor(L *lua.LState) int {
	d := m.readDecl(L, proxy.KindEditor)
	t := L.CheckTable(1)

	attr := proxy.EditorAttribute{
		ActionAttribute: d.attribute(),
		Mask:            lua.LVAsString(t.RawGetString("mask")),
	}
	c := &proxy.Class{
		Name:      "lua:" + m.name + "/" + d.id.String(),
		ID:        d.id,
		New:       func() any { return &editorHook{module: m, handler: d.handler} },
		Attribute: attr,
	}
	if err := m.manager.AddClass(c); err != nil {
		return raise(L, err)
	}
	return 0
}

func (m *Module) luaResources(L *lua.LState) int {
	t := L.CheckTable(1)

	var bad error
	t.ForEach(func(k, v lua.LValue) {
		strs, ok := v.(*lua.LTable)
		if !ok || bad != nil {
			return
		}
		tag, err := language.Parse(lua.LVAsString(k))
		if err != nil {
			bad = fmt.Errorf("bad language %q: %w", lua.LVAsString(k), err)
			return
		}
		texts := make(map[string]string)
		strs.ForEach(func(key, text lua.LValue) {
			texts[lua.LVAsString(key)] = lua.LVAsString(text)
		})
		bad = m.manager.AddResources(tag, texts)
	})
	if bad != nil {
		return raise(L, bad)
	}
	return 0
}

// call runs a handler with an event table. A handler reports failure by
// raising an error or by returning nil and a message.
func (m *Module) call(fn *lua.LFunction, event map[string]lua.LValue) error {
	results, err := m.state.CallTable(fn, event)
	if err != nil {
		return fmt.Errorf("lua module %s: %w", m.name, err)
	}
	if len(results) >= 2 && !lua.LVAsBool(results[0]) {
		if msg, ok := results[1].(lua.LString); ok {
			return fmt.Errorf("lua module %s: %s", m.name, string(msg))
		}
	}
	return nil
}

// editorHook is the instance of a Lua editor hook class.
type editorHook struct {
	module  *Module
	handler *lua.LFunction
}

func (h *editorHook) Invoke(editor proxy.EditorHandle, _ *proxy.EditorEventArgs) error {
	var file string
	if editor != nil {
		file = editor.FileName()
	}
	return h.module.call(h.handler, map[string]lua.LValue{"file": lua.LString(file)})
}
