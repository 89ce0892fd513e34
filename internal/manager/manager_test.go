package manager

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/dshills/modhost/internal/cache"
	"github.com/dshills/modhost/internal/proxy"
	"github.com/dshills/modhost/internal/settings"
)

// fakeHost records registrations.
type fakeHost struct {
	registered   map[uuid.UUID]proxy.Action
	unregistered []uuid.UUID
	registerErr  error
}

func newFakeHost() *fakeHost {
	return &fakeHost{registered: make(map[uuid.UUID]proxy.Action)}
}

func (h *fakeHost) Register(a proxy.Action) error {
	if h.registerErr != nil {
		return h.registerErr
	}
	h.registered[a.ID()] = a
	return nil
}

func (h *fakeHost) Unregister(id uuid.UUID) {
	h.unregistered = append(h.unregistered, id)
	delete(h.registered, id)
}

type echo struct{}

var echoed []string

func (*echo) Invoke(_ any, e *proxy.CommandEventArgs) error {
	echoed = append(echoed, e.Command)
	return nil
}

type lister struct{}

func (*lister) Invoke(any, *proxy.ToolEventArgs) error { return nil }

type markdown struct{}

func (markdown) Invoke(proxy.EditorHandle, *proxy.EditorEventArgs) error { return nil }

type helper struct{}

func testClasses() []*proxy.Class {
	return []*proxy.Class{
		proxy.ClassOf(&echo{}, proxy.CommandAttribute{
			ActionAttribute: proxy.ActionAttribute{Name: "EchoTitle", Resources: true},
			Prefix:          "ec",
		}),
		proxy.ClassOf(&lister{}, proxy.ToolAttribute{
			ActionAttribute: proxy.ActionAttribute{Name: "List"},
			Options:         proxy.ToolPanels,
		}),
		proxy.ClassOf(markdown{}, &proxy.EditorAttribute{
			ActionAttribute: proxy.ActionAttribute{Name: "Markdown"},
			Mask:            "*.md",
		}),
		proxy.ClassOf(&helper{}, nil),
	}
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeHost) {
	t.Helper()

	h := newFakeHost()
	opts = append([]Option{WithHost(h), WithSettings(settings.NewMemory())}, opts...)
	m := New("Works", opts...)
	for _, c := range testClasses() {
		if err := m.AddClass(c); err != nil {
			t.Fatalf("AddClass() error = %v", err)
		}
	}
	if err := m.AddResources(language.English, map[string]string{"EchoTitle": "Echo"}); err != nil {
		t.Fatalf("AddResources() error = %v", err)
	}
	if err := m.AddResources(language.Russian, map[string]string{"EchoTitle": "Эхо"}); err != nil {
		t.Fatalf("AddResources() error = %v", err)
	}
	return m, h
}

func TestResolveClass(t *testing.T) {
	m, _ := newTestManager(t)

	name := proxy.TypeName(reflect.TypeOf(&echo{}))
	c, err := m.ResolveClass(name)
	if err != nil {
		t.Fatalf("ResolveClass() error = %v", err)
	}
	if c.Name != name {
		t.Errorf("Name = %q, want %q", c.Name, name)
	}

	if _, err := m.ResolveClass("example.com/none.X"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("ResolveClass() error = %v, want ErrClassNotFound", err)
	}
}

func TestCreateInstance(t *testing.T) {
	m := New("Works")

	c := &proxy.Class{Name: "panics", New: func() any { panic("bad") }}
	if _, err := m.CreateInstance(c); err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("CreateInstance() error = %v, want panic error", err)
	}
	if _, err := m.CreateInstance(&proxy.Class{Name: "none"}); !errors.Is(err, ErrNoConstructor) {
		t.Errorf("CreateInstance() error = %v, want ErrNoConstructor", err)
	}

	got, err := m.CreateInstance(proxy.ClassOf(&echo{}, nil))
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	if _, ok := got.(*echo); !ok {
		t.Errorf("CreateInstance() = %T, want *echo", got)
	}
}

func TestGetString(t *testing.T) {
	tests := []struct {
		lang language.Tag
		key  string
		want string
	}{
		{language.English, "EchoTitle", "Echo"},
		{language.Russian, "EchoTitle", "Эхо"},
		{language.German, "EchoTitle", "Echo"},
		{language.Japanese, "EchoTitle", "Echo"},
		{language.German, "Percent", "100% done"},
		{language.MustParse("ru-RU"), "EchoTitle", "Эхо"},
		{language.English, "Missing", ""},
		{language.English, "", ""},
		{language.English, "Percent", "100% done"},
	}
	for _, tt := range tests {
		t.Run(tt.lang.String()+"/"+tt.key, func(t *testing.T) {
			m, _ := newTestManager(t, WithLanguage(tt.lang))
			if err := m.AddResources(language.English, map[string]string{"Percent": "100% done"}); err != nil {
				t.Fatalf("AddResources() error = %v", err)
			}
			if got := m.GetString(tt.key); got != tt.want {
				t.Errorf("GetString(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDiscoverFallbackLanguage(t *testing.T) {
	m, _ := newTestManager(t, WithLanguage(language.German))
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if name := m.Actions()[0].Name(); name != "Echo" {
		t.Errorf("Name() = %q, want Echo", name)
	}
}

func TestDiscover(t *testing.T) {
	m, h := newTestManager(t)

	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var names []string
	for _, a := range m.Actions() {
		names = append(names, a.Kind().String()+":"+a.Name())
	}
	if diff := cmp.Diff([]string{"Command:Echo", "Tool:List", "Editor:Markdown"}, names); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if len(h.registered) != 3 {
		t.Errorf("registered = %d, want 3", len(h.registered))
	}
	if !m.CachedResources() {
		t.Error("CachedResources() = false")
	}

	// A second discovery finds the same ids.
	if err := m.Discover(); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Discover() again error = %v, want ErrDuplicate", err)
	}
}

func TestDiscoverBadClass(t *testing.T) {
	h := newFakeHost()
	m := New("Works", WithHost(h))
	if err := m.AddClass(proxy.ClassOf(&echo{}, proxy.CommandAttribute{ActionAttribute: proxy.ActionAttribute{Name: "Echo"}})); err != nil {
		t.Fatal(err)
	}
	if err := m.AddClass(proxy.ClassOf(&lister{}, proxy.ToolAttribute{ActionAttribute: proxy.ActionAttribute{Name: "List"}})); err != nil {
		t.Fatal(err)
	}
	if err := m.AddClass(&proxy.Class{Name: "odd", Attribute: "not an attribute"}); err != nil {
		t.Fatal(err)
	}

	err := m.Discover()
	if !errors.Is(err, proxy.ErrConfiguration) {
		t.Errorf("Discover() error = %v, want ErrConfiguration", err)
	}
	if n := len(m.Actions()); n != 1 {
		t.Errorf("actions = %d, want 1", n)
	}
}

func TestRegister(t *testing.T) {
	m, h := newTestManager(t)
	id := uuid.New()

	var got string
	p, err := m.RegisterCommand(id, proxy.CommandAttribute{
		ActionAttribute: proxy.ActionAttribute{Name: "Dyn"},
		Prefix:          "dy",
	}, func(_ any, e *proxy.CommandEventArgs) error {
		got = e.Command
		return nil
	})
	if err != nil {
		t.Fatalf("RegisterCommand() error = %v", err)
	}
	if h.registered[id] != proxy.Action(p) {
		t.Error("command is not registered with the host")
	}
	if err := p.Invoke(nil, &proxy.CommandEventArgs{Command: "x"}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "x" {
		t.Errorf("handler got %q", got)
	}

	_, err = m.RegisterTool(id, proxy.ToolAttribute{ActionAttribute: proxy.ActionAttribute{Name: "T"}},
		func(any, *proxy.ToolEventArgs) error { return nil })
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("RegisterTool() error = %v, want ErrDuplicate", err)
	}

	if _, err := m.RegisterFiler(uuid.New(), proxy.FilerAttribute{ActionAttribute: proxy.ActionAttribute{Name: "F"}}, nil); !errors.Is(err, proxy.ErrArgument) {
		t.Errorf("RegisterFiler(nil) error = %v, want ErrArgument", err)
	}

	// Dynamic actions are not cached.
	if n := len(m.CacheRecords()); n != 0 {
		t.Errorf("CacheRecords() = %d records, want 0", n)
	}
}

func TestRegisterHostError(t *testing.T) {
	m, h := newTestManager(t)
	h.registerErr = errors.New("rejected")

	_, err := m.RegisterFiler(uuid.New(), proxy.FilerAttribute{ActionAttribute: proxy.ActionAttribute{Name: "F"}},
		func(any, *proxy.FilerEventArgs) error { return nil })
	if err == nil {
		t.Fatal("RegisterFiler() expected error")
	}
	if n := len(m.Actions()); n != 0 {
		t.Errorf("actions = %d after rejected registration, want 0", n)
	}
}

func TestProxyUnregister(t *testing.T) {
	m, h := newTestManager(t)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	a := m.Actions()[0]
	a.Unregister()
	if _, ok := m.Action(a.ID()); ok {
		t.Error("action still in the manager")
	}
	if _, ok := h.registered[a.ID()]; ok {
		t.Error("action still in the host")
	}

	// Unknown ids are passed to the host, which ignores them.
	a.Unregister()
	if len(h.unregistered) != 2 {
		t.Errorf("unregistered = %v", h.unregistered)
	}
}

func TestInvokingConnects(t *testing.T) {
	calls := 0
	fail := true
	m := New("Works", WithConnect(func() error {
		calls++
		if fail {
			return fmt.Errorf("not ready")
		}
		return nil
	}))

	m.Invoking()
	if m.Connected() {
		t.Error("Connected() = true after failed connect")
	}
	fail = false
	m.Invoking()
	m.Invoking()

	if calls != 2 {
		t.Errorf("connect calls = %d, want 2", calls)
	}
	if !m.Connected() {
		t.Error("Connected() = false")
	}
	if m.Invocations() != 3 {
		t.Errorf("Invocations() = %d, want 3", m.Invocations())
	}
}

func TestLoadCacheRecords(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	records := m.CacheRecords()
	if len(records) != 3 {
		t.Fatalf("CacheRecords() = %d records, want 3", len(records))
	}

	bad := [][]string{{"Tool", "x"}}
	m2, h2 := newTestManager(t)
	err := m2.LoadCache(append(bad, records...))
	if !errors.Is(err, proxy.ErrCacheFormat) {
		t.Errorf("LoadCache() error = %v, want ErrCacheFormat", err)
	}

	if diff := cmp.Diff(records, m2.CacheRecords()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if len(h2.registered) != 3 {
		t.Errorf("registered = %d, want 3", len(h2.registered))
	}
}

func TestLoad(t *testing.T) {
	c := cache.New("")

	m, _ := newTestManager(t)
	fromCache, err := Load(m, c, "v1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fromCache {
		t.Error("first Load used the cache")
	}
	e, ok := c.Get("Works")
	if !ok || e.Stamp != "v1" || !e.Resources || e.Language != "en" || len(e.Records) != 3 {
		t.Fatalf("cache entry = %+v", e)
	}

	m2, _ := newTestManager(t)
	fromCache, err = Load(m2, c, "v1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !fromCache {
		t.Error("second Load did not use the cache")
	}
	if !m2.CachedResources() {
		t.Error("CachedResources() = false after cached load")
	}
	echoed = nil
	cmd := m2.Actions()[0].(*proxy.Command)
	if cmd.Name() != "Echo" {
		t.Errorf("cached Name = %q, want %q", cmd.Name(), "Echo")
	}
	if err := cmd.Invoke(nil, &proxy.CommandEventArgs{Command: "hi"}); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(echoed) != 1 {
		t.Errorf("echoed = %v", echoed)
	}

	// A new stamp or language makes the entry stale.
	m3, _ := newTestManager(t)
	if fromCache, _ := Load(m3, c, "v2"); fromCache {
		t.Error("Load with a new stamp used the cache")
	}
	m4, _ := newTestManager(t, WithLanguage(language.Russian))
	if fromCache, _ := Load(m4, c, "v2"); fromCache {
		t.Error("Load with a new language used the cache")
	}
	if got := m4.Actions()[0].Name(); got != "Эхо" {
		t.Errorf("Name = %q, want %q", got, "Эхо")
	}
}

func TestLoadBrokenCache(t *testing.T) {
	c := cache.New("")
	c.Set("Works", cache.Entry{Stamp: "v1", Records: [][]string{{"Command", "broken"}}})

	m, _ := newTestManager(t)
	fromCache, err := Load(m, c, "v1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fromCache {
		t.Error("Load used a broken cache")
	}
	if n := len(m.Actions()); n != 3 {
		t.Errorf("actions = %d, want 3", n)
	}
}

func TestUnload(t *testing.T) {
	m, h := newTestManager(t)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	m.Unload()
	if len(h.registered) != 0 {
		t.Errorf("registered = %d after Unload, want 0", len(h.registered))
	}
	if len(m.Actions()) != 0 {
		t.Error("actions left after Unload")
	}
	_, err := m.RegisterTool(uuid.New(), proxy.ToolAttribute{ActionAttribute: proxy.ActionAttribute{Name: "T"}},
		func(any, *proxy.ToolEventArgs) error { return nil })
	if !errors.Is(err, ErrUnloaded) {
		t.Errorf("RegisterTool() error = %v, want ErrUnloaded", err)
	}
}
