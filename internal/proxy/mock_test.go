package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// mockSettings is an in-memory settings store.
type mockSettings struct {
	mu      sync.Mutex
	values  map[string]string
	loadErr error
	saveErr error
	loads   int
}

func newMockSettings() *mockSettings {
	return &mockSettings{values: make(map[string]string)}
}

func (s *mockSettings) Load(key, name, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return "", s.loadErr
	}
	if v, ok := s.values[key+"/"+name]; ok {
		return v, nil
	}
	return def, nil
}

func (s *mockSettings) Save(key, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.values[key+"/"+name] = value
	return nil
}

func (s *mockSettings) get(key, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key+"/"+name]
	return v, ok
}

// mockHost records unregistered ids.
type mockHost struct {
	unregistered []uuid.UUID
}

func (h *mockHost) Unregister(id uuid.UUID) {
	h.unregistered = append(h.unregistered, id)
}

// mockManager is a module manager test double.
type mockManager struct {
	name      string
	classes   map[string]*Class
	strings   map[string]string
	settings  *mockSettings
	host      *mockHost
	createErr error

	resolves    int
	creates     int
	invocations int
	cachedRes   bool
}

func newMockManager(name string) *mockManager {
	return &mockManager{
		name:     name,
		classes:  make(map[string]*Class),
		strings:  make(map[string]string),
		settings: newMockSettings(),
		host:     &mockHost{},
	}
}

func (m *mockManager) addClass(c *Class) *Class {
	m.classes[c.Name] = c
	return c
}

func (m *mockManager) ModuleName() string { return m.name }

func (m *mockManager) ResolveClass(name string) (*Class, error) {
	m.resolves++
	c, ok := m.classes[name]
	if !ok {
		return nil, fmt.Errorf("class %q not found", name)
	}
	return c, nil
}

func (m *mockManager) CreateInstance(c *Class) (any, error) {
	m.creates++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return c.New(), nil
}

func (m *mockManager) GetString(name string) string { return m.strings[name] }
func (m *mockManager) SetCachedResources()          { m.cachedRes = true }
func (m *mockManager) Invoking()                    { m.invocations++ }
func (m *mockManager) Settings() Settings           { return m.settings }
func (m *mockManager) Host() Registrar              { return m.host }
func (m *mockManager) Logger() *slog.Logger         { return nil }

var errBoom = errors.New("boom")

// Module classes used by tests.

type echoCommand struct{}

var echoCalls []string

func (c *echoCommand) Invoke(_ any, e *CommandEventArgs) error {
	echoCalls = append(echoCalls, e.Command)
	return nil
}

type mdEditor struct{}

var editedFiles []string

func (mdEditor) Invoke(editor EditorHandle, _ *EditorEventArgs) error {
	editedFiles = append(editedFiles, editor.FileName())
	return nil
}

type zipFiler struct{}

var filedNames []string

func (*zipFiler) Invoke(_ any, e *FilerEventArgs) error {
	filedNames = append(filedNames, e.Name)
	return nil
}

type listTool struct{}

var toolFrom []ToolOptions

func (*listTool) Invoke(_ any, e *ToolEventArgs) error {
	toolFrom = append(toolFrom, e.From)
	return nil
}

type notAnAction struct{}

type editorHandle string

func (h editorHandle) FileName() string { return string(h) }
