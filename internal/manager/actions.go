package manager

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/modhost/internal/proxy"
)

// DiscoverClass creates the proxy declared by the attribute of a class
// and adds it to the module.
func (m *Manager) DiscoverClass(c *proxy.Class) (proxy.Action, error) {
	var (
		a   proxy.Action
		err error
	)
	switch c.Attribute.(type) {
	case proxy.CommandAttribute, *proxy.CommandAttribute:
		a, err = proxy.NewCommandFromClass(m, c)
	case proxy.EditorAttribute, *proxy.EditorAttribute:
		a, err = proxy.NewEditorFromClass(m, c)
	case proxy.FilerAttribute, *proxy.FilerAttribute:
		a, err = proxy.NewFilerFromClass(m, c)
	case proxy.ToolAttribute, *proxy.ToolAttribute:
		a, err = proxy.NewToolFromClass(m, c)
	default:
		return nil, &proxy.ConfigurationError{Key: c.Name, Message: "class has no action attribute"}
	}
	if err != nil {
		return nil, err
	}
	if err := m.add(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Discover creates the proxies of all classes that declare an action
// attribute. Failed classes are skipped and their errors joined.
func (m *Manager) Discover() error {
	var errs []error
	for _, c := range m.Classes() {
		if c.Attribute == nil {
			continue
		}
		if _, err := m.DiscoverClass(c); err != nil {
			m.logger.Warn("Cannot discover action", "class", c.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	return errors.Join(errs...)
}

// RegisterCommand adds a command bound to a handler.
func (m *Manager) RegisterCommand(id uuid.UUID, attr proxy.CommandAttribute, handler proxy.CommandHandler) (*proxy.Command, error) {
	if handler == nil {
		return nil, &proxy.ArgumentError{Arg: "handler", Message: "must not be nil"}
	}
	p, err := proxy.NewCommand(m, id, attr, handler)
	if err != nil {
		return nil, err
	}
	if err := m.add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterFiler adds a filer bound to a handler.
func (m *Manager) RegisterFiler(id uuid.UUID, attr proxy.FilerAttribute, handler proxy.FilerHandler) (*proxy.Filer, error) {
	if handler == nil {
		return nil, &proxy.ArgumentError{Arg: "handler", Message: "must not be nil"}
	}
	p, err := proxy.NewFiler(m, id, attr, handler)
	if err != nil {
		return nil, err
	}
	if err := m.add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterTool adds a tool bound to a handler.
func (m *Manager) RegisterTool(id uuid.UUID, attr proxy.ToolAttribute, handler proxy.ToolHandler) (*proxy.Tool, error) {
	if handler == nil {
		return nil, &proxy.ArgumentError{Arg: "handler", Message: "must not be nil"}
	}
	p, err := proxy.NewTool(m, id, attr, handler)
	if err != nil {
		return nil, err
	}
	if err := m.add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadCache creates proxies from cache records. Bad records are skipped
// and their errors joined.
func (m *Manager) LoadCache(records [][]string) error {
	var errs []error
	for i, record := range records {
		a, err := proxy.ReadAction(m, proxy.NewRecordReader(record))
		if err == nil {
			err = m.add(a)
		}
		if err != nil {
			m.logger.Warn("Skipping cache record", "index", i, "error", err)
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// CacheRecords returns the records of the class based actions.
func (m *Manager) CacheRecords() [][]string {
	var records [][]string
	for _, a := range m.Actions() {
		if a.ClassName() == "" {
			continue
		}
		records = append(records, proxy.CacheRecord(a))
	}
	return records
}

// Actions returns the module actions in the order they were added.
func (m *Manager) Actions() []proxy.Action {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]proxy.Action, 0, len(m.order))
	for _, id := range m.order {
		actions = append(actions, m.actions[id])
	}
	return actions
}

// Action returns the action with the given id.
func (m *Manager) Action(id uuid.UUID) (proxy.Action, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actions[id]
	return a, ok
}

// Unregister removes an action from the module and the host. Unknown ids
// are ignored.
func (m *Manager) Unregister(id uuid.UUID) {
	m.mu.Lock()
	m.removeLocked(id)
	m.mu.Unlock()

	if m.host != nil {
		m.host.Unregister(id)
	}
}

// Unload removes all actions from the host. The manager accepts no new
// actions afterwards.
func (m *Manager) Unload() {
	m.mu.Lock()
	ids := m.order
	m.order = nil
	m.actions = make(map[uuid.UUID]proxy.Action)
	m.unloaded = true
	m.mu.Unlock()

	if m.host != nil {
		for _, id := range ids {
			m.host.Unregister(id)
		}
	}
	m.logger.Debug("Unloaded module", "actions", len(ids))
}

// reset removes all actions without unloading the module.
func (m *Manager) reset() {
	m.Unload()

	m.mu.Lock()
	m.unloaded = false
	m.mu.Unlock()
}

func (m *Manager) add(a proxy.Action) error {
	m.mu.Lock()
	if m.unloaded {
		m.mu.Unlock()
		return ErrUnloaded
	}
	if _, ok := m.actions[a.ID()]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, a.Key())
	}
	m.actions[a.ID()] = a
	m.order = append(m.order, a.ID())
	m.mu.Unlock()

	if m.host != nil {
		if err := m.host.Register(a); err != nil {
			m.mu.Lock()
			m.removeLocked(a.ID())
			m.mu.Unlock()
			return err
		}
	}
	return nil
}

func (m *Manager) removeLocked(id uuid.UUID) {
	if _, ok := m.actions[id]; !ok {
		return
	}
	delete(m.actions, id)
	for i, x := range m.order {
		if x == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
