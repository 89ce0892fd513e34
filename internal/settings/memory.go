package settings

import "sync"

type entryKey struct {
	key  string
	name string
}

// Memory is a settings store kept in memory.
type Memory struct {
	mu     sync.RWMutex
	values map[entryKey]string
	loads  int
	saves  int
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[entryKey]string)}
}

// Load returns the stored value or def.
func (m *Memory) Load(key, name, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads++
	if v, ok := m.values[entryKey{key, name}]; ok {
		return v, nil
	}
	return def, nil
}

// Save stores a value.
func (m *Memory) Save(key, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	m.values[entryKey{key, name}] = value
	return nil
}

// Loads returns the number of Load calls.
func (m *Memory) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// Saves returns the number of Save calls.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Close does nothing.
func (m *Memory) Close() error {
	return nil
}
