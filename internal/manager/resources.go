package manager

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AddResources adds resource strings of a language. Strings are used as
// literal text.
func (m *Manager) AddResources(tag language.Tag, texts map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, text := range texts {
		if err := m.resources.SetString(tag, key, strings.ReplaceAll(text, "%", "%%")); err != nil {
			return fmt.Errorf("%s: resource %q: %w", m.name, key, err)
		}
	}
	m.printer = nil
	return nil
}

// GetString returns a resource string in the module language, or "" if
// the module has no such resource. A language without strings falls back
// to the closest one the module has, English by default.
func (m *Manager) GetString(name string) string {
	if name == "" {
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.printer == nil {
		langs := m.resources.Languages()
		if len(langs) == 0 {
			return ""
		}
		_, i, _ := m.resources.Matcher().Match(m.lang)
		m.printer = message.NewPrinter(langs[i], message.Catalog(m.resources))
	}
	return m.printer.Sprintf(message.Key(name, ""))
}

// SetCachedResources records that action names were taken from resources.
// Such names depend on the language and the cache must be refreshed
// when it changes.
func (m *Manager) SetCachedResources() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedResources = true
}

// CachedResources reports whether action names were taken from resources.
func (m *Manager) CachedResources() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cachedResources
}
