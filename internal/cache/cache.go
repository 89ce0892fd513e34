// Package cache stores the action records of loaded modules so that the
// next start can build proxies without discovering module classes.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const currentVersion = 1

// ErrVersion is returned for cache files written by a newer version.
var ErrVersion = errors.New("unsupported cache version")

// Entry is the cached state of one module.
type Entry struct {
	// Stamp identifies the module build the records were taken from. An
	// entry with a different stamp is stale.
	Stamp string `toml:"stamp"`

	// Language is the resource language used for action names.
	Language string `toml:"language,omitempty"`

	// Resources tells that some names were taken from module resources.
	Resources bool `toml:"resources,omitempty"`

	// SavedAt is the time the entry was set.
	SavedAt time.Time `toml:"saved_at"`

	// Records are the action records, see proxy.CacheRecord.
	Records [][]string `toml:"records"`
}

type document struct {
	Version int               `toml:"version"`
	Modules map[string]*Entry `toml:"modules"`
}

// Cache is a module cache file. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	path    string
	modules map[string]*Entry
	dirty   bool
}

// New returns an empty cache that saves to path. An empty path makes a
// cache that is never saved.
func New(path string) *Cache {
	return &Cache{path: path, modules: make(map[string]*Entry)}
}

// Open reads the cache file at path. A missing file gives an empty cache.
func Open(path string) (*Cache, error) {
	c := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cache %s: %w", path, err)
	}
	if doc.Version > currentVersion {
		return nil, fmt.Errorf("%s: %w: %d", path, ErrVersion, doc.Version)
	}
	for name, e := range doc.Modules {
		if e != nil {
			c.modules[name] = e
		}
	}
	return c, nil
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// Get returns a copy of the entry of a module.
func (c *Cache) Get(module string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.modules[module]
	if !ok {
		return Entry{}, false
	}
	return copyEntry(e), true
}

// Set replaces the entry of a module.
func (c *Cache) Set(module string, e Entry) {
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	cp := copyEntry(&e)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[module] = &cp
	c.dirty = true
}

// Remove deletes the entry of a module.
func (c *Cache) Remove(module string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.modules[module]; ok {
		delete(c.modules, module)
		c.dirty = true
	}
}

// Modules returns the cached module names in sorted order.
func (c *Cache) Modules() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty reports whether the cache changed since it was opened or saved.
func (c *Cache) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// Save writes the cache file if it changed. The file is replaced
// atomically using a temporary file and rename.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty || c.path == "" {
		return nil
	}

	data, err := toml.Marshal(document{Version: currentVersion, Modules: c.modules})
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := writeFile(c.path, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}

func copyEntry(e *Entry) Entry {
	cp := *e
	cp.Records = make([][]string, len(e.Records))
	for i, r := range e.Records {
		cp.Records[i] = append([]string(nil), r...)
	}
	return cp
}
