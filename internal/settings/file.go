package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// File is a settings store kept in a TOML file. Every Save rewrites the
// file.
//
//	['Works\0a6e3b55-2c1f-4f0e-9a43-5d7c1c0e8b21']
//	Prefix = 'ec'
type File struct {
	mu     sync.RWMutex
	path   string
	values map[string]map[string]string

	// saves counts writes so a reload does not replace newer values
	saves uint64
}

// OpenFile opens the settings file at path. A missing file is created on
// the first Save.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("settings file path is empty")
	}

	f := &File{path: path}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Reload reads the file again, dropping unsaved state.
func (f *File) Reload() error {
	values := make(map[string]map[string]string)

	f.mu.RLock()
	saves := f.saves
	f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("reading settings %s: %w", f.path, err)
	default:
		if err := toml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("parsing settings %s: %w", f.path, err)
		}
	}

	f.mu.Lock()
	if f.saves == saves {
		f.values = values
	}
	f.mu.Unlock()
	return nil
}

// Load returns the stored value or def.
func (f *File) Load(key, name, def string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if v, ok := f.values[key][name]; ok {
		return v, nil
	}
	return def, nil
}

// Save stores a value and writes the file.
func (f *File) Save(key, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	section, ok := f.values[key]
	if !ok {
		section = make(map[string]string)
		f.values[key] = section
	}
	old, existed := section[name]
	section[name] = value

	if err := f.write(); err != nil {
		if existed {
			section[name] = old
		} else {
			delete(section, name)
		}
		return err
	}
	f.saves++
	return nil
}

// Close does nothing; every Save is already written.
func (f *File) Close() error {
	return nil
}

func (f *File) write() error {
	data, err := toml.Marshal(f.values)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
