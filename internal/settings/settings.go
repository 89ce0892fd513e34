// Package settings provides the stores of per-action user settings.
//
// Values are keyed by the action key and a setting name. Stores return
// values verbatim and a saved value is visible to the next Load.
package settings

import (
	"errors"
	"fmt"

	"github.com/dshills/modhost/internal/settings/sqlite"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned by Open for an unsupported driver.
var ErrUnknownDriver = errors.New("unknown settings driver")

// Store is a settings store.
type Store interface {
	// Load returns the stored value or def if nothing is stored.
	Load(key, name, def string) (string, error)

	// Save stores a value.
	Save(key, name, value string) error

	// Close releases the store.
	Close() error
}

// Open opens a store of the given driver. The path is ignored by the
// memory driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(path)
	case DriverSQLite:
		return sqlite.Open(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
