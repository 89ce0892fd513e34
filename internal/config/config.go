// Package config loads the modhost configuration from a TOML or YAML file
// and MODHOST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "MODHOST_"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the application configuration.
type Config struct {
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Settings SettingsConfig `toml:"settings" yaml:"settings"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Modules  ModulesConfig  `toml:"modules" yaml:"modules"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn and error.
	Level string `toml:"level" yaml:"level"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// SettingsConfig configures the user settings store.
type SettingsConfig struct {
	// Driver is memory, file or sqlite.
	Driver string `toml:"driver" yaml:"driver"`
	// Path is the file or database path.
	Path string `toml:"path" yaml:"path"`
	// Watch reloads a settings file changed on disk.
	Watch bool `toml:"watch" yaml:"watch"`
}

// CacheConfig configures the module cache.
type CacheConfig struct {
	Path     string `toml:"path" yaml:"path"`
	Disabled bool   `toml:"disabled" yaml:"disabled"`
}

// ModulesConfig configures module loading.
type ModulesConfig struct {
	// Paths are Lua scripts or directories of scripts.
	Paths []string `toml:"paths" yaml:"paths"`
	// Language is the BCP 47 tag of module resources.
	Language string `toml:"language" yaml:"language"`
}

// Default returns the default configuration. Files are kept in the user
// configuration and cache directories.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Settings: SettingsConfig{
			Driver: "file",
			Path:   filepath.Join(userDir(os.UserConfigDir), "settings.toml"),
		},
		Cache:   CacheConfig{Path: filepath.Join(userDir(os.UserCacheDir), "modules.toml")},
		Modules: ModulesConfig{Language: "en"},
	}
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil {
		return ".modhost"
	}
	return filepath.Join(dir, "modhost")
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q", c.Logging.Format))
	}
	switch c.Settings.Driver {
	case "memory":
	case "file", "sqlite":
		if c.Settings.Path == "" {
			errs = append(errs, fmt.Errorf("settings.path is required by driver %q", c.Settings.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("settings.driver %q", c.Settings.Driver))
	}
	if c.Settings.Watch && c.Settings.Driver != "file" {
		errs = append(errs, fmt.Errorf("settings.watch needs the file driver"))
	}
	if _, err := language.Parse(c.Modules.Language); err != nil {
		errs = append(errs, fmt.Errorf("modules.language %q: %v", c.Modules.Language, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Language returns the module resource language, English if the tag is
// malformed.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Modules.Language)
	if err != nil {
		return language.English
	}
	return tag
}
