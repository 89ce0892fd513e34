package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.Settings.Driver != "file" || filepath.Base(c.Settings.Path) != "settings.toml" {
		t.Errorf("Settings = %+v", c.Settings)
	}
	if c.Language() != language.English {
		t.Errorf("Language() = %v, want en", c.Language())
	}
}

func TestLoadFile(t *testing.T) {
	toml := writeFile(t, "modhost.toml", `
[logging]
level = "debug"
format = "json"

[settings]
driver = "sqlite"
path = "/tmp/s.db"

[modules]
paths = ["a.lua", "scripts"]
language = "ru"
`)
	yaml := writeFile(t, "modhost.yaml", `
logging:
  level: debug
  format: json
settings:
  driver: sqlite
  path: /tmp/s.db
modules:
  paths: [a.lua, scripts]
  language: ru
`)

	want := Default()
	want.Logging = LoggingConfig{Level: "debug", Format: "json"}
	want.Settings = SettingsConfig{Driver: "sqlite", Path: "/tmp/s.db"}
	want.Modules = ModulesConfig{Paths: []string{"a.lua", "scripts"}, Language: "ru"}

	for _, path := range []string{toml, yaml} {
		c := Default()
		if err := c.LoadFile(path); err != nil {
			t.Fatalf("LoadFile(%s) error = %v", filepath.Base(path), err)
		}
		if diff := cmp.Diff(want, c); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
		}
	}
}

func TestLoadFileErrors(t *testing.T) {
	c := Default()
	if err := c.LoadFile(filepath.Join(t.TempDir(), "none.toml")); err != nil {
		t.Errorf("LoadFile(missing) error = %v", err)
	}

	bad := writeFile(t, "bad.toml", "[logging]\nlevel = \n")
	err := c.LoadFile(bad)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("LoadFile() error = %v, want ParseError", err)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}

	if err := c.LoadFile(writeFile(t, "bad.yaml", "logging: [")); !errors.As(err, &pe) {
		t.Errorf("LoadFile(yaml) error = %v, want ParseError", err)
	}
	if err := c.LoadFile(writeFile(t, "conf.ini", "x=1")); err == nil {
		t.Error("LoadFile(ini) expected error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MODHOST_LOG_LEVEL":       "warn",
		"MODHOST_SETTINGS_DRIVER": "memory",
		"MODHOST_SETTINGS_WATCH":  "no",
		"MODHOST_CACHE_DISABLED":  "yes",
		"MODHOST_MODULE_PATHS":    "a.lua" + string(filepath.ListSeparator) + "b",
		"MODHOST_LANGUAGE":        "de",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if c.Logging.Level != "warn" || c.Settings.Driver != "memory" || !c.Cache.Disabled {
		t.Errorf("config = %+v", c)
	}
	if diff := cmp.Diff([]string{"a.lua", "b"}, c.Modules.Paths); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
	if c.Language() != language.German {
		t.Errorf("Language() = %v, want de", c.Language())
	}

	env["MODHOST_CACHE_DISABLED"] = "maybe"
	if err := c.ApplyEnv(lookup); err == nil {
		t.Error("ApplyEnv() with bad bool expected error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"level", func(c *Config) { c.Logging.Level = "trace" }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
		{"driver", func(c *Config) { c.Settings.Driver = "redis" }},
		{"path", func(c *Config) { c.Settings.Path = "" }},
		{"watch", func(c *Config) { c.Settings.Driver = "memory"; c.Settings.Watch = true }},
		{"language", func(c *Config) { c.Modules.Language = "not a tag!" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("MODHOST_LOG_FORMAT", "json")
	path := writeFile(t, "modhost.toml", "[logging]\nlevel = \"error\"\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Logging != (LoggingConfig{Level: "error", Format: "json"}) {
		t.Errorf("Logging = %+v", c.Logging)
	}

	t.Setenv("MODHOST_LOG_LEVEL", "loud")
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}
