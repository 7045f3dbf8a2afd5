package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"timeliner/internal/layout"
	"timeliner/internal/storage"
	"timeliner/internal/timeline"
)

// StateDirName is the per-workspace directory holding config, data and logs.
const StateDirName = ".timeliner"

// DefaultStorageKey is the single key the timeline collection lives under.
const DefaultStorageKey = "timeliner_timelines"

// Config holds all timeliner configuration.
type Config struct {
	Name string `yaml:"name"`

	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite3, sqlite, file, memory
	Path   string `yaml:"path"`   // empty means the driver's default inside the state dir
	Key    string `yaml:"key"`
}

// DisplayConfig configures rendering.
type DisplayConfig struct {
	Zoom   int    `yaml:"zoom"`
	Locale string `yaml:"locale"` // en, zh
	Theme  string `yaml:"theme"`  // auto, light, dark
}

// ValidThemes lists the accepted display themes.
var ValidThemes = []string{"auto", "light", "dark"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "timeliner",

		Storage: StorageConfig{
			Driver: storage.DriverSQLite,
			Key:    DefaultStorageKey,
		},

		Display: DisplayConfig{
			Zoom:   layout.DefaultZoom,
			Locale: timeline.LocaleEnglish,
			Theme:  "auto",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, StateDirName, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if driver := os.Getenv("TIMELINER_STORAGE_DRIVER"); driver != "" {
		c.Storage.Driver = driver
	}
	if path := os.Getenv("TIMELINER_DB"); path != "" {
		c.Storage.Path = path
	}
	if key := os.Getenv("TIMELINER_STORAGE_KEY"); key != "" {
		c.Storage.Key = key
	}
	if locale := os.Getenv("TIMELINER_LOCALE"); locale != "" {
		c.Display.Locale = locale
	}
	if dark := os.Getenv("TIMELINER_DARK_MODE"); dark != "" {
		if on, err := strconv.ParseBool(dark); err == nil {
			if on {
				c.Display.Theme = "dark"
			} else {
				c.Display.Theme = "light"
			}
		}
	}
}

// StoragePath resolves the backend location against the workspace. Relative
// paths are taken relative to the workspace root.
func (c *Config) StoragePath(workspace string) string {
	if c.Storage.Path == "" {
		return storage.DefaultPath(c.Storage.Driver, filepath.Join(workspace, StateDirName))
	}
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(workspace, c.Storage.Path)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !contains(storage.Drivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %s (valid: %v)", c.Storage.Driver, storage.Drivers)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage key must not be empty")
	}
	if !contains(timeline.Locales(), c.Display.Locale) {
		return fmt.Errorf("invalid locale: %s (valid: %v)", c.Display.Locale, timeline.Locales())
	}
	if !contains(ValidThemes, c.Display.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.Display.Theme, ValidThemes)
	}
	if c.Display.Zoom < layout.MinZoom || c.Display.Zoom > layout.MaxZoom {
		return fmt.Errorf("zoom %d out of range [%d, %d]", c.Display.Zoom, layout.MinZoom, layout.MaxZoom)
	}
	if !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
