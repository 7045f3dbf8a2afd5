package config

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, text
	DebugMode  bool            `yaml:"debug_mode"` // false means no logging at all
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}

// ValidLogFormats lists the accepted log encodings.
var ValidLogFormats = []string{"json", "text"}

// IsCategoryEnabled reports whether a category should log. Nothing logs
// outside debug mode; inside it, unlisted categories are on.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}
