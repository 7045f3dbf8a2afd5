// Package logging provides config-driven categorized file logging for
// timeliner. Logs are written to .timeliner/logs/ with one file per category
// per day. Nothing is written unless debug_mode is set in the config.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"timeliner/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and config
	CategoryStore   Category = "store"   // Timeline mutations and persistence
	CategoryStorage Category = "storage" // Backends and the change watcher
	CategoryLayout  Category = "layout"  // Scale computation and advisories
	CategoryCommand Category = "command" // Command dispatch
	CategoryUI      Category = "ui"      // Terminal UI
)

// Categories lists every category.
var Categories = []Category{
	CategoryBoot, CategoryStore, CategoryStorage,
	CategoryLayout, CategoryCommand, CategoryUI,
}

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*zap.Logger)
	files   []*os.File
	logsDir string
	cfg     config.LoggingConfig
	level   zapcore.Level = zapcore.InfoLevel
)

// Initialize sets up the logs directory for a workspace. Call once at startup.
// With debug mode off it only records the config, and every logger is a no-op.
func Initialize(workspace string, logCfg config.LoggingConfig) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	CloseAll()

	mu.Lock()
	cfg = logCfg
	logsDir = filepath.Join(workspace, config.StateDirName, "logs")
	level = zapcore.InfoLevel
	if logCfg.Level != "" {
		parsed, err := zapcore.ParseLevel(logCfg.Level)
		if err != nil {
			mu.Unlock()
			return fmt.Errorf("invalid log level %q: %w", logCfg.Level, err)
		}
		level = parsed
	}
	debug := cfg.DebugMode
	dir := logsDir
	mu.Unlock()

	if !debug {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("logging initialized",
		zap.String("workspace", workspace),
		zap.String("logs_dir", dir),
		zap.String("level", level.String()))
	for name, enabled := range logCfg.Categories {
		boot.Debug("category toggle", zap.String("category", name), zap.Bool("enabled", enabled))
	}
	return nil
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns (or creates) the logger for a category. Disabled categories
// and uninitialized packages get a no-op logger.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return zap.NewNop()
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}
	if logsDir == "" {
		return zap.NewNop()
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return zap.NewNop()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "text" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), level)
	l := zap.New(core).Named(string(category))
	loggers[category] = l
	files = append(files, file)

	return l
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		_ = l.Sync()
	}
	for _, f := range files {
		f.Close()
	}
	loggers = make(map[Category]*zap.Logger)
	files = nil
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer measures an operation's duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("operation slow",
			zap.String("op", t.op),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
