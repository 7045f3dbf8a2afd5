package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"timeliner/cmd/timeliner/ui"
	"timeliner/internal/command"
	"timeliner/internal/config"
	"timeliner/internal/layout"
	"timeliner/internal/logging"
	"timeliner/internal/storage"
	"timeliner/internal/timeline"
	"timeliner/internal/ux"
)

// slowOpenThreshold is how long opening a workspace may take before it is
// logged as slow.
const slowOpenThreshold = 500 * time.Millisecond

// app is everything one invocation needs, opened from the workspace.
type app struct {
	workspace  string
	cfg        *config.Config
	backend    storage.Backend
	dispatcher *command.Dispatcher
	prefs      *ux.PreferencesManager
	styles     ui.Styles
}

func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

func cliLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// openApp loads config, storage and preferences for the workspace.
func openApp() (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(ws, cfg.Logging); err != nil {
		cliLogger().Warn("file logging disabled", zap.Error(err))
	}
	if logging.IsDebugMode() {
		cliLogger().Debug("file logging enabled", zap.String("dir", filepath.Join(ws, config.StateDirName, "logs")))
	}
	timer := logging.StartTimer(logging.CategoryBoot, "open workspace")
	defer timer.StopWithThreshold(slowOpenThreshold)

	backend, err := storage.Open(cfg.Storage.Driver, cfg.StoragePath(ws))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store := timeline.NewStore(
		storage.KeyPersister{Backend: backend, Key: cfg.Storage.Key},
		timeline.WithLogger(logging.Get(logging.CategoryStore)),
	)
	if err := store.Load(); err != nil {
		backend.Close()
		return nil, err
	}

	prefs := ux.NewPreferencesManager(ws)
	if err := prefs.Load(); err != nil {
		cliLogger().Warn("ignoring unreadable preferences", zap.Error(err))
	}

	engine := layout.NewEngine(prefs.ZoomFor(cfg.Display.Zoom), logging.Get(logging.CategoryLayout))
	for _, id := range prefs.Get().AdvisedTimelines {
		if _, ok := store.Timeline(id); ok {
			engine.MarkAdvised(id)
		}
	}

	logging.Get(logging.CategoryBoot).Info("workspace opened",
		zap.String("workspace", ws),
		zap.String("driver", cfg.Storage.Driver),
		zap.Int("timelines", len(store.Timelines())))

	return &app{
		workspace:  ws,
		cfg:        cfg,
		backend:    backend,
		dispatcher: command.NewDispatcher(store, engine, cfg.Display.Locale, logging.Get(logging.CategoryCommand)),
		prefs:      prefs,
		styles:     ui.NewStyles(ui.ThemeFor(cfg.Display.Theme)),
	}, nil
}

// rememberView records the interactive view state. The zoom is stored only
// when it moved away from where the session started, so an untouched zoom
// keeps following the config file.
func (a *app) rememberView(startZoom, zoom, pan int, selected string) {
	a.prefs.SetView(pan, selected)
	if zoom != startZoom {
		a.prefs.SetZoom(zoom, a.cfg.Display.Zoom)
	}
}

// close saves preferences and releases storage.
func (a *app) close() error {
	a.prefs.SetAdvised(a.dispatcher.Engine().Advised())
	_ = a.prefs.IncrementMetric("commands_executed")
	err := a.prefs.Save()
	if cerr := a.backend.Close(); err == nil {
		err = cerr
	}
	logging.CloseAll()
	return err
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.close(); err != nil {
		cliLogger().Warn("failed to close workspace", zap.Error(err))
	}
	return runErr
}

// report prints a command result. Failures become errors so the process
// exits non-zero.
func (a *app) report(res command.Result) error {
	if !res.IsSuccess() {
		_ = a.prefs.IncrementMetric("errors_shown")
		for _, fe := range res.Errors {
			fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
		}
		if res.Err != nil {
			cliLogger().Debug("command failed", zap.String("command", res.Command), zap.Error(res.Err))
		}
		return errors.New(res.Message)
	}
	if res.Level == command.LevelWarning {
		fmt.Println(a.styles.Warning.Render("warning: " + res.Message))
		return nil
	}
	fmt.Println(a.styles.Level(string(res.Level)).Render(res.Message))
	return nil
}
