package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"timeliner/internal/config"
	"timeliner/internal/layout"
)

// PreferencesVersion is the current schema version for preferences.json.
const PreferencesVersion = "1.0"

// Preferences is the persisted view state.
type Preferences struct {
	Version string `json:"version"`

	// View state. Zoom is set only once the user picks one interactively;
	// ZoomBase is the configured zoom it overrode.
	Zoom             *int   `json:"zoom,omitempty"`
	ZoomBase         int    `json:"zoom_base,omitempty"`
	PanOffset        int    `json:"pan_offset"`
	SelectedTimeline string `json:"selected_timeline,omitempty"`

	// AdvisedTimelines lists timelines whose overflow advisory was shown.
	AdvisedTimelines []string `json:"advised_timelines,omitempty"`

	Metrics UsageMetrics `json:"metrics"`
}

// UsageMetrics tracks local usage statistics.
type UsageMetrics struct {
	SessionsCount    int    `json:"sessions_count"`
	CommandsExecuted int    `json:"commands_executed"`
	ErrorsShown      int    `json:"errors_shown"`
	LastSession      string `json:"last_session,omitempty"`
}

// PreferencesManager handles loading/saving preferences.
type PreferencesManager struct {
	mu          sync.RWMutex
	path        string
	preferences *Preferences
}

// NewPreferencesManager creates a preferences manager for the given workspace.
func NewPreferencesManager(workspace string) *PreferencesManager {
	return &PreferencesManager{
		path: filepath.Join(workspace, config.StateDirName, "preferences.json"),
	}
}

// Path returns the preferences file location.
func (pm *PreferencesManager) Path() string {
	return pm.path
}

// Load reads preferences from disk, creating defaults if not exists.
func (pm *PreferencesManager) Load() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	data, err := os.ReadFile(pm.path)
	if err != nil {
		if os.IsNotExist(err) {
			pm.preferences = DefaultPreferences()
			return nil
		}
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, prefs); err != nil {
		pm.preferences = DefaultPreferences()
		return fmt.Errorf("failed to parse preferences: %w", err)
	}
	prefs.Version = PreferencesVersion
	if prefs.Zoom != nil {
		z := layout.ClampZoom(*prefs.Zoom)
		prefs.Zoom = &z
	}
	if prefs.PanOffset < 0 {
		prefs.PanOffset = 0
	}

	pm.preferences = prefs
	return nil
}

// Save writes preferences to disk.
func (pm *PreferencesManager) Save() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}

	dir := filepath.Dir(pm.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(pm.preferences, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.WriteFile(pm.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	return nil
}

// Get returns a copy of the current preferences (thread-safe).
func (pm *PreferencesManager) Get() Preferences {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.preferences == nil {
		return *DefaultPreferences()
	}
	p := *pm.preferences
	if p.Zoom != nil {
		z := *p.Zoom
		p.Zoom = &z
	}
	p.AdvisedTimelines = append([]string(nil), pm.preferences.AdvisedTimelines...)
	return p
}

func (pm *PreferencesManager) update(fn func(p *Preferences)) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.preferences == nil {
		pm.preferences = DefaultPreferences()
	}
	fn(pm.preferences)
}

// SetZoom records an interactively chosen zoom together with the configured
// zoom in effect at the time.
func (pm *PreferencesManager) SetZoom(zoom, configZoom int) {
	pm.update(func(p *Preferences) {
		z := layout.ClampZoom(zoom)
		p.Zoom = &z
		p.ZoomBase = configZoom
	})
}

// ZoomFor returns the zoom to start with. A chosen zoom wins until the
// configured zoom is edited away from the value it overrode.
func (pm *PreferencesManager) ZoomFor(configZoom int) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.preferences == nil || pm.preferences.Zoom == nil || pm.preferences.ZoomBase != configZoom {
		return layout.ClampZoom(configZoom)
	}
	return *pm.preferences.Zoom
}

// SetView records the pan offset and the selected timeline.
func (pm *PreferencesManager) SetView(pan int, selected string) {
	pm.update(func(p *Preferences) {
		if pan < 0 {
			pan = 0
		}
		p.PanOffset = pan
		p.SelectedTimeline = selected
	})
}

// SetAdvised replaces the advised-timeline set. Ids are stored sorted and
// deduplicated.
func (pm *PreferencesManager) SetAdvised(ids []string) {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	pm.update(func(p *Preferences) { p.AdvisedTimelines = out })
}

// IncrementMetric increments a numeric metric.
func (pm *PreferencesManager) IncrementMetric(metric string) error {
	var err error
	pm.update(func(p *Preferences) {
		switch metric {
		case "sessions_count":
			p.Metrics.SessionsCount++
			p.Metrics.LastSession = time.Now().Format(time.RFC3339)
		case "commands_executed":
			p.Metrics.CommandsExecuted++
		case "errors_shown":
			p.Metrics.ErrorsShown++
		default:
			err = fmt.Errorf("unknown metric: %s", metric)
		}
	})
	return err
}

// DefaultPreferences returns the preferences of a fresh workspace.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Version: PreferencesVersion,
	}
}
