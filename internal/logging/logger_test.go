package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeliner/internal/config"
)

func logFiles(t *testing.T, workspace string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(workspace, ".timeliner", "logs"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAllCategoriesLog(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws, config.LoggingConfig{
		Level:     "debug",
		Format:    "json",
		DebugMode: true,
	}))
	assert.True(t, IsDebugMode())

	for _, cat := range Categories {
		Get(cat).Info("hello")
	}
	CloseAll()

	names := logFiles(t, ws)
	date := time.Now().Format("2006-01-02")
	for _, cat := range Categories {
		assert.Contains(t, names, date+"_"+string(cat)+".log")
	}

	data, err := os.ReadFile(filepath.Join(ws, ".timeliner", "logs", date+"_store.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"logger":"store"`)
}

func TestDebugModeDisabled(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws, config.LoggingConfig{Level: "debug"}))
	assert.False(t, IsDebugMode())

	Get(CategoryStore).Error("should not be written")
	CloseAll()

	assert.Empty(t, logFiles(t, ws), "production mode creates no logs")
}

func TestCategoryToggle(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws, config.LoggingConfig{
		Format:     "text",
		DebugMode:  true,
		Categories: map[string]bool{"ui": false},
	}))

	assert.False(t, IsCategoryEnabled(CategoryUI))
	assert.True(t, IsCategoryEnabled(CategoryLayout))

	Get(CategoryUI).Info("hidden")
	Get(CategoryLayout).Info("shown")
	CloseAll()

	joined := strings.Join(logFiles(t, ws), ",")
	assert.NotContains(t, joined, "_ui.log")
	assert.Contains(t, joined, "_layout.log")
}

func TestLevelFiltering(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws, config.LoggingConfig{Level: "warn", DebugMode: true}))
	Get(CategoryCommand).Info("quiet")
	Get(CategoryCommand).Warn("loud")
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".timeliner", "logs", date+"_command.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestInitialize_Errors(t *testing.T) {
	assert.Error(t, Initialize("", config.LoggingConfig{}))
	assert.Error(t, Initialize(t.TempDir(), config.LoggingConfig{Level: "chatty"}))
}

func TestTimerLogging(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(ws, config.LoggingConfig{Level: "debug", DebugMode: true}))

	timer := StartTimer(CategoryStore, "persist")
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), 5*time.Millisecond)

	slow := StartTimer(CategoryStore, "load")
	time.Sleep(5 * time.Millisecond)
	slow.StopWithThreshold(time.Nanosecond)
	CloseAll()

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".timeliner", "logs", date+"_store.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "operation completed")
	assert.Contains(t, string(data), "operation slow")
}
