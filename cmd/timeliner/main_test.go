package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timeliner/internal/config"
	"timeliner/internal/layout"
	"timeliner/internal/storage"
	"timeliner/internal/ux"
)

// setup points the CLI at a fresh workspace and resets flag state.
func setup(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	workspace = t.TempDir()
	configPath = ""
	t.Setenv("TIMELINER_STORAGE_DRIVER", "file")

	timelineColor, timelineDescription = "", ""
	eventFlags.year, eventFlags.month, eventFlags.day = "", "", ""
	eventFlags.title, eventFlags.description = "", ""
	eventFlags.severity, eventFlags.tags = "", ""
	exportFormat, exportOutput, exportLocale = "json", "", ""
	clearYes = false
	renderZoom, renderWidth = -1, 0
	return workspace
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func TestTimelineAndEventLifecycle(t *testing.T) {
	setup(t)

	var timelineID string
	output := captureOutput(t, func() {
		require.NoError(t, runTimelineCreate(&cobra.Command{}, []string{"Space Race"}))
	})
	assert.Contains(t, output, `Timeline "Space Race" created`)
	timelineID = lastLine(output)
	require.NotEmpty(t, timelineID)

	eventFlags.year = "1969"
	eventFlags.month = "7"
	eventFlags.day = "20"
	eventFlags.title = "Moon landing"
	eventFlags.severity = "critical"
	eventFlags.tags = "space, nasa"
	output = captureOutput(t, func() {
		require.NoError(t, runEventAdd(&cobra.Command{}, []string{timelineID}))
	})
	assert.Contains(t, output, `Event "Moon landing" added`)
	eventID := lastLine(output)

	output = captureOutput(t, func() {
		require.NoError(t, runTimelineList(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Space Race")
	assert.Contains(t, output, "1969-1969")

	output = captureOutput(t, func() {
		require.NoError(t, runEventShow(&cobra.Command{}, []string{eventID}))
	})
	assert.Contains(t, output, "Moon landing")
	assert.Contains(t, output, "69-07-20")

	eventFlags.title = "Apollo 11"
	output = captureOutput(t, func() {
		require.NoError(t, runEventUpdate(&cobra.Command{}, []string{timelineID, eventID}))
	})
	assert.Contains(t, output, `Event "Apollo 11" updated`)

	output = captureOutput(t, func() {
		require.NoError(t, runEventDelete(&cobra.Command{}, []string{timelineID, eventID}))
	})
	assert.Contains(t, output, `Event "Apollo 11" deleted`)

	output = captureOutput(t, func() {
		require.NoError(t, runTimelineToggle(&cobra.Command{}, []string{timelineID}))
	})
	assert.Contains(t, output, `Timeline "Space Race" expanded`)

	output = captureOutput(t, func() {
		require.NoError(t, runTimelineDelete(&cobra.Command{}, []string{timelineID}))
	})
	assert.Contains(t, output, `Timeline "Space Race" deleted`)

	output = captureOutput(t, func() {
		require.NoError(t, runTimelineList(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "No timelines")
}

func TestEventAdd_NonNumericYear(t *testing.T) {
	setup(t)
	eventFlags.year = "nineteen"
	eventFlags.title = "Anything"

	output := captureOutput(t, func() {
		assert.Error(t, runEventAdd(&cobra.Command{}, []string{"sample1"}))
	})
	assert.Contains(t, output, "year:")
}

func TestEventAdd_ValidationFailure(t *testing.T) {
	setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	eventFlags.year = "2023"
	eventFlags.month = "2"
	eventFlags.day = "29"
	eventFlags.title = "Not a leap day"
	output := captureOutput(t, func() {
		assert.Error(t, runEventAdd(&cobra.Command{}, []string{"sample1"}))
	})
	assert.Contains(t, output, "day must be between 1 and 28")
}

func TestEventAdd_UnknownTimeline(t *testing.T) {
	setup(t)
	eventFlags.year = "2000"
	eventFlags.title = "Orphan"

	captureOutput(t, func() {
		err := runEventAdd(&cobra.Command{}, []string{"missing"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeline not found")
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	ws := setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	exportOutput = filepath.Join(ws, "backup.txt")
	output := captureOutput(t, func() {
		require.NoError(t, runExport(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Data exported")

	data, err := os.ReadFile(exportOutput)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)

	captureOutput(t, func() {
		assert.Error(t, runClear(&cobra.Command{}, nil), "clear needs --yes")
	})
	clearYes = true
	captureOutput(t, func() {
		require.NoError(t, runClear(&cobra.Command{}, nil))
	})

	output = captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "0 timelines, 0 events")

	output = captureOutput(t, func() {
		require.NoError(t, runImport(&cobra.Command{}, []string{exportOutput}))
	})
	assert.Contains(t, output, "Data imported")

	output = captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "2 timelines, 7 events")
}

func TestImport_InvalidKeepsData(t *testing.T) {
	ws := setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	bad := filepath.Join(ws, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))
	captureOutput(t, func() {
		err := runImport(&cobra.Command{}, []string{bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid data format")
	})

	output := captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "2 timelines, 7 events")
}

func TestExportCSVToStdout(t *testing.T) {
	setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	exportFormat = "csv"
	exportOutput = "-"
	exportLocale = "zh"
	output := captureOutput(t, func() {
		require.NoError(t, runExport(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "World Wars")
	assert.Contains(t, output, "关键")

	exportFormat = "xml"
	captureOutput(t, func() {
		assert.Error(t, runExport(&cobra.Command{}, nil))
	})
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "timelines_20240309_1405.txt", exportFilename(now, "json"))
	assert.Equal(t, "timelines_20240309_1405.csv", exportFilename(now, "csv"))
}

func TestSearch(t *testing.T) {
	setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	output := captureOutput(t, func() {
		require.NoError(t, runSearch(&cobra.Command{}, []string{"APPLE"}))
	})
	assert.Contains(t, output, "iPhone released")
	assert.NotContains(t, output, "ARPANET")

	output = captureOutput(t, func() {
		require.NoError(t, runSearch(&cobra.Command{}, []string{"zeppelin"}))
	})
	assert.Contains(t, output, "No matching events")
}

func TestRender_TruncatedTimeline(t *testing.T) {
	setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	output := captureOutput(t, func() {
		require.NoError(t, runRender(&cobra.Command{}, []string{"sample1"}))
	})
	assert.Contains(t, output, "World Wars")
	assert.Contains(t, output, "Timeline spans 31 years; only the 25 years 1914-1938 are shown")
	assert.Contains(t, output, "1914")
	assert.Contains(t, output, "Second World War ends  (not shown)")

	captureOutput(t, func() {
		assert.Error(t, runRender(&cobra.Command{}, []string{"missing"}))
	})
}

func TestRender_ZoomIsNotPersisted(t *testing.T) {
	ws := setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	renderZoom = 180
	captureOutput(t, func() {
		require.NoError(t, runRender(&cobra.Command{}, []string{"sample2"}))
	})

	prefs := ux.NewPreferencesManager(ws)
	require.NoError(t, prefs.Load())
	assert.Nil(t, prefs.Get().Zoom)
}

func TestAdvisoryRemembered(t *testing.T) {
	ws := setup(t)
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
		require.NoError(t, runRender(&cobra.Command{}, []string{"sample1"}))
	})

	prefs := ux.NewPreferencesManager(ws)
	require.NoError(t, prefs.Load())
	assert.Contains(t, prefs.Get().AdvisedTimelines, "sample1")
}

func TestAdvisoryForgottenAfterClear(t *testing.T) {
	ws := setup(t)
	clearYes = true
	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
		require.NoError(t, runRender(&cobra.Command{}, []string{"sample1"}))
		require.NoError(t, runClear(&cobra.Command{}, nil))
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})

	prefs := ux.NewPreferencesManager(ws)
	require.NoError(t, prefs.Load())
	assert.Empty(t, prefs.Get().AdvisedTimelines)
}

func writeConfigZoom(t *testing.T, ws string, zoom int) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = storage.DriverFile
	cfg.Display.Zoom = zoom
	require.NoError(t, cfg.Save(config.DefaultPath(ws)))
}

func openedZoom(t *testing.T) int {
	t.Helper()
	a, err := openApp()
	require.NoError(t, err)
	defer a.close()
	return a.dispatcher.Engine().Zoom()
}

func TestConfigZoomAfterPreviousRun(t *testing.T) {
	ws := setup(t)
	captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, nil))
	})
	require.FileExists(t, filepath.Join(ws, ".timeliner", "preferences.json"))
	assert.Equal(t, layout.DefaultZoom, openedZoom(t))

	writeConfigZoom(t, ws, 150)
	assert.Equal(t, 150, openedZoom(t))
}

func TestChosenZoomYieldsToConfigEdit(t *testing.T) {
	ws := setup(t)
	writeConfigZoom(t, ws, 150)

	a, err := openApp()
	require.NoError(t, err)
	a.rememberView(150, 60, 5, "sample1")
	require.NoError(t, a.close())

	assert.Equal(t, 60, openedZoom(t), "zoom picked in the TUI is restored")

	a, err = openApp()
	require.NoError(t, err)
	a.rememberView(60, 60, 0, "")
	require.NoError(t, a.close())
	assert.Equal(t, 60, openedZoom(t), "an unchanged zoom does not rewrite the saved one")

	writeConfigZoom(t, ws, 120)
	assert.Equal(t, 120, openedZoom(t), "editing the config wins")
}

func TestDefaultSQLiteDriver(t *testing.T) {
	setup(t)
	t.Setenv("TIMELINER_STORAGE_DRIVER", "sqlite")

	captureOutput(t, func() {
		require.NoError(t, runSample(&cobra.Command{}, nil))
	})
	output := captureOutput(t, func() {
		require.NoError(t, runStats(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "2 timelines, 7 events")
	assert.FileExists(t, filepath.Join(workspace, ".timeliner", "timelines.db"))
}

func TestInvalidConfig(t *testing.T) {
	setup(t)
	t.Setenv("TIMELINER_STORAGE_DRIVER", "redis")

	captureOutput(t, func() {
		err := runStats(&cobra.Command{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid storage driver")
	})
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	defer func() {
		os.Stdout = origOut
		os.Stderr = origErr
	}()
	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	return <-done
}
