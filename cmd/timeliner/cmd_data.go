package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timeliner/cmd/timeliner/ui"
	"timeliner/internal/command"
	"timeliner/internal/timeline"
)

var (
	exportFormat string
	exportOutput string
	exportLocale string
	clearYes     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all timelines as JSON or CSV",
	Long: `Writes the whole collection to a file. JSON output can be imported back;
CSV has one row per event with localized severity labels.

Examples:
  timeliner export                      # timelines_YYYYMMDD_HHMM.txt
  timeliner export --format csv -o -    # CSV to stdout`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace all timelines with an exported JSON file",
	Long: `Replaces the whole collection with the contents of FILE ("-" reads stdin).
Invalid input leaves the existing data untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var searchCmd = &cobra.Command{
	Use:   "search KEYWORD",
	Short: "Find events by title, description or tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count timelines and events by severity",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Replace all data with the example timelines",
	Args:  cobra.NoArgs,
	RunE:  runSample,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all timelines",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file, - for stdout (default timelines_<timestamp>)")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Label locale for CSV (default from config)")

	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting all data")
}

// exportFilename names an export after the moment it was taken.
func exportFilename(now time.Time, format string) string {
	ext := "txt"
	if format == "csv" {
		ext = "csv"
	}
	return fmt.Sprintf("timelines_%s.%s", now.Format("20060102_1504"), ext)
}

func runExport(cmd *cobra.Command, args []string) error {
	var c command.Command
	switch exportFormat {
	case "json":
		c = command.Export{}
	case "csv":
		c = command.ExportCSV{Locale: exportLocale}
	default:
		return fmt.Errorf("unknown export format %q (valid: json, csv)", exportFormat)
	}

	return withApp(func(a *app) error {
		res := a.dispatcher.Apply(c)
		if !res.IsSuccess() {
			return a.report(res)
		}
		if exportOutput == "-" {
			fmt.Print(res.Output)
			return nil
		}
		path := exportOutput
		if path == "" {
			path = exportFilename(time.Now(), exportFormat)
		}
		if err := os.WriteFile(path, []byte(res.Output), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		cliLogger().Debug("exported", zap.String("path", path), zap.String("format", exportFormat))
		return a.report(command.Result{OK: true, Level: res.Level, Message: fmt.Sprintf("%s to %s", res.Message, path)})
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.Import{Data: string(data)}))
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		res := a.dispatcher.Apply(command.Search{Keyword: args[0]})
		if len(res.Matches) == 0 {
			fmt.Println("No matching events.")
			return nil
		}
		labels := a.dispatcher.Labels()
		table := ui.NewTable(res.Message, "Event", "Timeline", "Date", "Title", "Severity")
		for _, m := range res.Matches {
			table.AddRow(m.Event.ID, m.Timeline.Name, labels.EventDate(m.Event), m.Event.Title, labels.Severity(m.Event.Severity))
		}
		fmt.Println(table.View(a.styles))
		return nil
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		res := a.dispatcher.Apply(command.Stats{})
		labels := a.dispatcher.Labels()
		table := ui.NewTable(res.Message, "Severity", "Events")
		for _, sev := range timeline.Severities {
			table.AddRow(labels.Severity(sev), strconv.Itoa(res.Stats.BySeverity[sev]))
		}
		fmt.Println(table.View(a.styles))
		return nil
	})
}

func runSample(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.LoadSample{}))
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return errors.New("refusing to delete all data without --yes")
	}
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.Clear{}))
	})
}
