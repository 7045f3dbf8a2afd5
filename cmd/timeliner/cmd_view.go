package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"timeliner/cmd/timeliner/ui"
	"timeliner/internal/command"
	"timeliner/internal/logging"
	"timeliner/internal/storage"
)

var (
	renderZoom  int
	renderWidth int
)

var renderCmd = &cobra.Command{
	Use:   "render TIMELINE_ID",
	Short: "Draw one timeline's year scale",
	Long: `Prints the year scale for a timeline followed by its events. Timelines
spanning more than 25 years show only the first 25.

Example:
  timeliner render <timeline-id> --zoom 150 --width 120`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse timelines interactively",
	Long: `Opens the interactive view. Changes written by another timeliner process
are picked up while it runs.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	renderCmd.Flags().IntVar(&renderZoom, "zoom", -1, "Zoom percentage 0-200 (default: configured or last chosen zoom)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Columns to draw, 0 for the whole track")
}

func runRender(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		if renderZoom >= 0 {
			// --zoom applies to this drawing only
			engine := a.dispatcher.Engine()
			defer engine.SetZoom(engine.Zoom())
			a.dispatcher.Apply(command.SetZoom{Zoom: renderZoom})
		}
		res := a.dispatcher.Apply(command.Render{TimelineID: args[0]})
		if !res.IsSuccess() {
			return a.report(res)
		}

		t := res.Timeline
		fmt.Println(a.styles.Title.Render(t.Name))
		if res.Frame == nil {
			fmt.Println(a.styles.Muted.Render("No events"))
			return nil
		}
		if res.Frame.Truncated {
			fmt.Println(a.styles.Warning.Render(res.Frame.Advisory()))
		}
		fmt.Println(ui.RenderScale(res.Frame.Layout, ui.ScaleOptions{
			Width:  renderWidth,
			Styles: a.styles,
		}))
		fmt.Println()

		labels := a.dispatcher.Labels()
		hidden := make(map[string]bool, len(res.Frame.Hidden))
		for _, id := range res.Frame.Hidden {
			hidden[id] = true
		}
		for _, e := range t.Events {
			line := fmt.Sprintf("%-12s %-10s %s", labels.EventDate(e), labels.Severity(e.Severity), e.Title)
			if hidden[e.ID] {
				fmt.Println(a.styles.Muted.Render(line + "  (not shown)"))
				continue
			}
			fmt.Println(a.styles.Severity(e.Severity).Render(line))
		}
		logging.Get(logging.CategoryLayout).Debug("rendered",
			zap.String("timeline", t.ID),
			zap.Int("zoom", res.Zoom),
			zap.Float64("width", res.Frame.Width))
		return nil
	})
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		prefs := a.prefs.Get()
		startZoom := a.dispatcher.Engine().Zoom()
		model := ui.NewModel(a.dispatcher, ui.Options{
			Pan:              prefs.PanOffset,
			SelectedTimeline: prefs.SelectedTimeline,
			Styles:           a.styles,
			Logger:           logging.Get(logging.CategoryUI),
		})
		_ = a.prefs.IncrementMetric("sessions_count")

		p := tea.NewProgram(model, tea.WithAltScreen())

		baseCtx := cmd.Context()
		if baseCtx == nil {
			baseCtx = context.Background()
		}
		g, ctx := errgroup.WithContext(baseCtx)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		if paths := a.backend.Paths(); len(paths) > 0 {
			w, err := storage.NewWatcher(paths, storage.DefaultDebounce, logging.Get(logging.CategoryStorage))
			if err != nil {
				cliLogger().Warn("live reload disabled", zap.Error(err))
			} else {
				g.Go(func() error {
					return w.Run(ctx, func() { p.Send(ui.StorageChangedMsg{}) })
				})
			}
		}

		var final tea.Model
		g.Go(func() error {
			defer cancel()
			var err error
			final, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})

		if err := g.Wait(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		if m, ok := final.(ui.Model); ok {
			a.rememberView(startZoom, m.Zoom(), m.Pan(), m.SelectedTimeline())
		}
		return nil
	})
}
