package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timeliner/cmd/timeliner/ui"
	"timeliner/internal/command"
)

var (
	timelineColor       string
	timelineDescription string
)

// timelineCmd groups timeline management
var timelineCmd = &cobra.Command{
	Use:     "timeline",
	Aliases: []string{"tl"},
	Short:   "Create, list, delete and collapse timelines",
}

var timelineCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty timeline",
	Long: `Creates a timeline and prints its id.

Example:
  timeliner timeline create "Space Race" --color "#8e44ad"`,
	Args: cobra.ExactArgs(1),
	RunE: runTimelineCreate,
}

var timelineListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List timelines",
	Args:    cobra.NoArgs,
	RunE:    runTimelineList,
}

var timelineDeleteCmd = &cobra.Command{
	Use:   "delete TIMELINE_ID",
	Short: "Delete a timeline and all its events",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimelineDelete,
}

var timelineToggleCmd = &cobra.Command{
	Use:   "toggle TIMELINE_ID",
	Short: "Expand or collapse a timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimelineToggle,
}

func init() {
	timelineCreateCmd.Flags().StringVar(&timelineColor, "color", "", "Timeline color (default #3498db)")
	timelineCreateCmd.Flags().StringVar(&timelineDescription, "description", "", "Timeline description")

	timelineCmd.AddCommand(timelineCreateCmd, timelineListCmd, timelineDeleteCmd, timelineToggleCmd)
}

func runTimelineCreate(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		res := a.dispatcher.Apply(command.CreateTimeline{
			Name:        args[0],
			Color:       timelineColor,
			Description: timelineDescription,
		})
		if err := a.report(res); err != nil {
			return err
		}
		fmt.Println(res.Timeline.ID)
		return nil
	})
}

func runTimelineList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		timelines := a.dispatcher.Store().Timelines()
		if len(timelines) == 0 {
			fmt.Println("No timelines. Create one with 'timeliner timeline create NAME' or load examples with 'timeliner sample'.")
			return nil
		}

		table := ui.NewTable("Timelines", "ID", "Name", "Events", "Span", "State")
		for _, t := range timelines {
			span := "-"
			if minYear, maxYear, ok := t.YearSpan(); ok {
				span = fmt.Sprintf("%d-%d", minYear, maxYear)
			}
			state := "collapsed"
			if t.Expanded {
				state = "expanded"
			}
			table.AddRow(t.ID, t.Name, strconv.Itoa(len(t.Events)), span, state)
		}
		fmt.Println(table.View(a.styles))
		cliLogger().Debug("listed timelines", zap.Int("count", len(timelines)))
		return nil
	})
}

func runTimelineDelete(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.DeleteTimeline{TimelineID: args[0]}))
	})
}

func runTimelineToggle(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.ToggleTimeline{TimelineID: args[0]}))
	})
}
