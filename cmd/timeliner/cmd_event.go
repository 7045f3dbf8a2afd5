package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"timeliner/internal/command"
	"timeliner/internal/timeline"
)

// eventFlags are kept as strings so an omitted flag and a non-numeric value
// can be told apart from zero.
var eventFlags struct {
	year        string
	month       string
	day         string
	title       string
	description string
	severity    string
	tags        string
}

var eventCmd = &cobra.Command{
	Use:     "event",
	Aliases: []string{"ev"},
	Short:   "Add, update, delete and show events",
}

var eventAddCmd = &cobra.Command{
	Use:   "add TIMELINE_ID",
	Short: "Add an event to a timeline",
	Long: `Adds a dated event. Year and title are required; month and day are optional,
but a day is only kept when a month is given.

Example:
  timeliner event add <timeline-id> --year 1969 --month 7 --day 20 \
    --title "Moon landing" --severity critical --tags "space, nasa"`,
	Args: cobra.ExactArgs(1),
	RunE: runEventAdd,
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update TIMELINE_ID EVENT_ID",
	Short: "Replace an event's fields",
	Long: `Replaces every editable field of an event. Fields not given are cleared,
so pass the full event as you would in the edit form.`,
	Args: cobra.ExactArgs(2),
	RunE: runEventUpdate,
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete TIMELINE_ID EVENT_ID",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventDelete,
}

var eventShowCmd = &cobra.Command{
	Use:   "show EVENT_ID",
	Short: "Show one event's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventShow,
}

func init() {
	for _, c := range []*cobra.Command{eventAddCmd, eventUpdateCmd} {
		c.Flags().StringVar(&eventFlags.year, "year", "", "Year (required)")
		c.Flags().StringVar(&eventFlags.month, "month", "", "Month 1-12")
		c.Flags().StringVar(&eventFlags.day, "day", "", "Day of month (needs --month)")
		c.Flags().StringVar(&eventFlags.title, "title", "", "Title (required)")
		c.Flags().StringVar(&eventFlags.description, "description", "", "Description")
		c.Flags().StringVar(&eventFlags.severity, "severity", "", "low, medium, high or critical (default medium)")
		c.Flags().StringVar(&eventFlags.tags, "tags", "", "Comma-separated tags")
	}

	eventCmd.AddCommand(eventAddCmd, eventUpdateCmd, eventDeleteCmd, eventShowCmd)
}

// parseIntFlag returns nil for an empty value. Anything non-numeric becomes a
// field error rather than being silently dropped.
func parseIntFlag(field, raw string) (*int, *timeline.FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &timeline.FieldError{Field: field, Message: fmt.Sprintf("%q is not a number", raw)}
	}
	return &v, nil
}

// eventInput builds the form input from flags.
func eventInput() (timeline.EventInput, []timeline.FieldError) {
	in := timeline.EventInput{
		Title:       eventFlags.title,
		Description: eventFlags.description,
		Severity:    eventFlags.severity,
		Tags:        eventFlags.tags,
	}
	var errs []timeline.FieldError
	for _, f := range []struct {
		name string
		raw  string
		dst  **int
	}{
		{"year", eventFlags.year, &in.Year},
		{"month", eventFlags.month, &in.Month},
		{"day", eventFlags.day, &in.Day},
	} {
		v, fe := parseIntFlag(f.name, f.raw)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		*f.dst = v
	}
	return in, errs
}

func printFieldErrors(errs []timeline.FieldError) error {
	for _, fe := range errs {
		fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
	}
	return errors.New("invalid event")
}

func runEventAdd(cmd *cobra.Command, args []string) error {
	in, errs := eventInput()
	if len(errs) > 0 {
		return printFieldErrors(errs)
	}
	return withApp(func(a *app) error {
		res := a.dispatcher.Apply(command.AddEvent{TimelineID: args[0], Input: in})
		if err := a.report(res); err != nil {
			return err
		}
		fmt.Println(res.Event.ID)
		return nil
	})
}

func runEventUpdate(cmd *cobra.Command, args []string) error {
	in, errs := eventInput()
	if len(errs) > 0 {
		return printFieldErrors(errs)
	}
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.UpdateEvent{TimelineID: args[0], EventID: args[1], Input: in}))
	})
}

func runEventDelete(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		return a.report(a.dispatcher.Apply(command.DeleteEvent{TimelineID: args[0], EventID: args[1]}))
	})
}

// eventMarkdown formats an event the way the detail panel shows it.
func eventMarkdown(t *timeline.Timeline, e *timeline.Event, labels timeline.Labels) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.Title)
	fmt.Fprintf(&sb, "- **Timeline:** %s\n", t.Name)
	fmt.Fprintf(&sb, "- **Date:** %s\n", labels.EventDate(e))
	fmt.Fprintf(&sb, "- **Severity:** %s\n", labels.Severity(e.Severity))
	if len(e.Tags) > 0 {
		fmt.Fprintf(&sb, "- **Tags:** %s\n", strings.Join(e.Tags, ", "))
	}
	if e.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", e.Description)
	}
	return sb.String()
}

func runEventShow(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		t, e, found := a.dispatcher.Store().FindEvent(args[0])
		if !found {
			return fmt.Errorf("event %q not found", args[0])
		}
		md := eventMarkdown(t, e, a.dispatcher.Labels())

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			fmt.Println(md)
			return nil
		}
		out, err := renderer.Render(md)
		if err != nil {
			fmt.Println(md)
			return nil
		}
		fmt.Print(out)
		return nil
	})
}
