package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Year bounds accepted for events.
const (
	MinYear = 0
	MaxYear = 2100
)

// FieldError reports one invalid input field. Validation failures are data,
// not Go errors: the caller shows them next to the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EventInput is unvalidated event form input. Nil pointers mean the field
// was left empty.
type EventInput struct {
	Year        *int
	Month       *int
	Day         *int
	Title       string
	Description string
	Severity    string
	Tags        string
}

// DaysInMonth returns the number of days in month of year using the
// proleptic Gregorian calendar.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidateEvent checks form input and converts it to EventData. Checks run in
// form order and stop at the first failure, so at most one error is returned.
func ValidateEvent(in EventInput) (EventData, []FieldError) {
	if in.Year == nil {
		return EventData{}, []FieldError{{Field: "year", Message: "year is required"}}
	}
	year := *in.Year
	if year < MinYear || year > MaxYear {
		return EventData{}, []FieldError{{Field: "year", Message: fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear)}}
	}
	if in.Month != nil && (*in.Month < 1 || *in.Month > 12) {
		return EventData{}, []FieldError{{Field: "month", Message: "month must be between 1 and 12"}}
	}
	if in.Day != nil && in.Month != nil {
		days := DaysInMonth(year, *in.Month)
		if *in.Day < 1 || *in.Day > days {
			return EventData{}, []FieldError{{Field: "day", Message: fmt.Sprintf("day must be between 1 and %d", days)}}
		}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return EventData{}, []FieldError{{Field: "title", Message: "title is required"}}
	}
	severity, ok := ParseSeverity(in.Severity)
	if !ok {
		return EventData{}, []FieldError{{Field: "severity", Message: fmt.Sprintf("severity must be one of %v", Severities)}}
	}

	return EventData{
		Year:        year,
		Month:       in.Month,
		Day:         in.Day,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Severity:    severity,
		Tags:        strings.TrimSpace(in.Tags),
	}, nil
}

// ValidateTimelineName checks the only required timeline field.
func ValidateTimelineName(name string) []FieldError {
	if strings.TrimSpace(name) == "" {
		return []FieldError{{Field: "name", Message: "timeline name is required"}}
	}
	return nil
}
