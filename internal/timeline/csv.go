package timeline

import (
	"strconv"
	"strings"
)

// ExportCSV writes one row per event under a fixed header. Every text field
// is quoted with embedded quotes doubled; the year is written bare. Severity
// is written as its localized label and tags are joined with ';'. The format
// is export only; there is no CSV import.
func ExportCSV(timelines []*Timeline, labels Labels) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(labels.CSVHeader, ","))
	sb.WriteString("\n")

	for _, t := range timelines {
		for _, e := range t.Events {
			row := []string{
				quoteCSV(t.Name),
				strconv.Itoa(e.Year),
				quoteCSV(e.Title),
				quoteCSV(labels.Severity(e.Severity)),
				quoteCSV(strings.Join(e.Tags, ";")),
				quoteCSV(e.Description),
			}
			sb.WriteString(strings.Join(row, ","))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
