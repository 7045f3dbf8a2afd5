package timeline

import "time"

// SampleTimelines returns the demo collection offered on an empty workspace.
func SampleTimelines(now time.Time) []*Timeline {
	ev := func(id string, year int, title, desc string, sev Severity, tags ...string) *Event {
		return &Event{
			ID:          id,
			Year:        year,
			Title:       title,
			Description: desc,
			Severity:    sev,
			Tags:        tags,
			CreatedAt:   now,
		}
	}

	return []*Timeline{
		{
			ID:          "sample1",
			Name:        "World Wars",
			Color:       "#e74c3c",
			Description: "The two world wars and related conflicts",
			Events: []*Event{
				ev("event1", 1914, "First World War begins",
					"Austria-Hungary declares war on Serbia", SeverityCritical,
					"war", "europe", "global conflict"),
				ev("event2", 1918, "First World War ends",
					"Germany signs the armistice", SeverityHigh,
					"war's end", "peace treaty"),
				ev("event3", 1939, "Second World War begins",
					"Germany invades Poland", SeverityCritical,
					"war", "global conflict", "nazi germany"),
				ev("event4", 1945, "Second World War ends",
					"Japan surrenders", SeverityHigh,
					"war's end", "peace", "united nations"),
			},
			Expanded:  true,
			CreatedAt: now,
		},
		{
			ID:          "sample2",
			Name:        "Technology",
			Color:       "#3498db",
			Description: "Milestones in computing and communication",
			Events: []*Event{
				ev("event5", 1947, "Transistor invented",
					"Bell Labs demonstrates the first transistor", SeverityHigh,
					"electronics", "invention", "bell labs"),
				ev("event6", 1969, "ARPANET",
					"The first ARPANET link, forerunner of the internet", SeverityCritical,
					"internet", "networking", "communication"),
				ev("event7", 2007, "iPhone released",
					"Apple ships the first iPhone", SeverityHigh,
					"smartphone", "apple", "mobile computing"),
			},
			CreatedAt: now,
		},
	}
}
