package timeline

import "strings"

// SearchResult pairs a matching event with the timeline that owns it.
type SearchResult struct {
	Timeline *Timeline
	Event    *Event
}

// Search returns every event whose title, description or any tag contains
// keyword, ignoring case. Results follow collection order.
func (s *Store) Search(keyword string) []SearchResult {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	results := []SearchResult{}
	if needle == "" {
		return results
	}
	for _, t := range s.timelines {
		for _, e := range t.Events {
			if eventMatches(e, needle) {
				results = append(results, SearchResult{Timeline: t, Event: e})
			}
		}
	}
	return results
}

func eventMatches(e *Event, needle string) bool {
	if strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Statistics summarizes the collection.
type Statistics struct {
	TotalTimelines int              `json:"totalTimelines"`
	TotalEvents    int              `json:"totalEvents"`
	BySeverity     map[Severity]int `json:"bySeverity"`
}

// Statistics counts timelines, events and events per severity. Every known
// severity is present in BySeverity, even at zero.
func (s *Store) Statistics() Statistics {
	stats := Statistics{
		TotalTimelines: len(s.timelines),
		BySeverity:     make(map[Severity]int, len(Severities)),
	}
	for _, sev := range Severities {
		stats.BySeverity[sev] = 0
	}
	for _, t := range s.timelines {
		stats.TotalEvents += len(t.Events)
		for _, e := range t.Events {
			stats.BySeverity[e.Severity]++
		}
	}
	return stats
}
