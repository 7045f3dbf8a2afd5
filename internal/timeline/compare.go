package timeline

import (
	"sort"
	"strings"
)

// CompareEvents orders events by year, then month, then day. A missing month
// or day compares as 0, so a year-only event sorts before any same-year event
// that names a month.
func CompareEvents(a, b *Event) int {
	if a.Year != b.Year {
		return a.Year - b.Year
	}
	if am, bm := a.MonthOrZero(), b.MonthOrZero(); am != bm {
		return am - bm
	}
	return a.DayOrZero() - b.DayOrZero()
}

// SortEvents sorts events in place under CompareEvents. Equal dates keep
// their relative order.
func SortEvents(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return CompareEvents(events[i], events[j]) < 0
	})
}

// IsSorted reports whether events are ordered under CompareEvents.
func IsSorted(events []*Event) bool {
	return sort.SliceIsSorted(events, func(i, j int) bool {
		return CompareEvents(events[i], events[j]) < 0
	})
}

// ParseTags splits comma separated tag text, trimming blanks and dropping
// empty entries. Duplicates are kept.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
