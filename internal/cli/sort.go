package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/tw-conquers/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByPage   SortOrder = ""
	SortByTime   SortOrder = "time"
	SortByPoints SortOrder = "points"
	SortByPlace  SortOrder = "place"
)

// Valid reports whether o is a known sort order
func (o SortOrder) Valid() bool {
	switch o {
	case SortByPage, SortByTime, SortByPoints, SortByPlace:
		return true
	}
	return false
}

// sortEvents sorts events in place. Ties keep page order.
func sortEvents(events []event.Event, order SortOrder) {
	switch order {
	case SortByTime:
		sort.SliceStable(events, func(i, j int) bool {
			return newerFirst(events[i], events[j])
		})
	case SortByPoints:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Points > events[j].Points
		})
	case SortByPlace:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Place) < strings.ToLower(events[j].Place)
		})
	}
}

// newerFirst returns true if i should come before j.
// Events without a time sort last.
func newerFirst(i, j event.Event) bool {
	if i.HasTime() && j.HasTime() {
		return i.Time.After(j.Time)
	}
	return i.HasTime() && !j.HasTime()
}
