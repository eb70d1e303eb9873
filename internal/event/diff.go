package event

import (
	"strings"
	"time"
)

// MatchesAny reports whether at least one keyword is a case-sensitive substring of the
// event's place, old holder or new holder
func (e Event) MatchesAny(keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(e.Place, kw) ||
			strings.Contains(e.OldHolder, kw) ||
			strings.Contains(e.NewHolder, kw) {
			return true
		}
	}
	return false
}

// Since returns the events newer than t, preserving order
func Since(events []Event, t time.Time) []Event {
	result := make([]Event, 0, len(events))
	for _, evt := range events {
		if evt.NewerThan(t) {
			result = append(result, evt)
		}
	}
	return result
}

// Matching returns the events that match at least one keyword, preserving order.
// An empty keyword list matches nothing: no subscriptions means no notifications.
func Matching(events []Event, keywords []string) []Event {
	if len(keywords) == 0 {
		return nil
	}

	result := make([]Event, 0, len(events))
	for _, evt := range events {
		if evt.MatchesAny(keywords) {
			result = append(result, evt)
		}
	}
	return result
}

// Diff selects the events worth announcing: newer than lastUpdate and matching a keyword
func Diff(events []Event, lastUpdate time.Time, keywords []string) []Event {
	return Matching(Since(events, lastUpdate), keywords)
}
