package event

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// UnknownTime is rendered in place of a timestamp that could not be parsed
const UnknownTime = "unknown time"

// Event represents a single ownership change ("conquer") of a place
type Event struct {
	Place     string     `json:"place"`
	Points    int        `json:"points"`
	OldHolder string     `json:"old_holder"`
	NewHolder string     `json:"new_holder"`
	Time      time.Time `json:"time,omitzero"` // zero when the source date failed to parse
}

// New creates an Event. A nil t marks the timestamp as unknown.
func New(place string, points int, oldHolder, newHolder string, t *time.Time) Event {
	evt := Event{
		Place:     place,
		Points:    points,
		OldHolder: oldHolder,
		NewHolder: newHolder,
	}
	if t != nil {
		evt.Time = t.UTC()
	}
	return evt
}

// HasTime reports whether the event carries a parsed timestamp
func (e Event) HasTime() bool {
	return !e.Time.IsZero()
}

// TimeText returns the timestamp in the site's display format, or UnknownTime
func (e Event) TimeText() string {
	if !e.HasTime() {
		return UnknownTime
	}
	return e.Time.Format(DisplayLayout)
}

// PointsText returns the points with thousands separators, e.g. "10,234"
func (e Event) PointsText() string {
	return humanize.Comma(int64(e.Points))
}

// Format renders the event as a single notification line (without trailing newline)
func (e Event) Format() string {
	return fmt.Sprintf("%s has taken %s from %s at %s!", e.NewHolder, e.Place, e.OldHolder, e.TimeText())
}

// NewerThan reports whether the event should be treated as newer than t.
// Events without a timestamp cannot be proven stale and always count as newer.
func (e Event) NewerThan(t time.Time) bool {
	if !e.HasTime() {
		return true
	}
	return e.Time.After(t)
}
