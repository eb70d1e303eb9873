package event

import "time"

const (
	// SourceLayout is the timestamp format used by the conquer table, e.g. "2024-03-09 - 17:05:42"
	SourceLayout = "2006-01-02 - 15:04:05"

	// DisplayLayout is used when rendering timestamps in messages
	DisplayLayout = "2006-01-02 15:04:05 UTC"
)

// ParseTime parses a timestamp cell from the conquer table, interpreted in UTC.
// Returns nil if the text does not match SourceLayout.
func ParseTime(text string) *time.Time {
	t, err := time.ParseInLocation(SourceLayout, text, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
