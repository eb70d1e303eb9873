package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/tw-conquers/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time     `json:"checked_at"`
	URL        string        `json:"url"`
	Keywords   []string      `json:"keywords,omitempty"`
	Events     []event.Event `json:"events"`
	EventCount int           `json:"event_count"`
	TotalCount int           `json:"total_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	out := *result
	if out.Events == nil {
		out.Events = []event.Event{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		if len(result.Keywords) > 0 {
			fmt.Fprintf(w, "No events matching %s found.\n", strings.Join(result.Keywords, ", "))
		} else {
			fmt.Fprintln(w, "No events found.")
		}
		return nil
	}

	for _, evt := range result.Events {
		fmt.Fprintln(w, evt.Format())
		if verbose {
			fmt.Fprintf(w, "     Points: %s\n", evt.PointsText())
			if evt.HasTime() {
				fmt.Fprintf(w, "     Time: %s\n", evt.Time.Format(event.SourceLayout))
			}
		}
	}

	if result.EventCount == result.TotalCount {
		fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)
	} else {
		fmt.Fprintf(w, "\nTotal: %d of %d events\n", result.EventCount, result.TotalCount)
	}

	return nil
}
