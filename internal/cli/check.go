package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/tw-conquers/internal/event"
	"github.com/pfrederiksen/tw-conquers/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	flagCheckURL      string
	flagCheckTimeout  time.Duration
	flagCheckKeywords []string
	flagSince         time.Duration
	flagFormat        string
	flagSort          string
	flagVerbose       bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch the conquer page once and print its events",
		Long: `Fetch the conquer page once and print the events it lists.

Use --keyword to keep only conquers matching a keyword, the same way the bot
filters before notifying, and --since to drop conquers older than a duration.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	cmd.Flags().StringVar(&flagCheckURL, "url", "", "Conquer page URL (overrides BOT_TW_URL)")
	cmd.Flags().DurationVar(&flagCheckTimeout, "timeout", 0, "HTTP timeout for fetching the page (default 30s)")
	cmd.Flags().StringSliceVar(&flagCheckKeywords, "keyword", nil, "Only show events matching this keyword (repeatable)")
	cmd.Flags().DurationVar(&flagSince, "since", 0, "Only show events newer than this (e.g. 1h); events without a time are kept")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", "", "Sort order: time, points or place (default page order)")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Show points and raw times")

	return cmd
}

// runCheck fetches, filters and prints the current events
func runCheck(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !order.Valid() {
		return fmt.Errorf("invalid sort order: %s (must be 'time', 'points' or 'place')", flagSort)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("url") {
		cfg.Source.URL = flagCheckURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Source.Timeout = flagCheckTimeout
	}
	if err := cfg.Validate(false); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := setupLogger(cfg); err != nil {
		return err
	}

	sc := scraper.New(cfg.Source.URL, cfg.Source.Timeout)
	events, err := sc.FetchEvents(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching events: %w", err)
	}

	now := time.Now().UTC()
	total := len(events)

	if flagSince > 0 {
		events = event.Since(events, now.Add(-flagSince))
	}
	if len(flagCheckKeywords) > 0 {
		events = event.Matching(events, flagCheckKeywords)
	}
	sortEvents(events, order)

	result := &OutputResult{
		CheckedAt:  now,
		URL:        sc.URL(),
		Keywords:   flagCheckKeywords,
		Events:     events,
		EventCount: len(events),
		TotalCount: total,
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
