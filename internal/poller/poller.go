package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/tw-conquers/internal/event"
	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/metrics"
	"github.com/pfrederiksen/tw-conquers/internal/notifier"
	"github.com/pfrederiksen/tw-conquers/internal/scraper"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

const (
	// DefaultInterval is the time between two poll cycles
	DefaultInterval = 30 * time.Second

	// MessageHeader starts every event notification
	MessageHeader = "New events:"
)

// Fetcher retrieves the current events from the source page
type Fetcher interface {
	FetchEvents(ctx context.Context) ([]event.Event, error)
}

// Poller periodically fetches events and notifies the subscribed channel
type Poller struct {
	fetcher  Fetcher
	state    *subscription.State
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time
}

// Result summarises one poll cycle
type Result struct {
	Fetched  int   // events parsed from the page
	Matched  int   // events that qualified for the notification
	Notified bool  // a notification was dispatched
	Err      error // fetch or parse error, if any
}

// New creates a Poller. m may be nil; a zero interval uses DefaultInterval.
func New(fetcher Fetcher, state *subscription.State, n notifier.Notifier, m *metrics.Metrics, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		state:    state,
		notifier: n,
		metrics:  m,
		interval: interval,
		now:      time.Now,
	}
}

// Run polls immediately and then every interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	logger.Info("Starting poll loop", logger.Fields{
		"interval": p.interval.String(),
	})

	for {
		p.Poll(ctx)

		select {
		case <-ctx.Done():
			logger.Info("Poll loop stopped", nil)
			return nil
		case <-time.After(p.interval):
		}
	}
}

// Poll runs a single cycle
func (p *Poller) Poll(ctx context.Context) Result {
	cycleTime := p.now()
	fields := logger.Fields{"cycle": uuid.NewString()}

	logger.Debug("Polling site", fields)

	start := time.Now()
	events, err := p.fetcher.FetchEvents(ctx)
	took := time.Since(start)

	if err != nil {
		p.observePoll(pollResult(err), 0, took)
		p.reportError(ctx, fields, err)
		return Result{Err: err}
	}
	p.observePoll("ok", len(events), took)

	fields["fetched"] = len(events)
	result := Result{Fetched: len(events)}

	if len(events) == 0 {
		logger.Debug("No events on page", fields)
		return result
	}

	snap := p.state.Snapshot()
	if p.metrics != nil {
		p.metrics.SetKeywords(len(snap.Keywords))
	}

	matched := event.Diff(events, snap.LastUpdate, snap.Keywords)
	result.Matched = len(matched)
	fields["matched"] = len(matched)
	if p.metrics != nil {
		p.metrics.ObserveMatched(len(matched))
	}

	if len(matched) == 0 {
		logger.Debug("No new matching events", fields)
		return result
	}

	if !snap.HasChannel {
		logger.Info("New matching events but no channel set, dropping", fields)
		return result
	}

	fields["channel"] = snap.Channel.String()
	sendErr := p.notifier.Notify(ctx, snap.Channel, FormatMessage(matched))
	if p.metrics != nil {
		p.metrics.ObserveNotification("events", sendErr)
	}
	if sendErr != nil {
		logger.Error("Error while writing to channel", fields, sendErr)
	} else {
		logger.Info("Sent new events", fields)
	}

	result.Notified = true
	p.state.MarkUpdated(cycleTime)

	return result
}

// reportError logs a fetch failure and forwards it to the channel if one is set
func (p *Poller) reportError(ctx context.Context, fields logger.Fields, err error) {
	fields["kind"] = scraper.KindOf(err).String()
	logger.Error("Failed to fetch events", fields, err)

	snap := p.state.Snapshot()
	if !snap.HasChannel {
		return
	}

	sendErr := p.notifier.Notify(ctx, snap.Channel, fmt.Sprintf("Failed to fetch events! Error: %v", err))
	if p.metrics != nil {
		p.metrics.ObserveNotification("error", sendErr)
	}
	if sendErr != nil {
		logger.Error("Failed to write error message", logger.Fields{
			"cycle":   fields["cycle"],
			"channel": snap.Channel.String(),
		}, sendErr)
	}
}

func (p *Poller) observePoll(result string, parsed int, took time.Duration) {
	if p.metrics != nil {
		p.metrics.ObservePoll(result, parsed, took)
	}
}

func pollResult(err error) string {
	if kind := scraper.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

// FormatMessage renders events as one notification: a header line followed by one
// line per event, in order
func FormatMessage(events []event.Event) string {
	var b strings.Builder
	b.WriteString(MessageHeader)
	b.WriteString("\n")
	for _, evt := range events {
		b.WriteString(evt.Format())
		b.WriteString("\n")
	}
	return b.String()
}
