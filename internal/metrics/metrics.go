// Package metrics exposes Prometheus metrics for the poll loop and command handling,
// served on /metrics next to a /healthz probe.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tw_conquers"

// Metrics holds the bot's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	polls         *prometheus.CounterVec
	eventsParsed  prometheus.Counter
	eventsMatched prometheus.Counter
	notifications *prometheus.CounterVec
	commands      *prometheus.CounterVec
	fetchDuration prometheus.Summary
	lastSuccess   prometheus.Gauge
	keywords      prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.polls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Number of poll cycles by result",
	}, []string{"result"})
	m.eventsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_parsed_total",
		Help:      "Number of events parsed from the source page",
	})
	m.eventsMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_matched_total",
		Help:      "Number of new events matching a keyword",
	})
	m.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Number of chat messages sent by the poll loop, by kind and status",
	}, []string{"kind", "status"})
	m.commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Number of chat commands handled",
	}, []string{"command"})
	m.fetchDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching and parsing the source page",
	})
	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful fetch",
	})
	m.keywords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "keywords",
		Help:      "Number of subscribed keywords",
	})

	m.registry.MustRegister(
		m.polls, m.eventsParsed, m.eventsMatched, m.notifications,
		m.commands, m.fetchDuration, m.lastSuccess, m.keywords,
	)
	return m
}

// ObservePoll records the outcome of one fetch. result is "ok" or an error kind.
func (m *Metrics) ObservePoll(result string, parsed int, took time.Duration) {
	m.polls.WithLabelValues(result).Inc()
	m.fetchDuration.Observe(took.Seconds())
	if result == "ok" {
		m.eventsParsed.Add(float64(parsed))
		m.lastSuccess.SetToCurrentTime()
	}
}

// ObserveMatched records how many events qualified for a notification
func (m *Metrics) ObserveMatched(n int) {
	m.eventsMatched.Add(float64(n))
}

// ObserveNotification records a send attempt. kind is "events" or "error".
func (m *Metrics) ObserveNotification(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}

// ObserveCommand counts a handled chat command
func (m *Metrics) ObserveCommand(name string) {
	m.commands.WithLabelValues(name).Inc()
}

// SetKeywords records the current number of keywords
func (m *Metrics) SetKeywords(n int) {
	m.keywords.Set(float64(n))
}

// Registry returns the registry backing the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves /metrics and /healthz
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts the server down
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      m.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down metrics server: %w", err)
		}
		return nil
	}
}
