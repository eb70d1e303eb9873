package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/tw-conquers/internal/bot"
	"github.com/pfrederiksen/tw-conquers/internal/config"
	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/metrics"
	"github.com/pfrederiksen/tw-conquers/internal/notifier"
	"github.com/pfrederiksen/tw-conquers/internal/poller"
	"github.com/pfrederiksen/tw-conquers/internal/scraper"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
	"github.com/pfrederiksen/tw-conquers/internal/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagRunURL      string
	flagInterval    time.Duration
	flagRunTimeout  time.Duration
	flagMetricsAddr string
	flagDryRun      bool
	flagChannel     int64
	flagRunKeywords []string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		Long: `Run the bot until interrupted.

The conquer page is polled on a fixed interval. Chat commands (-talk_here,
-search_for, -clear_searches, -status, -test, -help) choose the channel and the
keywords. The bot token is read from BOT_TOKEN and the page from BOT_TW_URL.`,
		Args: cobra.NoArgs,
		RunE: runBot,
	}

	cmd.Flags().StringVar(&flagRunURL, "url", "", "Conquer page URL (overrides BOT_TW_URL)")
	cmd.Flags().DurationVar(&flagInterval, "interval", 0, "Time between polls (default 30s)")
	cmd.Flags().DurationVar(&flagRunTimeout, "timeout", 0, "HTTP timeout for fetching the page (default 30s)")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print notifications to stdout instead of sending them")
	cmd.Flags().Int64Var(&flagChannel, "channel", 0, "Chat ID to talk on from startup")
	cmd.Flags().StringSliceVar(&flagRunKeywords, "keyword", nil, "Keyword to search for from startup (repeatable)")

	return cmd
}

// runBot wires the poll loop, command listener and metrics server together
func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	if err := cfg.Validate(!flagDryRun); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := setupLogger(cfg); err != nil {
		return err
	}

	state := subscription.New(time.Now())
	if cmd.Flags().Changed("channel") {
		state.SetChannel(subscription.ChannelID(flagChannel))
	}
	if len(flagRunKeywords) > 0 {
		state.AddKeywords(flagRunKeywords...)
	}

	m := metrics.New()
	handler := bot.NewHandler(state, m, "")

	var tg *telegram.Client
	if cfg.Telegram.Token != "" {
		tg, err = telegram.NewClient(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		handler.SetBotName(tg.Username())
	}

	n, err := buildNotifier(cmd, cfg, tg)
	if err != nil {
		return err
	}

	sc := scraper.New(cfg.Source.URL, cfg.Source.Timeout)
	p := poller.New(sc, state, n, m, cfg.Source.Interval)

	logger.Info("Starting bot", logger.Fields{
		"url":      sc.URL(),
		"interval": cfg.Source.Interval.String(),
		"dry_run":  flagDryRun,
		"commands": tg != nil,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Run(ctx)
	})
	if tg != nil {
		g.Go(func() error {
			return tg.Listen(ctx, handler)
		})
	}
	if addr := cfg.Metrics.ListenAddress; addr != "" {
		g.Go(func() error {
			logger.Info("Serving metrics", logger.Fields{"addr": addr})
			return m.Serve(ctx, addr)
		})
	}

	err = g.Wait()
	logger.Info("Bot stopped", nil)
	return err
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Source.URL = flagRunURL
	}
	if flags.Changed("interval") {
		cfg.Source.Interval = flagInterval
	}
	if flags.Changed("timeout") {
		cfg.Source.Timeout = flagRunTimeout
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.ListenAddress = flagMetricsAddr
	}
}

// buildNotifier picks the primary notifier and adds the Twitter mirror when configured
func buildNotifier(cmd *cobra.Command, cfg *config.Config, tg *telegram.Client) (notifier.Notifier, error) {
	if flagDryRun {
		return notifier.NewDryRunNotifier(cmd.OutOrStdout()), nil
	}

	var mirrors []notifier.Notifier
	if cfg.Twitter.Complete() {
		tw, err := notifier.NewTwitterNotifier(cfg.Twitter)
		if err != nil {
			return nil, fmt.Errorf("creating twitter notifier: %w", err)
		}
		mirrors = append(mirrors, tw)
		logger.Info("Mirroring notifications to Twitter", nil)
	}

	return notifier.NewFanout(tg, mirrors...), nil
}
