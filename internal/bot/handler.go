package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pfrederiksen/tw-conquers/internal/event"
	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/metrics"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

// Message is an inbound chat message
type Message struct {
	Channel subscription.ChannelID
	Author  string
	Text    string
}

// Handler applies chat commands to the subscription state
type Handler struct {
	state   *subscription.State
	metrics *metrics.Metrics
	botName string
	now     func() time.Time
}

// NewHandler creates a command handler. m may be nil.
func NewHandler(state *subscription.State, m *metrics.Metrics, botName string) *Handler {
	return &Handler{
		state:   state,
		metrics: m,
		botName: botName,
		now:     time.Now,
	}
}

// SetBotName sets the bot's username used for mentions
func (h *Handler) SetBotName(name string) {
	h.botName = name
}

// Handle processes msg and returns the reply to send to msg.Channel.
// handled is false when msg is not a command for this bot; no reply is sent then.
func (h *Handler) Handle(ctx context.Context, msg Message) (reply string, handled bool) {
	inv, ok := ParseCommand(msg.Text, h.botName)
	if !ok {
		return "", false
	}

	fields := logger.Fields{
		"command": inv.Name,
		"author":  msg.Author,
		"channel": msg.Channel.String(),
	}
	logger.Info("Command received", fields)

	reply = h.dispatch(inv, msg)

	if h.metrics != nil {
		h.metrics.ObserveCommand(inv.Command.String())
	}
	logger.Debug("Command processed", fields)

	return reply, true
}

func (h *Handler) dispatch(inv Invocation, msg Message) string {
	switch inv.Command {
	case CommandTest:
		return "Hi there!"

	case CommandTalkHere:
		return h.handleTalkHere(msg)

	case CommandSearchFor:
		return h.handleSearchFor(inv.Args)

	case CommandClearSearches:
		h.state.ClearKeywords()
		if h.metrics != nil {
			h.metrics.SetKeywords(0)
		}
		return "Searches cleared!"

	case CommandStatus:
		return h.handleStatus()

	case CommandHelp:
		return helpMessage()

	default:
		return fmt.Sprintf("Unknown command: %s\n\nUse -help to see available commands.", inv.Name)
	}
}

func (h *Handler) handleTalkHere(msg Message) string {
	h.state.SetChannel(msg.Channel)
	logger.Info("Talking on channel", logger.Fields{"channel": msg.Channel.String()})
	return "Ok, I'll talk on this channel"
}

func (h *Handler) handleSearchFor(words []string) string {
	if len(words) == 0 {
		return `Please tell me what to search for.

Usage: -search_for <words...>

Examples:
-search_for Rome
-search_for Geralt, Kaer Morhen`
	}

	keywords := h.state.AddKeywords(words...)
	if h.metrics != nil {
		h.metrics.SetKeywords(len(keywords))
	}
	return "Ok, currently searching for: " + quoteList(keywords)
}

func (h *Handler) handleStatus() string {
	snap := h.state.Snapshot()

	channel := "nowhere yet (use -talk_here)"
	if snap.HasChannel {
		channel = snap.Channel.String()
	}

	keywords := "nothing (use -search_for)"
	if len(snap.Keywords) > 0 {
		keywords = quoteList(snap.Keywords)
	}

	return fmt.Sprintf(`Currently talking on: %s
Looking for events matching: %s
Last checked for events at: %s (%s)`,
		channel,
		keywords,
		snap.LastUpdate.UTC().Format(event.DisplayLayout),
		humanize.RelTime(snap.LastUpdate, h.now(), "ago", "from now"))
}

func quoteList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	return strings.Join(quoted, ", ")
}

// helpMessage lists the commands with a short description each
func helpMessage() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, cmd := range Commands {
		fmt.Fprintf(&b, "-%s : %s\n", cmd, describe(cmd))
	}
	b.WriteString("\nCommands also work with a / prefix.")
	return b.String()
}

func describe(cmd Command) string {
	switch cmd {
	case CommandTest:
		return `Test if the bot is working, it will reply with "Hi there!" if it is.`
	case CommandTalkHere:
		return "Tell the bot to talk on this channel."
	case CommandSearchFor:
		return "Add a list of stuff for the bot to search for."
	case CommandClearSearches:
		return "Make the bot no longer search for anything."
	case CommandStatus:
		return "Get the status of the bot."
	case CommandHelp:
		return "Show this message."
	default:
		return ""
	}
}
