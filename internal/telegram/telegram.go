package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pfrederiksen/tw-conquers/internal/bot"
	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

const (
	// pollTimeout is the long-poll timeout for getUpdates, in seconds
	pollTimeout = 30

	// httpTimeout must exceed pollTimeout so long polls are not cut short
	httpTimeout = 40 * time.Second

	retryDelay = 5 * time.Second
)

// CommandHandler answers inbound chat messages
type CommandHandler interface {
	Handle(ctx context.Context, msg bot.Message) (reply string, handled bool)
}

// Client represents a Telegram Bot API client
type Client struct {
	api        *tgbotapi.BotAPI
	retryDelay time.Duration
}

// NewClient connects to the Bot API and verifies the token
func NewClient(token string) (*Client, error) {
	return newClient(token, &http.Client{Timeout: httpTimeout})
}

func newClient(token string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, httpClient)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	return &Client{
		api:        api,
		retryDelay: retryDelay,
	}, nil
}

// Username returns the bot's username as reported by getMe
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Notify sends a plain text message to channel
func (c *Client) Notify(ctx context.Context, channel subscription.ChannelID, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(int64(channel), text)
	msg.DisableWebPagePreview = true

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("sending message to %s: %w", channel, err)
	}
	return nil
}

// Listen long-polls for updates until ctx is cancelled. Updates are handled one
// at a time in the order received.
func (c *Client) Listen(ctx context.Context, h CommandHandler) error {
	logger.Info("Listening for commands", logger.Fields{"bot": c.Username()})

	offset := 0
	for {
		updates, err := c.getUpdates(ctx, offset)
		if ctx.Err() != nil {
			logger.Info("Command listener stopped", nil)
			return nil
		}
		if err != nil {
			logger.Warn("Failed to get updates", logger.Fields{
				"error": err.Error(),
				"retry": c.retryDelay.String(),
			})
			select {
			case <-ctx.Done():
				logger.Info("Command listener stopped", nil)
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			c.handleUpdate(ctx, h, update)
		}
	}
}

type updatesResult struct {
	updates []tgbotapi.Update
	err     error
}

// getUpdates runs one long poll. The SDK call cannot be cancelled, so a
// cancelled ctx abandons it; it returns on its own within httpTimeout.
func (c *Client) getUpdates(ctx context.Context, offset int) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = pollTimeout

	done := make(chan updatesResult, 1)
	go func() {
		updates, err := c.api.GetUpdates(cfg)
		done <- updatesResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.updates, res.err
	}
}

func (c *Client) handleUpdate(ctx context.Context, h CommandHandler, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}

	in := bot.Message{
		Channel: subscription.ChannelID(msg.Chat.ID),
		Text:    msg.Text,
	}
	if msg.From != nil {
		in.Author = msg.From.UserName
	}

	reply, handled := h.Handle(ctx, in)
	if !handled || reply == "" {
		return
	}

	if err := c.Notify(ctx, in.Channel, reply); err != nil {
		logger.Error("Failed to send reply", logger.Fields{
			"channel": in.Channel.String(),
		}, err)
	}
}
