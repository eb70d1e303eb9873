package notifier

import (
	"context"

	"github.com/pfrederiksen/tw-conquers/internal/logger"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

// Notifier defines the interface for posting messages to a chat channel
type Notifier interface {
	// Notify sends text to channel
	Notify(ctx context.Context, channel subscription.ChannelID, text string) error
}

// Fanout sends to a primary notifier and mirrors the message to secondary ones.
// Only the primary's error is returned; mirror failures are logged.
type Fanout struct {
	primary Notifier
	mirrors []Notifier
}

// NewFanout creates a Fanout. Nil mirrors are skipped.
func NewFanout(primary Notifier, mirrors ...Notifier) *Fanout {
	f := &Fanout{primary: primary}
	for _, m := range mirrors {
		if m != nil {
			f.mirrors = append(f.mirrors, m)
		}
	}
	return f
}

// Notify sends text through the primary notifier, then each mirror
func (f *Fanout) Notify(ctx context.Context, channel subscription.ChannelID, text string) error {
	err := f.primary.Notify(ctx, channel, text)

	for _, m := range f.mirrors {
		if mirrorErr := m.Notify(ctx, channel, text); mirrorErr != nil {
			logger.Warn("Mirror notification failed", logger.Fields{
				"channel": channel.String(),
				"error":   mirrorErr.Error(),
			})
		}
	}

	return err
}
