package notifier

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

// tweetLimit is the maximum tweet length in characters
const tweetLimit = 280

// TwitterCredentials holds the OAuth1 keys for posting tweets
type TwitterCredentials struct {
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	AccessToken  string `yaml:"access_token"`
	AccessSecret string `yaml:"access_secret"`
}

// Complete reports whether all four credentials are set
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier mirrors notifications to a Twitter account.
// The channel argument is ignored; every message goes to the authenticated account.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return newTwitterNotifier(config.Client(oauth1.NoContext, token)), nil
}

func newTwitterNotifier(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts text as a single tweet, truncated to the tweet limit
func (n *TwitterNotifier) Notify(ctx context.Context, channel subscription.ChannelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := n.client.Statuses.Update(formatTweet(text), nil)
	if err != nil {
		return fmt.Errorf("posting tweet: %w", err)
	}
	return nil
}

// formatTweet truncates text to the tweet limit, adding an ellipsis when cut
func formatTweet(text string) string {
	runes := []rune(text)
	if len(runes) <= tweetLimit {
		return text
	}
	return string(runes[:tweetLimit-3]) + "..."
}
