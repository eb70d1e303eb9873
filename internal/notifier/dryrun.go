package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

// DryRunNotifier prints what would be sent without contacting any chat service
type DryRunNotifier struct {
	mu    sync.Mutex
	out   io.Writer
	count int
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout if nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(ctx context.Context, channel subscription.ChannelID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.count++
	fmt.Fprintf(n.out, "--- Message %d to %s ---\n", n.count, channel)
	fmt.Fprintln(n.out, text)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len([]rune(text)))
	return nil
}
