package notify

import (
	"context"
	"fmt"
	"os"
	"strings"

	applogger "StockPulse/pkg/logger"
)

// Channel is one delivery backend. Send reports whether the message actually
// went out; a channel with missing credentials returns (false, nil).
type Channel interface {
	Name() string
	Send(ctx context.Context, title, body string) (bool, error)
}

// Notifier fans a message out to every enabled channel and falls back to
// stdout when none delivered, so a bare cron run still shows its results.
type Notifier struct {
	channels []Channel
	log      *applogger.Logger
	stdout   func(string)
}

func New(log *applogger.Logger, channels ...Channel) *Notifier {
	return &Notifier{
		channels: channels,
		log:      log,
		stdout: func(s string) {
			fmt.Fprintln(os.Stdout, s)
		},
	}
}

// NotifyBatch joins lines into one message body and delivers it.
func (n *Notifier) NotifyBatch(ctx context.Context, title string, lines []string) error {
	body := strings.Join(lines, "\n")

	sent := false
	for _, ch := range n.channels {
		ok, err := ch.Send(ctx, title, body)
		if err != nil {
			n.log.Warn("notification channel failed",
				applogger.String("channel", ch.Name()),
				applogger.Error(err))
			continue
		}
		sent = sent || ok
	}
	if !sent {
		n.stdout(title + "\n" + body)
	}
	return nil
}
