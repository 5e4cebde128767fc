package notify

import (
	"context"
	"fmt"
	"os"

	xhttp "StockPulse/pkg/http"
)

// Slack posts to an incoming-webhook URL taken from SLACK_WEBHOOK_URL.
type Slack struct {
	client     *xhttp.Client
	webhookURL string
}

func NewSlack(client *xhttp.Client) *Slack {
	return &Slack{client: client, webhookURL: os.Getenv("SLACK_WEBHOOK_URL")}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, title, body string) (bool, error) {
	if s.webhookURL == "" {
		return false, nil
	}
	payload := map[string]string{
		"text": fmt.Sprintf("*%s*\n%s", title, body),
	}
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.webhookURL,
		Body:   payload,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
	if err := s.client.SendAndParse(ctx, opts, nil); err != nil {
		return false, err
	}
	return true, nil
}
