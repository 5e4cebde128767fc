package notify

import (
	"context"
	"os"

	xhttp "StockPulse/pkg/http"
)

const pushoverEndpoint = "https://api.pushover.net/1/messages.json"

// Pushover sends via the Pushover message API. Credentials come from
// PUSHOVER_USER_KEY and PUSHOVER_APP_TOKEN.
type Pushover struct {
	client  *xhttp.Client
	userKey string
	token   string
	url     string
}

func NewPushover(client *xhttp.Client) *Pushover {
	return &Pushover{
		client:  client,
		userKey: os.Getenv("PUSHOVER_USER_KEY"),
		token:   os.Getenv("PUSHOVER_APP_TOKEN"),
		url:     pushoverEndpoint,
	}
}

func (p *Pushover) Name() string { return "pushover" }

func (p *Pushover) Send(ctx context.Context, title, body string) (bool, error) {
	if p.userKey == "" || p.token == "" {
		return false, nil
	}
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    p.url,
		Body: map[string]string{
			"token":   p.token,
			"user":    p.userKey,
			"title":   title,
			"message": body,
		},
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
	}
	if err := p.client.SendAndParse(ctx, opts, nil); err != nil {
		return false, err
	}
	return true, nil
}
