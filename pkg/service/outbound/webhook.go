package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/interfaces"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/utils/safe"
)

const (
	// DefaultWebhookTimeout bounds a single webhook call
	DefaultWebhookTimeout = 15 * time.Second

	maxErrorBodySize = 4 << 10
)

// Webhook posts outbound messages as JSON to a workflow automation webhook,
// which forwards them to WhatsApp.
type Webhook struct {
	url    string
	client *http.Client
}

var _ interfaces.OutboundChannel = &Webhook{}

// WebhookOption is a functional option for Webhook
type WebhookOption func(*Webhook)

// WithHTTPClient replaces the pooled default client
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(w *Webhook) {
		w.client = client
	}
}

// WithTimeout sets the timeout of the default client
func WithTimeout(timeout time.Duration) WebhookOption {
	return func(w *Webhook) {
		w.client.Timeout = timeout
	}
}

// NewWebhook creates a channel posting to url
func NewWebhook(url string, opts ...WebhookOption) (*Webhook, error) {
	if url == "" {
		return nil, goerr.New("webhook URL is required")
	}

	client := cleanhttp.DefaultPooledClient()
	client.Timeout = DefaultWebhookTimeout

	w := &Webhook{
		url:    url,
		client: client,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Send posts msg. A non-2xx response is returned as *model.ChannelError
// carrying the response body.
func (w *Webhook) Send(ctx context.Context, msg *model.OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal outbound message", goerr.V("notification_id", msg.NotificationID))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to build webhook request", goerr.V("notification_id", msg.NotificationID))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call webhook", goerr.V("notification_id", msg.NotificationID))
	}
	defer safe.DrainClose(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return goerr.Wrap(&model.ChannelError{StatusCode: resp.StatusCode, Text: string(text)},
			"webhook rejected message",
			goerr.V("notification_id", msg.NotificationID),
			goerr.V("status", resp.StatusCode))
	}

	return nil
}
