package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Notifier is a best-effort alerting sink. Send never returns an error;
// delivery failures are logged and swallowed.
type Notifier interface {
	Send(ctx context.Context, text string)
}

// Webhook posts alerts as {"text": ...} to a chat webhook.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (w *Webhook) Send(ctx context.Context, text string) {
	if w.url == "" {
		slog.Info("notification (no webhook configured)", "text", text)
		return
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		slog.Error("notification marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("notification request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		slog.Error("notification delivery failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Error("notification rejected", "status", resp.StatusCode)
		return
	}

	slog.Info("notification sent", "text", text)
}
