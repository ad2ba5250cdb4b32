// Package notify posts deploy outcomes to a Slack incoming webhook. The
// webhook is optional and notification failures never fail a deploy; the
// orchestrator logs them and moves on.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Slack posts messages to one incoming webhook URL.
type Slack struct {
	webhookURL string
	httpClient *http.Client
}

// NewSlack creates a notifier for the given webhook URL. An empty URL
// produces a disabled notifier whose Post is a no-op.
func NewSlack(webhookURL string) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *Slack) Enabled() bool {
	return s.webhookURL != ""
}

type payload struct {
	Text string `json:"text"`
}

// Post sends one message. Disabled notifiers return nil immediately.
func (s *Slack) Post(ctx context.Context, text string) error {
	if !s.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	// Slack replies with a short text body; drain it so the connection can
	// be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
