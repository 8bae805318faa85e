package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/stationops/forecourt/internal/models"
)

// NotificationSink delivers alert notifications to an external endpoint.
// Send never blocks the caller and never reports failure: delivery is
// at-most-once, best-effort, with no retry and no backpressure.
type NotificationSink interface {
	Send(payload models.NotificationPayload)
}

// WebhookSink POSTs the notification payload to a configured HTTP endpoint.
type WebhookSink struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookSink creates a new WebhookSink
func NewWebhookSink(url string, timeout time.Duration, logger *slog.Logger) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Send delivers the payload on a background goroutine. Failures are logged
// for diagnostics and otherwise swallowed.
func (s *WebhookSink) Send(payload models.NotificationPayload) {
	if s.url == "" {
		return
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn("failed to marshal notification payload", slog.Any("error", err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			s.logger.Warn("failed to build notification request", slog.Any("error", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Warn("notification delivery failed",
				slog.String("type", payload.Type),
				slog.Any("error", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			s.logger.Warn("notification endpoint returned non-success status",
				slog.String("type", payload.Type),
				slog.Int("status", resp.StatusCode))
		}
	}()
}

// NoopSink discards all notifications. Used when no sink is configured and
// in tests.
type NoopSink struct{}

// Send implements NotificationSink
func (NoopSink) Send(models.NotificationPayload) {}
