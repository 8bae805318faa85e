package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/stationops/forecourt/internal/models"
)

// SESNotificationSink delivers alert notifications as email via AWS SES.
// Like every NotificationSink it is fire-and-forget: delivery failures are
// logged and swallowed.
type SESNotificationSink struct {
	sesClient   *ses.Client
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewSESNotificationSink creates a new SES-backed sink
func NewSESNotificationSink(region, fromAddress, toAddress string, logger *slog.Logger) (*SESNotificationSink, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotificationSink{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// Send implements NotificationSink
func (s *SESNotificationSink) Send(payload models.NotificationPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		subject := fmt.Sprintf("[%s] %s alert", payload.Level, payload.Type)

		textBody := fmt.Sprintf(`%s

Station:  %s (%s)
Severity: %s
Log ID:   %d
`, payload.Message, payload.StationName, payload.StationID, payload.Severity, payload.LogID)

		input := &ses.SendEmailInput{
			Source: aws.String(s.fromAddress),
			Destination: &types.Destination{
				ToAddresses: []string{s.toAddress},
			},
			Message: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		}

		if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
			s.logger.Warn("notification email delivery failed",
				slog.String("type", payload.Type),
				slog.Any("error", err))
		}
	}()
}
