package clients

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type WebhookSender interface {
	Send(ctx context.Context, webhookURL string, payload *models.Payload) error
}

type DeadLetterSink interface {
	Publish(ctx context.Context, letter *models.DeadLetter) error
	Close() error
}
