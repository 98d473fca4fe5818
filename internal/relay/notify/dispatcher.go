package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/domain/clients"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type PayloadFormatter interface {
	Format(notification *models.Notification, destination *models.Destination) *models.Payload
}

// Dispatcher рассылает уведомление во все включенные вебхуки его группы независимо
// друг от друга. Частичный успех считается успехом.
type Dispatcher struct {
	sender      clients.WebhookSender
	registry    *DestinationRegistry
	formatter   PayloadFormatter
	deadLetters clients.DeadLetterSink
	logger      *slog.Logger
}

// NewDispatcher принимает nil deadLetters, если DLQ отключена.
func NewDispatcher(
	sender clients.WebhookSender,
	registry *DestinationRegistry,
	formatter PayloadFormatter,
	deadLetters clients.DeadLetterSink,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		registry:    registry,
		formatter:   formatter,
		deadLetters: deadLetters,
		logger:      logger,
	}
}

// Dispatch возвращает число успешных доставок. Ошибка возвращается только когда
// был хотя бы один вебхук и ни одна доставка не удалась.
func (d *Dispatcher) Dispatch(ctx context.Context, notification *models.Notification) (int, error) {
	contentType, ok := notification.Type.ContentType()
	if !ok {
		d.logger.Debug("Тип уведомления не доставляется",
			"id", notification.ID(),
			"type", notification.Type.String(),
		)

		return 0, nil
	}

	destinations := d.registry.ForContent(contentType)
	if len(destinations) == 0 {
		d.logger.Info("Для типа контента не настроено ни одного вебхука",
			"id", notification.ID(),
			"content_type", contentType,
		)

		return 0, nil
	}

	var (
		successes int
		errs      error
	)

	for i := range destinations {
		destination := &destinations[i]

		payload := d.formatter.Format(notification, destination)
		if payload == nil {
			continue
		}

		start := time.Now()
		err := d.sender.Send(ctx, destination.WebhookURL, payload)
		metrics.RecordDelivery(string(contentType), err == nil, time.Since(start))

		if err != nil {
			d.logger.Error("Ошибка доставки в вебхук",
				"id", notification.ID(),
				"webhook", MaskWebhookURL(destination.WebhookURL),
				"error", err,
			)

			errs = multierr.Append(errs, fmt.Errorf("%s: %w", MaskWebhookURL(destination.WebhookURL), err))
			d.publishDeadLetter(ctx, notification, destination, payload, err)

			continue
		}

		successes++
	}

	if successes == 0 {
		return 0, &customerrors.ErrDeliveryFailed{
			NotificationID: notification.ID(),
			Attempts:       len(destinations),
			Cause:          errs,
		}
	}

	if errs != nil {
		d.logger.Warn("Уведомление доставлено частично",
			"id", notification.ID(),
			"successes", successes,
			"failures", len(multierr.Errors(errs)),
		)
	} else {
		d.logger.Info("Уведомление доставлено",
			"id", notification.ID(),
			"type", notification.Type.String(),
			"successes", successes,
		)
	}

	return successes, nil
}

func (d *Dispatcher) publishDeadLetter(
	ctx context.Context,
	notification *models.Notification,
	destination *models.Destination,
	payload *models.Payload,
	cause error,
) {
	if d.deadLetters == nil {
		return
	}

	letter := &models.DeadLetter{
		NotificationID:   notification.ID(),
		NotificationType: notification.Type.String(),
		WebhookURL:       MaskWebhookURL(destination.WebhookURL),
		Payload:          payload,
		Error:            cause.Error(),
		FailedAt:         time.Now().UTC(),
	}

	if err := d.deadLetters.Publish(ctx, letter); err != nil {
		d.logger.Error("Не удалось сохранить недоставленное уведомление в DLQ",
			"id", notification.ID(),
			"error", err,
		)
	}
}

// MaskWebhookURL скрывает токен вебхука, оставляя его идентификатор.
func MaskWebhookURL(webhookURL string) string {
	rest, ok := strings.CutPrefix(webhookURL, models.DiscordWebhookPrefix)
	if !ok {
		return webhookURL
	}

	id, _, _ := strings.Cut(rest, "/")

	return models.DiscordWebhookPrefix + id + "/***"
}
