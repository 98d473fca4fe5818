package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type Classifier interface {
	Classify(ctx context.Context, event *models.Event) models.NotificationType
}

type Dispatcher interface {
	Dispatch(ctx context.Context, notification *models.Notification) (int, error)
}

const (
	OutcomeDelivered     = "delivered"
	OutcomeNoDestination = "no_destination"
	OutcomeSkippedStale  = "skipped_stale"
	OutcomeTerminal      = "terminal"
	OutcomeFailed        = "failed"
	OutcomeDeleted       = "deleted"
)

// RelayService превращает события ленты в уведомления Discord.
type RelayService struct {
	classifier   Classifier
	dispatcher   Dispatcher
	recentWindow time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

func NewRelayService(
	classifier Classifier,
	dispatcher Dispatcher,
	recentWindow time.Duration,
	logger *slog.Logger,
) *RelayService {
	return &RelayService{
		classifier:   classifier,
		dispatcher:   dispatcher,
		recentWindow: recentWindow,
		now:          time.Now,
		logger:       logger,
	}
}

// ProcessEvent возвращает true, если событие обработано и повторная доставка хабом не нужна.
// Ошибка возвращается вместе с false, когда ни один вебхук не принял уведомление.
func (s *RelayService) ProcessEvent(ctx context.Context, event *models.Event) (bool, error) {
	notificationType := s.classifier.Classify(ctx, event)

	s.logger.Info("Событие классифицировано",
		"videoID", event.VideoID,
		"type", notificationType.String(),
		"title", event.Title,
	)

	if notificationType.IsTerminal() {
		metrics.RecordNotification(notificationType.String(), OutcomeTerminal)
		return true, nil
	}

	if s.recentWindow > 0 && !event.IsRecent(s.now(), s.recentWindow) {
		s.logger.Info("Событие пропущено: опубликовано слишком давно",
			"videoID", event.VideoID,
			"published", event.Published,
		)
		metrics.RecordNotification(notificationType.String(), OutcomeSkippedStale)

		return true, nil
	}

	delivered, err := s.dispatcher.Dispatch(ctx, models.NewVideoNotification(event, notificationType))
	if err != nil {
		s.logger.Error("Ошибка при отправке уведомления",
			"videoID", event.VideoID,
			"error", err,
		)
		metrics.RecordNotification(notificationType.String(), OutcomeFailed)

		return false, err
	}

	outcome := OutcomeDelivered
	if delivered == 0 {
		outcome = OutcomeNoDestination
	}

	metrics.RecordNotification(notificationType.String(), outcome)

	return true, nil
}

func (s *RelayService) ProcessDeletion(_ context.Context, deletion *models.Deletion) bool {
	s.logger.Info("Видео удалено",
		"videoID", deletion.VideoID,
		"channelID", deletion.ChannelID,
		"deletedAt", deletion.DeletedAt,
	)
	metrics.RecordNotification("deleted", OutcomeDeleted)

	return true
}

// ProcessFeedItem обрабатывает результат разбора ленты любого вида.
func (s *RelayService) ProcessFeedItem(ctx context.Context, item *models.FeedItem) (bool, error) {
	if item.IsDeletion() {
		return s.ProcessDeletion(ctx, item.Deletion), nil
	}

	return s.ProcessEvent(ctx, item.Event)
}
