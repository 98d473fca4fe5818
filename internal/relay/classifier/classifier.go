package classifier

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/clients"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	hintLive      = "live"
	hintUpcoming  = "upcoming"
	hintCompleted = "completed"
	hintNone      = "none"

	uploadStatusProcessed = "processed"
)

// livestreamIndicators проверяются без учета регистра как подстроки заголовка.
var livestreamIndicators = []string{"live", "stream", "livestream", "q&a", "premiere"}

// Classifier определяет тип уведомления. Неоднозначные livestream сигналы всегда
// трактуются как завершенная трансляция, чтобы не анонсировать ее повторно.
type Classifier struct {
	metadata clients.VideoMetadataClient
	delay    time.Duration
	logger   *slog.Logger
}

// NewClassifier принимает nil metadata, если ключ YouTube API не настроен.
func NewClassifier(metadata clients.VideoMetadataClient, delay time.Duration, logger *slog.Logger) *Classifier {
	return &Classifier{
		metadata: metadata,
		delay:    delay,
		logger:   logger,
	}
}

// Classify может дописать в event время начала трансляции из метаданных.
func (c *Classifier) Classify(ctx context.Context, event *models.Event) models.NotificationType {
	if c.metadata == nil {
		c.logger.Debug("Ключ YouTube API не настроен, используется резервная классификация",
			"video_id", event.VideoID,
		)

		return ClassifyFallback(event)
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ClassifyFallback(event)
		case <-timer.C:
		}
	}

	metadata, err := c.metadata.VideoMetadata(ctx, event.VideoID)
	if err != nil {
		c.logger.Warn("Не удалось получить метаданные видео, используется резервная классификация",
			"video_id", event.VideoID,
			"error", err,
		)

		return ClassifyFallback(event)
	}

	if metadata.ScheduledStartTime != nil {
		event.ScheduledStartTime = metadata.ScheduledStartTime
	}

	if metadata.ActualStartTime != nil {
		event.ActualStartTime = metadata.ActualStartTime
	}

	notificationType := ClassifyMetadata(metadata)

	c.logger.Info("Видео классифицировано",
		"video_id", event.VideoID,
		"type", notificationType.String(),
		"live_broadcast_content", metadata.LiveBroadcastContent,
		"upload_status", metadata.UploadStatus,
	)

	return notificationType
}

// ClassifyMetadata применяет правила к ответу YouTube API по порядку, первое совпадение побеждает.
func ClassifyMetadata(metadata *models.VideoMetadata) models.NotificationType {
	if !metadata.Found {
		return models.TypeUpload
	}

	if metadata.ActualEndTime != nil {
		return models.TypeCompletedLivestream
	}

	if strings.EqualFold(metadata.UploadStatus, uploadStatusProcessed) && metadata.ActualStartTime != nil {
		return models.TypeCompletedLivestream
	}

	flag := strings.ToLower(metadata.LiveBroadcastContent)

	switch {
	case flag == hintUpcoming, metadata.ScheduledStartTime != nil && metadata.ActualStartTime == nil:
		return models.TypeScheduledLivestream
	case metadata.ActualStartTime != nil:
		return models.TypeLiveNow
	case flag == hintLive:
		return models.TypeLiveNow
	case !metadata.HasLiveDetails:
		return models.TypeUpload
	default:
		return models.TypeCompletedLivestream
	}
}

// ClassifyFallback использует только данные из самого уведомления.
func ClassifyFallback(event *models.Event) models.NotificationType {
	switch strings.ToLower(strings.TrimSpace(event.BroadcastHint)) {
	case hintLive:
		return models.TypeLiveNow
	case hintUpcoming:
		return models.TypeScheduledLivestream
	case hintCompleted:
		return models.TypeCompletedLivestream
	case hintNone:
		if HasLivestreamIndicator(event.Title) {
			return models.TypeCompletedLivestream
		}

		return models.TypeUpload
	}

	if HasLivestreamIndicator(event.Title) {
		return models.TypeCompletedLivestream
	}

	return models.TypeUpload
}

func HasLivestreamIndicator(title string) bool {
	lower := strings.ToLower(title)

	for _, indicator := range livestreamIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	return false
}
