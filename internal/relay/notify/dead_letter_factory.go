package notify

import (
	"log/slog"

	"github.com/central-university-dev/go-tubecord/internal/config"
	"github.com/central-university-dev/go-tubecord/internal/domain/clients"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

// NewDeadLetterSink возвращает nil, если DLQ отключена в конфигурации.
func NewDeadLetterSink(cfg *config.Config, logger *slog.Logger) (clients.DeadLetterSink, error) {
	if !cfg.DeadLetterEnabled {
		logger.Info("DLQ для недоставленных уведомлений отключена")
		return nil, nil
	}

	brokers := cfg.KafkaBrokerList()
	if len(brokers) == 0 {
		return nil, &customerrors.ErrMissingRequiredField{FieldName: "KAFKA_BROKERS"}
	}

	if cfg.TopicDeadLetterQueue == "" {
		return nil, &customerrors.ErrMissingRequiredField{FieldName: "TOPIC_DEAD_LETTER_QUEUE"}
	}

	logger.Info("Создание DLQ в Kafka",
		"brokers", brokers,
		"topic", cfg.TopicDeadLetterQueue,
	)

	return NewKafkaDeadLetterSink(brokers, cfg.TopicDeadLetterQueue, logger), nil
}
