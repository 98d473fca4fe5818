package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

type KafkaDeadLetterSink struct {
	producer *kafka.Writer
	topic    string
	logger   *slog.Logger
}

func NewKafkaDeadLetterSink(brokers []string, topic string, logger *slog.Logger) *KafkaDeadLetterSink {
	producer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Logger:                 kafka.LoggerFunc(logger.Debug),
		ErrorLogger:            kafka.LoggerFunc(logger.Error),
	}

	return &KafkaDeadLetterSink{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (s *KafkaDeadLetterSink) Publish(ctx context.Context, letter *models.DeadLetter) error {
	if letter.ID == "" {
		letter.ID = uuid.NewString()
	}

	s.logger.Info("Отправка недоставленного уведомления в DLQ",
		"id", letter.ID,
		"notification_id", letter.NotificationID,
		"topic", s.topic,
	)

	value, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации сообщения DLQ: %w", err)
	}

	err = s.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(letter.NotificationID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(letter.Error)},
			{Key: "notification_type", Value: []byte(letter.NotificationType)},
			{Key: "timestamp", Value: []byte(letter.FailedAt.Format(time.RFC3339))},
		},
		Time: letter.FailedAt,
	})
	if err != nil {
		s.logger.Error("Ошибка при отправке сообщения в DLQ", "error", err)
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (s *KafkaDeadLetterSink) Close() error {
	return s.producer.Close()
}
