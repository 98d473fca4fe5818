package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

const (
	defaultCleanupInterval = 24 * time.Hour
	defaultRenewInterval   = 10 * time.Minute
)

type PostCleaner interface {
	DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type SubscriptionRenewer interface {
	RenewIfNeeded(ctx context.Context) error
}

type Options struct {
	Retention       time.Duration
	CleanupInterval time.Duration
	RenewInterval   time.Duration
}

// Scheduler выполняет фоновое обслуживание: удаление старых отправленных постов
// и продление подписки WebSub.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cleaner   PostCleaner
	renewer   SubscriptionRenewer
	options   Options
	logger    *slog.Logger
}

// NewScheduler принимает nil cleaner или renewer, соответствующая задача тогда не создается.
func NewScheduler(cleaner PostCleaner, renewer SubscriptionRenewer, options Options, logger *slog.Logger) *Scheduler {
	if options.CleanupInterval <= 0 {
		options.CleanupInterval = defaultCleanupInterval
	}

	if options.RenewInterval <= 0 {
		options.RenewInterval = defaultRenewInterval
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cleaner:   cleaner,
		renewer:   renewer,
		options:   options,
		logger:    logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Запуск планировщика обслуживания",
		"cleanupInterval", s.options.CleanupInterval.String(),
		"renewInterval", s.options.RenewInterval.String(),
	)

	if s.cleaner != nil && s.options.Retention > 0 {
		if _, err := s.scheduler.Every(s.options.CleanupInterval).Do(s.cleanup, ctx); err != nil {
			s.logger.Error("Ошибка при настройке задачи очистки", "error", err)
		}
	}

	if s.renewer != nil {
		if _, err := s.scheduler.Every(s.options.RenewInterval).Do(s.renew, ctx); err != nil {
			s.logger.Error("Ошибка при настройке задачи продления подписки", "error", err)
		}
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика обслуживания")
	s.scheduler.Stop()
}

func (s *Scheduler) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-s.options.Retention)

	deleted, err := s.cleaner.DeleteNotifiedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Ошибка при удалении старых постов сообщества", "error", err)
		return
	}

	s.logger.Info("Старые посты сообщества удалены",
		"deleted", deleted,
		"cutoff", cutoff,
	)
}

func (s *Scheduler) renew(ctx context.Context) {
	if err := s.renewer.RenewIfNeeded(ctx); err != nil {
		s.logger.Error("Ошибка при продлении подписки WebSub", "error", err)
	}
}
