package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/common/middleware"
	"github.com/central-university-dev/go-tubecord/internal/config"
	"github.com/central-university-dev/go-tubecord/internal/database"
	domainclients "github.com/central-university-dev/go-tubecord/internal/domain/clients"
	"github.com/central-university-dev/go-tubecord/internal/relay/cache"
	"github.com/central-university-dev/go-tubecord/internal/relay/classifier"
	"github.com/central-university-dev/go-tubecord/internal/relay/clients"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
	"github.com/central-university-dev/go-tubecord/internal/relay/format"
	"github.com/central-university-dev/go-tubecord/internal/relay/handler"
	"github.com/central-university-dev/go-tubecord/internal/relay/notify"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository"
	"github.com/central-university-dev/go-tubecord/internal/relay/service"
	"github.com/central-university-dev/go-tubecord/internal/relay/websub"
	"github.com/central-university-dev/go-tubecord/internal/scheduler"
	"github.com/central-university-dev/go-tubecord/pkg"
	"github.com/central-university-dev/go-tubecord/pkg/txs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена последовательной инициализацией всех компонентов.
func run() error {
	cfg := config.LoadConfig()

	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Некорректная конфигурация", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MigrationsPath != "" {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
			appLogger.Error("Ошибка при применении миграций", "error", err)
			return err
		}
	}

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к базе данных", "error", err)
		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}
	defer db.Close()

	txManager := txs.NewTxManager(db.Pool, appLogger)
	repoFactory := repository.NewFactory(db, cfg, appLogger)

	postRepo, err := repoFactory.CreateCommunityPostRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория постов", "error", err)
		return err
	}

	handleRepo, err := repoFactory.CreateChannelHandleRepository()
	if err != nil {
		appLogger.Error("Ошибка при создании репозитория хэндлов", "error", err)
		return err
	}

	handleStore := handleRepo
	readiness := []metrics.ServerOption{metrics.WithReadinessCheck("postgres", db.Ping)}

	if cfg.HandleCacheEnabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warn("Redis недоступен, хэндлы каналов читаются из базы", "error", err)
		} else {
			handleCache := cache.NewRedisHandleCache(redisClient, handleRepo, cfg.RedisCacheTTL, appLogger)
			defer handleCache.Close()

			handleStore = handleCache
			readiness = append(readiness, metrics.WithReadinessCheck("redis", func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}))
		}
	}

	var (
		metadataClient domainclients.VideoMetadataClient
		infoClient     domainclients.ChannelInfoClient
	)

	if cfg.YouTubeAPIKey != "" {
		youtubeClient, err := clients.NewYouTubeClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при создании клиента YouTube Data API", "error", err)
			return err
		}

		metadataClient = youtubeClient
		infoClient = youtubeClient
	} else {
		appLogger.Warn("YOUTUBE_API_KEY не задан, классификация только по данным ленты")
	}

	deadLetters, err := notify.NewDeadLetterSink(cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при создании DLQ", "error", err)
		return err
	}

	if deadLetters != nil {
		defer deadLetters.Close()
	}

	dispatcher := notify.NewDispatcher(
		clients.NewDiscordClient(cfg, appLogger),
		notify.NewDestinationRegistry(cfg.Destinations()),
		format.NewFormatter(cfg.UseRichEmbeds),
		deadLetters,
		appLogger,
	)

	relayService := service.NewRelayService(
		classifier.NewClassifier(metadataClient, cfg.ClassifyDelay, appLogger),
		dispatcher,
		cfg.RecentWindow,
		appLogger,
	)

	subscriptions := websub.NewManager(cfg, appLogger)

	var (
		wg      sync.WaitGroup
		checker handler.CommunityChecker
	)

	if cfg.CommunityEnabled {
		resolver := community.NewHandleResolver(
			handleStore,
			infoClient,
			clients.NewChannelPageClient("", cfg, appLogger),
			appLogger,
		)

		coordinator := community.NewCoordinator(
			cfg.YouTubeChannelID,
			cfg.CommunityCheckInterval(),
			cfg.CommunityPostLimit,
			clients.NewYpDlScraper(cfg.ScraperPath, cfg.ScraperTimeout, appLogger),
			resolver,
			postRepo,
			txManager,
			dispatcher,
			appLogger,
		)

		checker = coordinator

		wg.Add(1)

		go func() {
			defer wg.Done()
			coordinator.Run(ctx)
		}()
	} else {
		appLogger.Info("Опрос постов сообщества отключен в конфигурации")
	}

	var renewer scheduler.SubscriptionRenewer
	if cfg.WebSubAutoSubscribe {
		renewer = subscriptions
	}

	maintenance := scheduler.NewScheduler(postRepo, renewer, scheduler.Options{
		Retention: cfg.CommunityRetention(),
	}, appLogger)
	maintenance.Start(ctx)

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger, readiness...)

	wg.Add(1)

	go func() {
		defer wg.Done()

		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	relayHandler := handler.NewRelayHandler(
		relayService,
		subscriptions,
		checker,
		cfg.YouTubeChannelID,
		cfg.CallbackSecret,
		appLogger,
	)

	rateLimiter := middleware.NewRateLimiterMiddleware(
		ctx,
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		cfg.RateLimitTrustProxy,
		appLogger,
	)

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.CallbackPort),
		Handler:           middleware.NewMetricsMiddleware("relay").Middleware(rateLimiter.Middleware(relayHandler.Routes())),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		appLogger.Info("Запуск HTTP сервера", "port", cfg.CallbackPort)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Получен сигнал завершения")
	case err := <-serverErr:
		appLogger.Error("Ошибка при запуске HTTP сервера", "error", err)
		cancel()
	}

	gracefulShutdown(httpServer, maintenance, &wg, appLogger)

	return nil
}

func gracefulShutdown(server *http.Server, maintenance *scheduler.Scheduler, wg *sync.WaitGroup, appLogger *slog.Logger) {
	maintenance.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера", "error", err)
	}

	wg.Wait()

	appLogger.Info("Сервис успешно остановлен")
}
