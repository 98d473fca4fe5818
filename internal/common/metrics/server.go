package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck проверяет одну зависимость сервиса. nil означает готовность.
type ReadinessCheck func(ctx context.Context) error

type ServerOption func(*MetricsServer)

// WithReadinessCheck добавляет зависимость, которую опрашивает /ready.
func WithReadinessCheck(name string, check ReadinessCheck) ServerOption {
	return func(s *MetricsServer) {
		s.checks[name] = check
	}
}

//nolint:revive // Имя MetricsServer используется для ясности
type MetricsServer struct {
	server *http.Server
	checks map[string]ReadinessCheck
	logger *slog.Logger
	port   int
}

func NewMetricsServer(port int, logger *slog.Logger, opts ...ServerOption) *MetricsServer {
	s := &MetricsServer{
		checks: make(map[string]ReadinessCheck),
		logger: logger,
		port:   port,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s
}

// Handler отдает /metrics, /health и /ready. Вынесен отдельно для тестов.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /ready", s.ready)

	return mux
}

func (s *MetricsServer) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	failed := make(map[string]string)

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Зависимость не готова", "dependency", name, "error", err)
			failed[name] = err.Error()
		}
	}

	status := http.StatusOK
	body := map[string]any{"status": "ready"}

	if len(failed) > 0 {
		status = http.StatusServiceUnavailable
		body = map[string]any{"status": "not ready", "failed": failed}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("Запуск сервера метрик",
		"port", s.port,
		"endpoint", "/metrics",
		"readinessChecks", len(s.checks),
	)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Ошибка при остановке сервера метрик", "error", err)
		} else {
			s.logger.Info("Сервер метрик успешно остановлен")
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска сервера метрик: %w", err)
	}

	return nil
}

func (s *MetricsServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
