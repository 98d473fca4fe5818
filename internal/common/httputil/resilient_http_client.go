package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

type clientOptions struct {
	retryCount int
	timeout    time.Duration
	transport  http.RoundTripper
}

type Option func(*clientOptions)

// WithRetryCount переопределяет число повторов из конфигурации.
func WithRetryCount(count int) Option {
	return func(o *clientOptions) {
		o.retryCount = count
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithTransport задает транспорт, который оборачивается circuit breaker'ом.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = transport
	}
}

type ResilientHTTPClient struct {
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *slog.Logger
	serviceName    string
}

func CreateResilientHTTPClient(cfg *config.Config, logger *slog.Logger, serviceName string, opts ...Option) *resty.Client {
	options := &clientOptions{
		retryCount: cfg.RetryCount,
		timeout:    cfg.ExternalRequestTimeout,
		transport:  http.DefaultTransport,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := resty.New()

	client.SetTimeout(options.timeout)

	client.SetRetryCount(options.retryCount)
	client.SetRetryWaitTime(cfg.RetryBackoff)
	client.SetRetryMaxWaitTime(cfg.RetryBackoff * 5)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, gobreaker.ErrOpenState)
		}

		for _, status := range cfg.RetryableStatusCodes {
			if r.StatusCode() == status {
				return true
			}
		}

		return false
	})

	circuitBreakerSettings := gobreaker.Settings{
		Name:        serviceName + "_circuit_breaker",
		MaxRequests: uint32(cfg.CBPermittedCallsInHalfOpen), //nolint:gosec // G115: Значение из конфига
		Interval:    time.Duration(cfg.CBSlidingWindowSize) * time.Second,
		Timeout:     cfg.CBWaitDurationInOpenState,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= uint32(cfg.CBMinimumRequiredCalls) && //nolint:gosec // G115: Значение из конфига
				failureRatio >= float64(cfg.CBFailureRateThreshold)/100.0
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(serviceName, float64(to))

			if logger != nil {
				logger.Warn("Состояние circuit breaker изменилось",
					"name", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
		},
	}

	resilientClient := &ResilientHTTPClient{
		circuitBreaker: gobreaker.NewCircuitBreaker(circuitBreakerSettings),
		logger:         logger,
		serviceName:    serviceName,
	}

	client.SetTransport(&CircuitBreakerTransport{
		resilientClient:   resilientClient,
		originalTransport: options.transport,
	})

	if logger != nil {
		client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			if resp.Request.Attempt > 1 {
				logger.Info("Повторная попытка HTTP запроса",
					"service", serviceName,
					"url", resp.Request.URL,
					"attempt", resp.Request.Attempt,
					"status", resp.StatusCode(),
				)
			}

			return nil
		})
	}

	return client
}

type CircuitBreakerTransport struct {
	resilientClient   *ResilientHTTPClient
	originalTransport http.RoundTripper
}

func (t *CircuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.resilientClient.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := t.originalTransport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &customerrors.HTTPError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) && t.resilientClient.logger != nil {
			t.resilientClient.logger.Warn("Circuit breaker открыт, запрос отклонен",
				"service", t.resilientClient.serviceName,
				"url", req.URL.String(),
			)
		}

		return nil, err
	}

	return result.(*http.Response), nil
}
