package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-tubecord/internal/common/httputil"
	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	defaultDiscordInterval   = 200 * time.Millisecond
	defaultDiscordRetryAfter = time.Second
	discordRequestTimeout    = 10 * time.Second
)

// DiscordClient отправляет сообщения в вебхуки Discord. Все отправки процесса
// проходят через один limiter, на 429 выполняется ровно один повтор.
type DiscordClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewDiscordClient(cfg *config.Config, logger *slog.Logger) *DiscordClient {
	interval := cfg.DiscordMinInterval
	if interval <= 0 {
		interval = defaultDiscordInterval
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "discord",
		httputil.WithRetryCount(0),
		httputil.WithTimeout(discordRequestTimeout),
	)

	return &DiscordClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

type rateLimitResponse struct {
	RetryAfter *float64 `json:"retry_after"`
}

func (c *DiscordClient) Send(ctx context.Context, webhookURL string, payload *models.Payload) error {
	resp, err := c.post(ctx, webhookURL, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		metrics.RecordThrottled()

		retryAfter := parseRetryAfter(resp.Body())

		c.logger.Warn("Discord ограничил частоту запросов, повтор после паузы",
			"retry_after", retryAfter,
		)

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		resp, err = c.post(ctx, webhookURL, payload)
		if err != nil {
			return err
		}
	}

	if !resp.IsSuccess() {
		c.logger.Error("Вебхук Discord вернул ошибку",
			"status", resp.StatusCode(),
			"body", truncateBody(resp.String()),
		)

		return &customerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return nil
}

func (c *DiscordClient) post(ctx context.Context, webhookURL string, payload *models.Payload) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ошибка ожидания лимита отправки: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при отправке в вебхук Discord: %w", err)
	}

	return resp, nil
}

func parseRetryAfter(body []byte) time.Duration {
	var limited rateLimitResponse

	if err := json.Unmarshal(body, &limited); err != nil || limited.RetryAfter == nil || *limited.RetryAfter < 0 {
		return defaultDiscordRetryAfter
	}

	return time.Duration(*limited.RetryAfter * float64(time.Second))
}

func truncateBody(body string) string {
	const limit = 200

	if len(body) > limit {
		return body[:limit]
	}

	return body
}
