package websub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-tubecord/internal/common/httputil"
	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

const (
	ModeSubscribe   = "subscribe"
	ModeUnsubscribe = "unsubscribe"

	hubRequestTimeout = 30 * time.Second
)

type Status struct {
	HubURL           string     `json:"hub_url"`
	TopicURL         string     `json:"topic_url"`
	CallbackURL      string     `json:"callback_url"`
	Subscribed       bool       `json:"subscribed"`
	LastRequest      *time.Time `json:"last_request"`
	LastVerification *time.Time `json:"last_verification"`
	LastNotification *time.Time `json:"last_notification"`
	LeaseExpiresAt   *time.Time `json:"lease_expires_at"`
	NeedsRenewal     bool       `json:"needs_renewal"`
	LastError        string     `json:"last_error,omitempty"`
}

// Manager отправляет запросы подписки в хаб и хранит состояние аренды.
type Manager struct {
	client       *resty.Client
	hubURL       string
	topicURL     string
	callbackURL  string
	secret       string
	leaseSeconds int
	renewBefore  time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu               sync.RWMutex
	subscribed       bool
	lastRequest      time.Time
	lastVerification time.Time
	lastNotification time.Time
	leaseExpiresAt   time.Time
	lastErr          error
}

func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "websub_hub", httputil.WithTimeout(hubRequestTimeout))

	return &Manager{
		client:       client,
		hubURL:       cfg.WebSubHubURL,
		topicURL:     cfg.WebSubTopicURL(),
		callbackURL:  cfg.CallbackURL,
		secret:       cfg.CallbackSecret,
		leaseSeconds: cfg.WebSubLeaseSeconds,
		renewBefore:  cfg.WebSubRenewBefore,
		now:          time.Now,
		logger:       logger,
	}
}

func (m *Manager) Subscribe(ctx context.Context) error {
	return m.request(ctx, ModeSubscribe)
}

func (m *Manager) Unsubscribe(ctx context.Context) error {
	return m.request(ctx, ModeUnsubscribe)
}

func (m *Manager) request(ctx context.Context, mode string) error {
	form := map[string]string{
		"hub.callback": m.callbackURL,
		"hub.topic":    m.topicURL,
		"hub.mode":     mode,
		"hub.verify":   "async",
	}

	if mode == ModeSubscribe && m.leaseSeconds > 0 {
		form["hub.lease_seconds"] = strconv.Itoa(m.leaseSeconds)
	}

	if m.secret != "" {
		form["hub.secret"] = m.secret
	}

	m.logger.Info("Отправка запроса в хаб WebSub",
		"mode", mode,
		"hub", m.hubURL,
		"topic", m.topicURL,
	)

	resp, err := m.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(m.hubURL)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRequest = m.now()

	if err != nil {
		m.lastErr = fmt.Errorf("ошибка при запросе %s к хабу WebSub: %w", mode, err)
		m.logger.Error("Хаб WebSub недоступен", "mode", mode, "error", err)

		return m.lastErr
	}

	if resp.StatusCode() != http.StatusAccepted && resp.StatusCode() != http.StatusNoContent {
		m.lastErr = &customerrors.ErrHubRequestFailed{
			Mode:       mode,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
		m.logger.Error("Хаб WebSub отклонил запрос",
			"mode", mode,
			"status", resp.StatusCode(),
		)

		return m.lastErr
	}

	m.lastErr = nil

	if mode == ModeSubscribe {
		m.subscribed = true
		m.leaseExpiresAt = m.lastRequest.Add(time.Duration(m.leaseSeconds) * time.Second)
	} else {
		m.subscribed = false
		m.leaseExpiresAt = time.Time{}
	}

	m.logger.Info("Хаб WebSub принял запрос", "mode", mode, "status", resp.StatusCode())

	return nil
}

// RecordVerification фиксирует подтверждение от хаба. Срок аренды из запроса
// хаба важнее запрошенного.
func (m *Manager) RecordVerification(mode, leaseSeconds string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.lastVerification = now

	if mode == ModeUnsubscribe {
		m.subscribed = false
		m.leaseExpiresAt = time.Time{}

		return
	}

	m.subscribed = true

	lease := m.leaseSeconds
	if parsed, err := strconv.Atoi(leaseSeconds); err == nil && parsed > 0 {
		lease = parsed
	}

	m.leaseExpiresAt = now.Add(time.Duration(lease) * time.Second)
}

func (m *Manager) RecordNotification() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastNotification = m.now()
}

// NeedsRenewal возвращает true, если подписки нет или до конца аренды осталось меньше renewBefore.
func (m *Manager) NeedsRenewal(now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.needsRenewal(now)
}

func (m *Manager) needsRenewal(now time.Time) bool {
	if !m.subscribed || m.leaseExpiresAt.IsZero() {
		return true
	}

	return m.leaseExpiresAt.Sub(now) <= m.renewBefore
}

// RenewIfNeeded продлевает подписку, когда аренда подходит к концу.
func (m *Manager) RenewIfNeeded(ctx context.Context) error {
	if !m.NeedsRenewal(m.now()) {
		return nil
	}

	m.logger.Info("Продление подписки WebSub")

	return m.Subscribe(ctx)
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		HubURL:           m.hubURL,
		TopicURL:         m.topicURL,
		CallbackURL:      m.callbackURL,
		Subscribed:       m.subscribed,
		LastRequest:      timePtr(m.lastRequest),
		LastVerification: timePtr(m.lastVerification),
		LastNotification: timePtr(m.lastNotification),
		LeaseExpiresAt:   timePtr(m.leaseExpiresAt),
		NeedsRenewal:     m.needsRenewal(m.now()),
	}

	if m.lastErr != nil {
		status.LastError = m.lastErr.Error()
	}

	return status
}

func timePtr(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}

	return &value
}
