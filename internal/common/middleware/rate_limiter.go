package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware ограничивает частоту запросов с одного адреса.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	expiration time.Duration
	trustProxy bool
	logger     *slog.Logger
}

// NewRateLimiterMiddleware разрешает requests запросов за window. Очистка неактивных
// клиентов останавливается вместе с ctx.
func NewRateLimiterMiddleware(
	ctx context.Context,
	requests int,
	window time.Duration,
	trustProxy bool,
	logger *slog.Logger,
) *RateLimiterMiddleware {
	m := &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		rate:       rate.Limit(float64(requests) / window.Seconds()),
		burst:      requests,
		expiration: time.Hour,
		trustProxy: trustProxy,
		logger:     logger,
	}

	go m.cleanupClients(ctx)

	return m
}

func (m *RateLimiterMiddleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, exists := m.clients[key]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.clients[key] = client
	}

	client.lastSeen = time.Now()

	return client.limiter
}

func (m *RateLimiterMiddleware) cleanupClients(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			for key, client := range m.clients {
				if time.Since(client.lastSeen) > m.expiration {
					delete(m.clients, key)
				}
			}
			m.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// clientKey берет первый адрес из X-Forwarded-For, если сервис стоит за туннелем или прокси.
func (m *RateLimiterMiddleware) clientKey(r *http.Request) string {
	if m.trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

func (m *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.clientKey(r)

		if !m.limiterFor(key).Allow() {
			retryAfter := max(int(1/float64(m.rate)), 1)

			m.logger.Warn("Превышен лимит запросов",
				"client", key,
				"path", r.URL.Path,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.burst))
			w.Header().Set("X-RateLimit-Remaining", "0")

			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}
