package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "tubecord"

	WebSubSubsystem    = "websub"
	DeliverySubsystem  = "delivery"
	CommunitySubsystem = "community"
)

// Общие метрики.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per outbound service (0 closed, 1 half-open, 2 open)",
		},
		[]string{"service"},
	)
)

// WebSub метрики.
var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WebSubSubsystem,
			Name:      "notifications_total",
			Help:      "Total number of processed feed notifications by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: WebSubSubsystem,
			Name:      "metadata_lookups_total",
			Help:      "Total number of video metadata lookups",
		},
		[]string{"status"},
	)
)

// Метрики доставки.
var (
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: DeliverySubsystem,
			Name:      "deliveries_total",
			Help:      "Total number of webhook deliveries",
		},
		[]string{"content_type", "status"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: DeliverySubsystem,
			Name:      "delivery_duration_seconds",
			Help:      "Webhook delivery duration in seconds, including throttle waits",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"content_type"},
	)

	ThrottledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: DeliverySubsystem,
			Name:      "throttled_total",
			Help:      "Total number of 429 responses from webhooks",
		},
	)
)

// Метрики постов сообщества.
var (
	CommunityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: CommunitySubsystem,
			Name:      "checks_total",
			Help:      "Total number of community post checks",
		},
		[]string{"status"},
	)

	CommunityNewPostsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: CommunitySubsystem,
			Name:      "new_posts_total",
			Help:      "Total number of newly seen community posts",
		},
	)

	ScraperDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: CommunitySubsystem,
			Name:      "scraper_duration_seconds",
			Help:      "Community scraper run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordNotification(notificationType, outcome string) {
	NotificationsTotal.WithLabelValues(notificationType, outcome).Inc()
}

func RecordMetadataLookup(status string) {
	MetadataLookupsTotal.WithLabelValues(status).Inc()
}

func RecordDelivery(contentType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	DeliveriesTotal.WithLabelValues(contentType, status).Inc()
	DeliveryDuration.WithLabelValues(contentType).Observe(duration.Seconds())
}

func RecordThrottled() {
	ThrottledTotal.Inc()
}

func RecordCommunityCheck(status string, newPosts int) {
	CommunityChecksTotal.WithLabelValues(status).Inc()

	if newPosts > 0 {
		CommunityNewPostsTotal.Add(float64(newPosts))
	}
}

func RecordScraperRun(status string, duration time.Duration) {
	ScraperDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func SetCircuitBreakerState(service string, state float64) {
	CircuitBreakerState.WithLabelValues(service).Set(state)
}
