package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
	"github.com/central-university-dev/go-tubecord/internal/relay/ingress"
	"github.com/central-university-dev/go-tubecord/internal/relay/websub"
)

const maxFeedBodyBytes = 1 << 20

type FeedProcessor interface {
	ProcessFeedItem(ctx context.Context, item *models.FeedItem) (bool, error)
}

type SubscriptionManager interface {
	Subscribe(ctx context.Context) error
	Unsubscribe(ctx context.Context) error
	RecordVerification(mode, leaseSeconds string)
	RecordNotification()
	Status() websub.Status
}

type CommunityChecker interface {
	ForceCheck(ctx context.Context) (int, error)
	Status() community.Status
}

type RelayHandler struct {
	processor     FeedProcessor
	subscriptions SubscriptionManager
	community     CommunityChecker
	channelID     string
	secret        string
	logger        *slog.Logger
}

// NewRelayHandler принимает nil checker, если опрос сообщества отключен.
func NewRelayHandler(
	processor FeedProcessor,
	subscriptions SubscriptionManager,
	checker CommunityChecker,
	channelID string,
	secret string,
	logger *slog.Logger,
) *RelayHandler {
	return &RelayHandler{
		processor:     processor,
		subscriptions: subscriptions,
		community:     checker,
		channelID:     channelID,
		secret:        secret,
		logger:        logger,
	}
}

func (h *RelayHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /webhook", h.verifySubscription)
	mux.HandleFunc("POST /webhook", h.receiveNotification)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /websub/status", h.websubStatus)
	mux.HandleFunc("POST /subscribe", h.subscribe)
	mux.HandleFunc("POST /unsubscribe", h.unsubscribe)
	mux.HandleFunc("POST /community/check", h.communityCheck)
	mux.HandleFunc("GET /community/status", h.communityStatus)

	return mux
}

func (h *RelayHandler) verifySubscription(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	challenge, err := ingress.VerifyChallenge(query)
	if err != nil {
		h.logger.Warn("Некорректный запрос подтверждения подписки", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	h.subscriptions.RecordVerification(query.Get("hub.mode"), query.Get("hub.lease_seconds"))

	h.logger.Info("Подписка WebSub подтверждена",
		"mode", query.Get("hub.mode"),
		"topic", query.Get("hub.topic"),
		"leaseSeconds", query.Get("hub.lease_seconds"),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

func (h *RelayHandler) receiveNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFeedBodyBytes))
	if err != nil {
		h.logger.Warn("Не удалось прочитать тело уведомления", "error", err)
		http.Error(w, "invalid body", http.StatusBadRequest)

		return
	}

	if err := ingress.VerifySignature(body, ingress.SignatureFromHeaders(r.Header), h.secret); err != nil {
		h.logger.Warn("Уведомление отклонено", "error", err)
		http.Error(w, "invalid signature", http.StatusForbidden)

		return
	}

	h.subscriptions.RecordNotification()

	item, err := ingress.ParseFeed(body)
	if err != nil {
		h.logger.Warn("Не удалось разобрать уведомление", "error", err)
		http.Error(w, "invalid feed", http.StatusBadRequest)

		return
	}

	if item.Event != nil && h.channelID != "" && item.Event.ChannelID != h.channelID {
		h.logger.Warn("Уведомление для чужого канала пропущено",
			"channelID", item.Event.ChannelID,
			"videoID", item.Event.VideoID,
		)
		w.WriteHeader(http.StatusOK)

		return
	}

	ok, err := h.processor.ProcessFeedItem(r.Context(), item)
	if err != nil || !ok {
		h.logger.Error("Ошибка при обработке уведомления", "error", err)
		http.Error(w, "processing failed", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *RelayHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "tubecord"})
}

func (h *RelayHandler) websubStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.subscriptions.Status())
}

func (h *RelayHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Subscribe(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "subscription requested"})
}

func (h *RelayHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Unsubscribe(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscription requested"})
}

func (h *RelayHandler) communityCheck(w http.ResponseWriter, r *http.Request) {
	if h.community == nil {
		writeError(w, http.StatusNotFound, errors.New("опрос постов сообщества отключен"))
		return
	}

	newPosts, err := h.community.ForceCheck(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, &customerrors.ErrCheckInProgress{}) {
			status = http.StatusConflict
		}

		writeError(w, status, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"new_posts": newPosts})
}

func (h *RelayHandler) communityStatus(w http.ResponseWriter, _ *http.Request) {
	if h.community == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": false})
		return
	}

	writeJSON(w, http.StatusOK, h.community.Status())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
