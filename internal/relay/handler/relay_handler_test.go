package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
	"github.com/central-university-dev/go-tubecord/internal/relay/handler"
	"github.com/central-university-dev/go-tubecord/internal/relay/handler/mocks"
	"github.com/central-university-dev/go-tubecord/internal/relay/ingress"
	"github.com/central-university-dev/go-tubecord/internal/relay/websub"
)

const (
	testSecret  = "s3cret"
	testChannel = "UCchannel"
)

const feedBody = `<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>abc123</yt:videoId>
    <yt:channelId>UCchannel</yt:channelId>
    <title>Новое видео</title>
  </entry>
</feed>`

type handlerDeps struct {
	processor     *mocks.FeedProcessor
	subscriptions *mocks.SubscriptionManager
	checker       *mocks.CommunityChecker
}

func newServer(t *testing.T, withCommunity bool) (*httptest.Server, *handlerDeps) {
	t.Helper()

	deps := &handlerDeps{
		processor:     mocks.NewFeedProcessor(t),
		subscriptions: mocks.NewSubscriptionManager(t),
	}

	var checker handler.CommunityChecker

	if withCommunity {
		deps.checker = mocks.NewCommunityChecker(t)
		checker = deps.checker
	}

	h := handler.NewRelayHandler(deps.processor, deps.subscriptions, checker, testChannel, testSecret,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	return server, deps
}

func postFeed(t *testing.T, serverURL, body, signature string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, serverURL+"/webhook", strings.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/atom+xml")

	if signature != "" {
		req.Header.Set(ingress.SignatureHeader256, signature)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestWebhook_Challenge(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("RecordVerification", "subscribe", "86400").Once()

	resp, err := http.Get(server.URL + "/webhook?hub.mode=subscribe&hub.topic=topic&hub.challenge=abc&hub.lease_seconds=86400")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", string(body))
}

func TestWebhook_ChallengeMissingParams(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, false)

	resp, err := http.Get(server.URL + "/webhook?hub.mode=subscribe")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_Notification(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("RecordNotification").Once()
	deps.processor.On("ProcessFeedItem", mock.Anything, mock.MatchedBy(func(item *models.FeedItem) bool {
		return item.Event != nil && item.Event.VideoID == "abc123"
	})).Return(true, nil).Once()

	resp := postFeed(t, server.URL, feedBody, ingress.Sign([]byte(feedBody), testSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhook_BadSignature(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, false)

	resp := postFeed(t, server.URL, feedBody, ingress.Sign([]byte(feedBody), "wrong"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = postFeed(t, server.URL, feedBody, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebhook_MalformedFeed(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("RecordNotification").Once()

	body := "not xml"
	resp := postFeed(t, server.URL, body, ingress.Sign([]byte(body), testSecret))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhook_ProcessingFailure(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("RecordNotification").Once()
	deps.processor.On("ProcessFeedItem", mock.Anything, mock.Anything).
		Return(false, &customerrors.ErrDeliveryFailed{NotificationID: "abc123", Attempts: 2}).Once()

	resp := postFeed(t, server.URL, feedBody, ingress.Sign([]byte(feedBody), testSecret))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebhook_ForeignChannelIgnored(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("RecordNotification").Once()

	body := strings.ReplaceAll(feedBody, "UCchannel", "UCother")
	resp := postFeed(t, server.URL, body, ingress.Sign([]byte(body), testSecret))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deps.processor.AssertNotCalled(t, "ProcessFeedItem", mock.Anything, mock.Anything)
}

func TestHealthAndStatus(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("Status").Return(websub.Status{Subscribed: true, TopicURL: "topic"}).Once()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/websub/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status websub.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Subscribed)
	assert.Equal(t, "topic", status.TopicURL)
}

func TestSubscribeEndpoints(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, false)
	deps.subscriptions.On("Subscribe", mock.Anything).Return(nil).Once()
	deps.subscriptions.On("Unsubscribe", mock.Anything).Return(errors.New("hub down")).Once()

	resp, err := http.Post(server.URL+"/subscribe", "application/json", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(server.URL+"/unsubscribe", "application/json", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestCommunityEndpoints(t *testing.T) {
	t.Parallel()

	server, deps := newServer(t, true)
	deps.checker.On("ForceCheck", mock.Anything).Return(2, nil).Once()
	deps.checker.On("ForceCheck", mock.Anything).Return(0, &customerrors.ErrCheckInProgress{}).Once()
	deps.checker.On("Status").Return(community.Status{Running: true, LastNewPosts: 2}).Once()

	resp, err := http.Post(server.URL+"/community/check", "application/json", http.NoBody)
	require.NoError(t, err)

	var result map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, result["new_posts"])

	resp, err = http.Post(server.URL+"/community/check", "application/json", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Get(server.URL + "/community/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status community.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Running)
	assert.Equal(t, 2, status.LastNewPosts)
}

func TestCommunityDisabled(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, false)

	resp, err := http.Post(server.URL+"/community/check", "application/json", http.NoBody)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
