package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-tubecord/internal/domain/clients/mocks"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/format"
	"github.com/central-university-dev/go-tubecord/internal/relay/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uploadNotification() *models.Notification {
	return models.NewVideoNotification(&models.Event{
		VideoID:   "abc123",
		ChannelID: "UCchannel",
		Title:     "Новое видео",
		Author:    "Test Channel",
		Published: time.Now().UTC(),
	}, models.TypeUpload)
}

func TestDispatcher_AllSucceed(t *testing.T) {
	t.Parallel()

	sender := mocks.NewWebhookSender(t)
	sender.On("Send", mock.Anything, uploadHook, mock.AnythingOfType("*models.Payload")).Return(nil).Once()
	sender.On("Send", mock.Anything, otherHook, mock.AnythingOfType("*models.Payload")).Return(nil).Once()

	dispatcher := notify.NewDispatcher(sender, notify.NewDestinationRegistry(testDestinations()),
		format.NewFormatter(true), nil, discardLogger())

	delivered, err := dispatcher.Dispatch(context.Background(), uploadNotification())
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
}

func TestDispatcher_PartialFailureIsSuccess(t *testing.T) {
	t.Parallel()

	sender := mocks.NewWebhookSender(t)
	sender.On("Send", mock.Anything, uploadHook, mock.Anything).Return(&customerrors.HTTPError{StatusCode: 500}).Once()
	sender.On("Send", mock.Anything, otherHook, mock.Anything).Return(nil).Once()

	deadLetters := mocks.NewDeadLetterSink(t)
	deadLetters.On("Publish", mock.Anything, mock.MatchedBy(func(letter *models.DeadLetter) bool {
		return letter.NotificationID == "abc123" &&
			letter.WebhookURL == "https://discord.com/api/webhooks/1/***" &&
			letter.Payload != nil
	})).Return(nil).Once()

	dispatcher := notify.NewDispatcher(sender, notify.NewDestinationRegistry(testDestinations()),
		format.NewFormatter(true), deadLetters, discardLogger())

	delivered, err := dispatcher.Dispatch(context.Background(), uploadNotification())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDispatcher_AllFail(t *testing.T) {
	t.Parallel()

	sender := mocks.NewWebhookSender(t)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused")).Twice()

	deadLetters := mocks.NewDeadLetterSink(t)
	deadLetters.On("Publish", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Twice()

	dispatcher := notify.NewDispatcher(sender, notify.NewDestinationRegistry(testDestinations()),
		format.NewFormatter(true), deadLetters, discardLogger())

	delivered, err := dispatcher.Dispatch(context.Background(), uploadNotification())
	require.ErrorIs(t, err, &customerrors.ErrDeliveryFailed{})
	assert.Zero(t, delivered)

	var deliveryErr *customerrors.ErrDeliveryFailed
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, 2, deliveryErr.Attempts)
	assert.NotContains(t, err.Error(), "upload-token")
}

func TestDispatcher_NoDestinations(t *testing.T) {
	t.Parallel()

	sender := mocks.NewWebhookSender(t)

	dispatcher := notify.NewDispatcher(sender, notify.NewDestinationRegistry(testDestinations()),
		format.NewFormatter(true), nil, discardLogger())

	post := &models.CommunityPost{PostID: "post1", ChannelName: "Test Channel", Content: "Привет"}

	delivered, err := dispatcher.Dispatch(context.Background(), models.NewCommunityNotification(post))
	require.NoError(t, err)
	assert.Zero(t, delivered)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_CompletedLivestreamIsNotDelivered(t *testing.T) {
	t.Parallel()

	sender := mocks.NewWebhookSender(t)

	dispatcher := notify.NewDispatcher(sender, notify.NewDestinationRegistry(testDestinations()),
		format.NewFormatter(true), nil, discardLogger())

	notification := uploadNotification()
	notification.Type = models.TypeCompletedLivestream

	delivered, err := dispatcher.Dispatch(context.Background(), notification)
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestDispatcher_DisabledDestinationSkipped(t *testing.T) {
	t.Parallel()

	registry := notify.NewDestinationRegistry(testDestinations())
	require.NoError(t, registry.Disable(otherHook))

	sender := mocks.NewWebhookSender(t)
	sender.On("Send", mock.Anything, uploadHook, mock.MatchedBy(func(payload *models.Payload) bool {
		return payload.Content == "<@&111>"
	})).Return(nil).Once()

	dispatcher := notify.NewDispatcher(sender, registry, format.NewFormatter(true), nil, discardLogger())

	delivered, err := dispatcher.Dispatch(context.Background(), uploadNotification())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestMaskWebhookURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://discord.com/api/webhooks/1/***", notify.MaskWebhookURL(uploadHook))
	assert.Equal(t, "http://example.com/hook", notify.MaskWebhookURL("http://example.com/hook"))
}
