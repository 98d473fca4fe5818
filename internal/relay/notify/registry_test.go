package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/notify"
)

const (
	uploadHook = "https://discord.com/api/webhooks/1/upload-token"
	liveHook   = "https://discord.com/api/webhooks/2/live-token"
	otherHook  = "https://discord.com/api/webhooks/3/other-token"
)

func testDestinations() []models.Destination {
	return []models.Destination{
		{WebhookURL: uploadHook, ContentType: models.ContentUpload, Enabled: true, RoleIDs: []string{"111"}},
		{WebhookURL: otherHook, ContentType: models.ContentUpload, Enabled: true},
		{WebhookURL: liveHook, ContentType: models.ContentLivestream, Enabled: true},
	}
}

func TestDestinationRegistry_ForContent(t *testing.T) {
	t.Parallel()

	registry := notify.NewDestinationRegistry(testDestinations())

	uploads := registry.ForContent(models.ContentUpload)
	require.Len(t, uploads, 2)
	assert.Equal(t, uploadHook, uploads[0].WebhookURL)

	assert.Len(t, registry.ForContent(models.ContentLivestream), 1)
	assert.Empty(t, registry.ForContent(models.ContentCommunity))
}

func TestDestinationRegistry_DisableEnable(t *testing.T) {
	t.Parallel()

	registry := notify.NewDestinationRegistry(testDestinations())

	require.NoError(t, registry.Disable(uploadHook))

	uploads := registry.ForContent(models.ContentUpload)
	require.Len(t, uploads, 1)
	assert.Equal(t, otherHook, uploads[0].WebhookURL)
	assert.Len(t, registry.All(), 3)

	require.NoError(t, registry.Enable(uploadHook))
	assert.Len(t, registry.ForContent(models.ContentUpload), 2)
}

func TestDestinationRegistry_Remove(t *testing.T) {
	t.Parallel()

	registry := notify.NewDestinationRegistry(testDestinations())

	require.NoError(t, registry.Remove(liveHook))
	assert.Empty(t, registry.ForContent(models.ContentLivestream))
	assert.Len(t, registry.All(), 2)

	err := registry.Remove(liveHook)
	require.ErrorIs(t, err, &customerrors.ErrDestinationNotFound{})

	err = registry.Disable("https://discord.com/api/webhooks/9/none")
	require.ErrorIs(t, err, &customerrors.ErrDestinationNotFound{})
}

func TestDestinationRegistry_ReturnsCopies(t *testing.T) {
	t.Parallel()

	registry := notify.NewDestinationRegistry(testDestinations())

	uploads := registry.ForContent(models.ContentUpload)
	uploads[0].Enabled = false

	assert.Len(t, registry.ForContent(models.ContentUpload), 2)
}
