package config_test

import (
	"testing"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/config"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uploadHook    = "https://discord.com/api/webhooks/1/upload"
	liveHook      = "https://discord.com/api/webhooks/2/live"
	communityHook = "https://discord.com/api/webhooks/3/community"
)

func validConfig() *config.Config {
	return &config.Config{
		CallbackURL:          "https://relay.example.com/webhook",
		YouTubeChannelID:     "UCabcdefghijklmnopqrstuv",
		UploadWebhookURLs:    []string{uploadHook},
		CommunityWebhookURLs: []string{communityHook},
		DatabaseAccessType:   config.SQLAccess,
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("CALLBACK_URL", "https://relay.example.com/webhook")
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCabcdefghijklmnopqrstuv")
	t.Setenv("UPLOAD_WEBHOOK_URLS", uploadHook+", "+liveHook)
	t.Setenv("UPLOAD_ROLE_IDS", "111,222")
	t.Setenv("USE_RICH_EMBEDS", "false")
	t.Setenv("CLASSIFY_DELAY", "0s")

	cfg := config.LoadConfig()

	assert.Equal(t, "https://relay.example.com/webhook", cfg.CallbackURL)
	assert.False(t, cfg.UseRichEmbeds)
	assert.Equal(t, time.Duration(0), cfg.ClassifyDelay)
	assert.Equal(t, 8000, cfg.CallbackPort)
	assert.Equal(t, 24*time.Hour, cfg.RecentWindow)
	assert.Equal(t, 200*time.Millisecond, cfg.DiscordMinInterval)

	destinations := cfg.Destinations()
	require.Len(t, destinations, 2)
	assert.Equal(t, uploadHook, destinations[0].WebhookURL)
	assert.Equal(t, liveHook, destinations[1].WebhookURL)
	assert.Equal(t, []string{"111", "222"}, destinations[0].RoleIDs)
	assert.Equal(t, models.ContentUpload, destinations[1].ContentType)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("валидная конфигурация", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("без callback URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.CallbackURL = ""

		err := cfg.Validate()
		require.ErrorIs(t, err, &customerrors.ErrMissingRequiredField{})
		assert.Contains(t, err.Error(), "CALLBACK_URL")
	})

	t.Run("без канала", func(t *testing.T) {
		cfg := validConfig()
		cfg.YouTubeChannelID = " "

		require.ErrorIs(t, cfg.Validate(), &customerrors.ErrMissingRequiredField{})
	})

	t.Run("без вебхуков", func(t *testing.T) {
		cfg := validConfig()
		cfg.UploadWebhookURLs = nil
		cfg.CommunityWebhookURLs = []string{""}

		var target *customerrors.ErrNoDestinations
		require.ErrorAs(t, cfg.Validate(), &target)
	})

	t.Run("чужой вебхук", func(t *testing.T) {
		cfg := validConfig()
		cfg.LivestreamWebhookURLs = []string{"https://example.com/hook"}

		require.ErrorIs(t, cfg.Validate(), &customerrors.ErrInvalidWebhookURL{})
	})

	t.Run("неизвестный тип доступа к БД", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseAccessType = "ORM"

		var target *customerrors.ErrUnknownDBAccessType
		require.ErrorAs(t, cfg.Validate(), &target)
	})
}

func TestConfig_CommunityCheckIntervalIsClamped(t *testing.T) {
	cases := []struct {
		minutes  int
		expected time.Duration
	}{
		{0, time.Minute},
		{-10, time.Minute},
		{15, 15 * time.Minute},
		{1440, 24 * time.Hour},
		{5000, 24 * time.Hour},
	}

	for _, tc := range cases {
		cfg := &config.Config{CommunityCheckIntervalMinutes: tc.minutes}
		assert.Equal(t, tc.expected, cfg.CommunityCheckInterval(), "minutes=%d", tc.minutes)
	}
}

func TestConfig_DestinationsPerGroup(t *testing.T) {
	cfg := &config.Config{
		UploadWebhookURLs:     []string{uploadHook},
		LivestreamWebhookURLs: []string{liveHook},
		LivestreamRoleIDs:     []string{" 42 "},
		CommunityWebhookURLs:  []string{communityHook},
	}

	destinations := cfg.Destinations()
	require.Len(t, destinations, 3)

	assert.Equal(t, models.ContentUpload, destinations[0].ContentType)
	assert.Empty(t, destinations[0].RoleIDs)
	assert.Equal(t, models.ContentLivestream, destinations[1].ContentType)
	assert.Equal(t, []string{"42"}, destinations[1].RoleIDs)
	assert.Equal(t, models.ContentCommunity, destinations[2].ContentType)

	for _, d := range destinations {
		assert.True(t, d.Enabled)
	}
}

func TestConfig_DerivedValues(t *testing.T) {
	cfg := &config.Config{
		YouTubeChannelID: "UC1",
		KafkaBrokers:     "kafka-1:9092, kafka-2:9092",
	}

	assert.Equal(t, "https://www.youtube.com/xml/feeds/videos.xml?channel_id=UC1", cfg.WebSubTopicURL())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokerList())
	assert.Equal(t, 30*24*time.Hour, cfg.CommunityRetention())
}
