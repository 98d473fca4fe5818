package community_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/community"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestParseRawPost_FullRecord(t *testing.T) {
	t.Parallel()

	raw := &models.RawPost{
		PostLink:  "https://www.youtube.com/post/UgkxABC",
		Text:      "Новый пост",
		Images:    json.RawMessage(`["https://img/1.jpg", {"url": "https://img/2.jpg"}, {"width": 10}]`),
		Video:     json.RawMessage(`{"link": "https://www.youtube.com/watch?v=vid123&t=10"}`),
		TimeSince: "2 hours ago",
	}

	post := community.ParseRawPost(raw, "UCchannel", "Test Channel", fixedNow)

	assert.Equal(t, "UgkxABC", post.PostID)
	assert.Equal(t, "UCchannel", post.ChannelID)
	assert.Equal(t, "Test Channel", post.ChannelName)
	assert.Equal(t, "Новый пост", post.Content)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, post.ImageURLs)
	require.Len(t, post.VideoAttachments, 1)
	assert.Equal(t, models.VideoAttachment{
		VideoID:   "vid123",
		Title:     "Attached Video",
		Thumbnail: "https://img.youtube.com/vi/vid123/default.jpg",
	}, post.VideoAttachments[0])
	assert.Equal(t, fixedNow.Add(-2*time.Hour), post.PublishedTime)
	assert.Equal(t, raw.PostLink, post.URL)
	assert.Nil(t, post.Poll)
	assert.Nil(t, post.LikeCount)
}

func TestParseRawPost_FallbackID(t *testing.T) {
	t.Parallel()

	raw := &models.RawPost{Text: "без ссылки", TimeSince: "1 day ago"}

	first := community.ParseRawPost(raw, "UCchannel", "Test Channel", fixedNow)
	second := community.ParseRawPost(raw, "UCchannel", "Test Channel", fixedNow.Add(time.Hour))

	assert.Regexp(t, `^community_[0-9a-f]{12}$`, first.PostID)
	assert.Equal(t, first.PostID, second.PostID)
	assert.Equal(t, "https://www.youtube.com/post/"+first.PostID, first.URL)
	assert.Empty(t, first.ImageURLs)
	assert.Empty(t, first.VideoAttachments)
}

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc&list=1", "abc"},
		{"https://youtu.be/xyz?t=5", "xyz"},
		{"https://youtu.be/plain", "plain"},
		{"https://example.com/video", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, community.ExtractVideoID(tt.url), tt.url)
	}
}

func TestParseRawPost_VideoAsString(t *testing.T) {
	t.Parallel()

	raw := &models.RawPost{
		PostLink: "https://www.youtube.com/post/p1",
		Video:    json.RawMessage(`"https://youtu.be/short1"`),
	}

	post := community.ParseRawPost(raw, "UCchannel", "Test Channel", fixedNow)
	require.Len(t, post.VideoAttachments, 1)
	assert.Equal(t, "short1", post.VideoAttachments[0].VideoID)
}

func TestParseTimeSince(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour

	tests := []struct {
		input string
		want  time.Duration
	}{
		{"5 minutes ago", 5 * time.Minute},
		{"1 hour ago", time.Hour},
		{"3 days ago", 3 * day},
		{"2 weeks ago", 14 * day},
		{"2 months ago", 60 * day},
		{"1 year ago", 365 * day},
		{"a day ago", day},
		{"month ago", 30 * day},
		{"just now", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, fixedNow.Add(-tt.want), community.ParseTimeSince(tt.input, fixedNow))
		})
	}
}
