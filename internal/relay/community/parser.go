package community

import (
	"crypto/md5" //nolint:gosec // G501: хэш нужен только для стабильного идентификатора
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	fallbackIDPrefix   = "community_"
	fallbackIDLength   = 12
	attachedVideoTitle = "Attached Video"
	postURLPrefix      = "https://www.youtube.com/post/"
)

var numberPattern = regexp.MustCompile(`\d+`)

// ParseRawPost собирает пост сообщества из записи скрапера. now задает момент,
// относительно которого пересчитывается time_since.
func ParseRawPost(raw *models.RawPost, channelID, channelName string, now time.Time) *models.CommunityPost {
	postID := postIDFromLink(raw.PostLink)
	if postID == "" {
		postID = fallbackPostID(raw.Text, raw.TimeSince)
	}

	postURL := raw.PostLink
	if postURL == "" {
		postURL = postURLPrefix + postID
	}

	return &models.CommunityPost{
		PostID:           postID,
		ChannelID:        channelID,
		ChannelName:      channelName,
		Content:          raw.Text,
		ImageURLs:        parseImages(raw.Images),
		VideoAttachments: parseVideo(raw.Video),
		PublishedTime:    ParseTimeSince(raw.TimeSince, now),
		URL:              postURL,
		ScrapedAt:        now.UTC(),
	}
}

func postIDFromLink(link string) string {
	idx := strings.LastIndex(link, "/post/")
	if idx < 0 {
		return ""
	}

	return link[idx+len("/post/"):]
}

func fallbackPostID(text, timeSince string) string {
	sum := md5.Sum([]byte(text + ":" + timeSince)) //nolint:gosec // G401: см. выше

	return fallbackIDPrefix + hex.EncodeToString(sum[:])[:fallbackIDLength]
}

// parseImages принимает список строк или объектов с полем url.
func parseImages(data json.RawMessage) []string {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return []string{}
	}

	images := make([]string, 0, len(items))

	for _, item := range items {
		var url string
		if json.Unmarshal(item, &url) == nil {
			images = append(images, url)
			continue
		}

		var obj struct {
			URL *string `json:"url"`
		}

		if json.Unmarshal(item, &obj) == nil && obj.URL != nil {
			images = append(images, *obj.URL)
		}
	}

	return images
}

func parseVideo(data json.RawMessage) []models.VideoAttachment {
	videoURL := rawVideoURL(data)
	if videoURL == "" {
		return []models.VideoAttachment{}
	}

	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return []models.VideoAttachment{}
	}

	return []models.VideoAttachment{{
		VideoID:   videoID,
		Title:     attachedVideoTitle,
		Thumbnail: "https://img.youtube.com/vi/" + videoID + "/default.jpg",
	}}
}

func rawVideoURL(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}

	var url string
	if json.Unmarshal(data, &url) == nil {
		return url
	}

	var obj struct {
		URL  string `json:"url"`
		Link string `json:"link"`
	}

	if json.Unmarshal(data, &obj) != nil {
		return ""
	}

	if obj.URL != "" {
		return obj.URL
	}

	return obj.Link
}

// ExtractVideoID понимает ссылки вида watch?v=ID и youtu.be/ID.
func ExtractVideoID(videoURL string) string {
	if idx := strings.LastIndex(videoURL, "watch?v="); idx >= 0 {
		id, _, _ := strings.Cut(videoURL[idx+len("watch?v="):], "&")
		return id
	}

	if idx := strings.LastIndex(videoURL, "youtu.be/"); idx >= 0 {
		id, _, _ := strings.Cut(videoURL[idx+len("youtu.be/"):], "?")
		return id
	}

	return ""
}

// ParseTimeSince переводит "2 hours ago" в момент времени. Без числа берется 1,
// месяц считается за 30 дней, год за 365. Нераспознанная строка дает now.
func ParseTimeSince(timeSince string, now time.Time) time.Time {
	now = now.UTC()

	units := []struct {
		name string
		unit time.Duration
	}{
		{"minute", time.Minute},
		{"hour", time.Hour},
		{"day", 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"year", 365 * 24 * time.Hour},
	}

	for _, u := range units {
		if !strings.Contains(timeSince, u.name) {
			continue
		}

		count := 1

		if match := numberPattern.FindString(timeSince); match != "" {
			if n, err := strconv.Atoi(match); err == nil {
				count = n
			}
		}

		return now.Add(-time.Duration(count) * u.unit)
	}

	return now
}
