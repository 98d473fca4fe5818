package models

import (
	"crypto/md5" //nolint:gosec // G501: хэш используется только для аудита, не для безопасности
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

type VideoAttachment struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

type Poll struct {
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options"`
}

type CommunityPost struct {
	PostID           string
	ChannelID        string
	ChannelName      string
	Content          string
	ImageURLs        []string
	VideoAttachments []VideoAttachment
	Poll             *Poll
	PublishedTime    time.Time
	LikeCount        *int64
	URL              string
	ContentHash      string
	ScrapedAt        time.Time
	Notified         bool
}

func ContentHash(postID, content string, published time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", postID, content, published.UTC().Format(time.RFC3339)))) //nolint:gosec // G401: см. выше

	return hex.EncodeToString(sum[:])
}

// RawPost это запись в том виде, в котором ее выдает скрапер. Images и Video хранятся
// как сырой JSON: там бывают и строки, и объекты.
type RawPost struct {
	PostLink  string          `json:"post_link"`
	Text      string          `json:"text"`
	Images    json.RawMessage `json:"images"`
	Video     json.RawMessage `json:"video"`
	TimeSince string          `json:"time_since"`
}
