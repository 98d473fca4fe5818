package ingress

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"time"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	unknownTitle  = "Unknown Title"
	unknownAuthor = "Unknown Author"
)

type atomFeed struct {
	XMLName      xml.Name          `xml:"feed"`
	Entries      []atomEntry       `xml:"http://www.w3.org/2005/Atom entry"`
	DeletedEntry *tombstoneElement `xml:"http://purl.org/atompub/tombstones/1.0 deleted-entry"`
}

type atomEntry struct {
	VideoID              string     `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID            string     `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	LiveBroadcastContent string     `xml:"http://www.youtube.com/xml/schemas/2015 liveBroadcastContent"`
	Title                *string    `xml:"http://www.w3.org/2005/Atom title"`
	Links                []atomLink `xml:"http://www.w3.org/2005/Atom link"`
	AuthorName           *string    `xml:"http://www.w3.org/2005/Atom author>name"`
	Published            string     `xml:"http://www.w3.org/2005/Atom published"`
	Updated              string     `xml:"http://www.w3.org/2005/Atom updated"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type tombstoneElement struct {
	Ref  string `xml:"ref,attr"`
	When string `xml:"when,attr"`
	By   struct {
		Name string `xml:"http://www.w3.org/2005/Atom name"`
		URI  string `xml:"http://www.w3.org/2005/Atom uri"`
	} `xml:"http://purl.org/atompub/tombstones/1.0 by"`
}

// ParseFeed разбирает тело push-уведомления YouTube: обычную запись или tombstone удаления.
func ParseFeed(body []byte) (*models.FeedItem, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &customerrors.ErrMalformedFeed{Cause: errors.New("пустое тело")}
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &customerrors.ErrMalformedFeed{Cause: err}
	}

	if feed.DeletedEntry != nil {
		return &models.FeedItem{Deletion: parseDeletion(feed.DeletedEntry)}, nil
	}

	if len(feed.Entries) == 0 {
		return nil, &customerrors.ErrMalformedFeed{Cause: errors.New("в ленте нет записи entry")}
	}

	entry := &feed.Entries[0]

	videoID := strings.TrimSpace(entry.VideoID)
	channelID := strings.TrimSpace(entry.ChannelID)

	if videoID == "" || channelID == "" {
		return nil, &customerrors.ErrMalformedFeed{Cause: errors.New("в записи нет videoId или channelId")}
	}

	event := &models.Event{
		VideoID:       videoID,
		ChannelID:     channelID,
		Title:         unknownTitle,
		Author:        unknownAuthor,
		URL:           "https://www.youtube.com/watch?v=" + videoID,
		Published:     parseTimestamp(entry.Published),
		Updated:       parseTimestamp(entry.Updated),
		BroadcastHint: strings.ToLower(strings.TrimSpace(entry.LiveBroadcastContent)),
	}

	if entry.Title != nil {
		event.Title = *entry.Title
	}

	if entry.AuthorName != nil {
		event.Author = *entry.AuthorName
	}

	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			event.URL = link.Href
			break
		}
	}

	return &models.FeedItem{Event: event}, nil
}

func parseDeletion(entry *tombstoneElement) *models.Deletion {
	deletion := &models.Deletion{
		URL:       entry.Ref,
		DeletedAt: parseTimestamp(entry.When),
	}

	if idx := strings.LastIndex(entry.Ref, "watch?v="); idx >= 0 {
		deletion.VideoID, _, _ = strings.Cut(entry.Ref[idx+len("watch?v="):], "&")
	} else if idx := strings.LastIndex(entry.Ref, "yt:video:"); idx >= 0 {
		deletion.VideoID = entry.Ref[idx+len("yt:video:"):]
	}

	if idx := strings.LastIndex(entry.By.URI, "/channel/"); idx >= 0 {
		deletion.ChannelID = entry.By.URI[idx+len("/channel/"):]
	}

	return deletion
}

// parseTimestamp возвращает нулевое время для пустой или нераспознанной строки.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}

	return time.Time{}
}
