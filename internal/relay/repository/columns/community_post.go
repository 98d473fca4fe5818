package columns

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/jackc/pgx/v5"
)

var CommunityPost = []string{
	"post_id",
	"channel_id",
	"channel_name",
	"content",
	"image_urls",
	"video_attachments",
	"poll_data",
	"published_time",
	"like_count",
	"url",
	"content_hash",
	"scraped_at",
	"notified",
}

// PrepareCommunityPost заполняет вычисляемые поля перед первой записью.
func PrepareCommunityPost(post *models.CommunityPost, now time.Time) {
	if post.ContentHash == "" {
		post.ContentHash = models.ContentHash(post.PostID, post.Content, post.PublishedTime)
	}

	if post.ScrapedAt.IsZero() {
		post.ScrapedAt = now
	}
}

// CommunityPostValues возвращает значения в порядке колонок CommunityPost. nil-списки пишутся
// как NULL, пустые как '[]', чтобы при чтении их можно было различить.
func CommunityPostValues(post *models.CommunityPost) ([]any, error) {
	images, err := encodeNullable(post.ImageURLs == nil, post.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сериализации image_urls: %w", err)
	}

	videos, err := encodeNullable(post.VideoAttachments == nil, post.VideoAttachments)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сериализации video_attachments: %w", err)
	}

	poll, err := encodeNullable(post.Poll == nil, post.Poll)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сериализации poll_data: %w", err)
	}

	return []any{
		post.PostID,
		post.ChannelID,
		post.ChannelName,
		post.Content,
		images,
		videos,
		poll,
		post.PublishedTime.UTC(),
		post.LikeCount,
		post.URL,
		post.ContentHash,
		post.ScrapedAt.UTC(),
		post.Notified,
	}, nil
}

func ScanCommunityPost(row pgx.Row) (*models.CommunityPost, error) {
	post := &models.CommunityPost{}

	var images, videos, poll []byte

	err := row.Scan(
		&post.PostID,
		&post.ChannelID,
		&post.ChannelName,
		&post.Content,
		&images,
		&videos,
		&poll,
		&post.PublishedTime,
		&post.LikeCount,
		&post.URL,
		&post.ContentHash,
		&post.ScrapedAt,
		&post.Notified,
	)
	if err != nil {
		return nil, err
	}

	post.PublishedTime = post.PublishedTime.UTC()
	post.ScrapedAt = post.ScrapedAt.UTC()

	if images != nil {
		if err := json.Unmarshal(images, &post.ImageURLs); err != nil {
			return nil, fmt.Errorf("ошибка при разборе image_urls: %w", err)
		}
	}

	if videos != nil {
		if err := json.Unmarshal(videos, &post.VideoAttachments); err != nil {
			return nil, fmt.Errorf("ошибка при разборе video_attachments: %w", err)
		}
	}

	if poll != nil && string(poll) != "null" {
		post.Poll = &models.Poll{}
		if err := json.Unmarshal(poll, post.Poll); err != nil {
			return nil, fmt.Errorf("ошибка при разборе poll_data: %w", err)
		}
	}

	return post, nil
}

func encodeNullable(isNil bool, value any) ([]byte, error) {
	if isNil {
		return nil, nil
	}

	return json.Marshal(value)
}
